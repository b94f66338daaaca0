package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestSetCapturesRecords(t *testing.T) {
	prev := L()
	defer Set(prev)

	var buf bytes.Buffer
	Set(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	With("channel").Debug("consumer created", "slots", 8)

	if !bytes.Contains(buf.Bytes(), []byte("consumer created")) {
		t.Fatal("log message not captured")
	}
	if !bytes.Contains(buf.Bytes(), []byte("component=channel")) {
		t.Fatal("component attribute missing")
	}
}

func TestSetNilDiscards(t *testing.T) {
	prev := L()
	defer Set(prev)

	Set(nil)
	L().Error("dropped") // must not panic
	if L().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("discard logger reports enabled")
	}
}
