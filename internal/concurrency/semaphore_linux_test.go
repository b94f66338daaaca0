//go:build linux
// +build linux

package concurrency

import (
	"context"
	"testing"
)

func newEventSem(t *testing.T) *EventSemaphore {
	t.Helper()
	s, err := NewEventSemaphore()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestEventSemaphore(t *testing.T) {
	t.Run("counts", func(t *testing.T) {
		s := newEventSem(t)
		defer s.Close()
		testSemaphoreCounts(t, s)
	})
	t.Run("wakes", func(t *testing.T) {
		s := newEventSem(t)
		defer s.Close()
		testSemaphoreWakes(t, s)
	})
	t.Run("close", func(t *testing.T) { testSemaphoreClose(t, newEventSem(t)) })
}

func TestOpenEventSemaphoreSharesCounter(t *testing.T) {
	owner := newEventSem(t)
	defer owner.Close()
	peer, err := OpenEventSemaphore(owner.Fd())
	if err != nil {
		t.Fatal(err)
	}
	peer.Post()
	if owner.Pending() != 1 {
		t.Fatal("post through the peer not visible to the owner")
	}
	if err := owner.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	// The peer does not own the descriptor.
	if err := peer.Close(); err != nil {
		t.Fatal(err)
	}
	owner.Post()
	if err := owner.Wait(context.Background()); err != nil {
		t.Fatalf("owner fd closed by peer: %v", err)
	}
}
