package channel

import (
	"log/slog"

	"github.com/momentics/hioload-devchan/internal/logging"
)

// SetLogger replaces the logger used by channel construction, teardown and
// fatal protocol errors. Publish and Produce never log.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

func logger() *slog.Logger {
	return logging.With("channel")
}
