// File: internal/logging/logging.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package logging holds the structured logger shared by all packages.
// Callers replace it through channel.SetLogger or facade.SetLogger.
package logging

import (
	"log/slog"
	"os"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// L returns the active logger.
func L() *slog.Logger {
	return current.Load()
}

// Set replaces the active logger; nil restores a discarding logger.
func Set(l *slog.Logger) {
	if l == nil {
		l = slog.New(discard{})
	}
	current.Store(l)
}

// With returns the active logger scoped to a component.
func With(component string) *slog.Logger {
	return L().With("component", component)
}
