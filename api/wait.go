// File: api/wait.go
// Package api defines the wake-up contracts shared by channel endpoints.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "context"

// Waiter is the consumer end of the counting wait primitive.
type Waiter interface {
	// Wait blocks until the count is positive and decrements it.
	// Returns ctx.Err() on cancellation and ErrChannelClosed after Close.
	Wait(ctx context.Context) error
}

// Notifier is the producer end. Post never blocks.
type Notifier interface {
	Post()
}

// Semaphore bundles both ends; it is created once per channel and
// released by the consumer on teardown.
type Semaphore interface {
	Waiter
	Notifier
	// Pending reports the current count (diagnostics only).
	Pending() int64
	Close() error
}
