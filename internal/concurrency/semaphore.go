// File: internal/concurrency/semaphore.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable counting semaphore for single-consumer channels.
//
// The producer side is a lock-free counter plus an edge-coalesced wake
// channel (capacity 1, select/default send), so Post never blocks. The
// consumer side blocks on the wake channel and re-checks the counter after
// every wake-up.

package concurrency

import (
	"context"
	"sync/atomic"

	"github.com/momentics/hioload-devchan/api"
)

// Ensure compile-time interface compliance.
var _ api.Semaphore = (*Semaphore)(nil)

// Semaphore is an in-process counting wait primitive. Only one goroutine
// may Wait at a time; any number may Post.
type Semaphore struct {
	count  atomic.Int64
	wake   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// NewSemaphore returns a semaphore with a zero count.
func NewSemaphore() *Semaphore {
	return &Semaphore{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post increments the count and wakes the waiter if it sleeps.
func (s *Semaphore) Post() {
	s.count.Add(1)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Wait decrements the count, blocking while it is zero.
func (s *Semaphore) Wait(ctx context.Context) error {
	for {
		if n := s.count.Load(); n > 0 {
			if s.count.CompareAndSwap(n, n-1) {
				return nil
			}
			continue
		}
		if s.closed.Load() {
			return api.ErrChannelClosed
		}
		select {
		case <-s.wake:
		case <-s.done:
			return api.ErrChannelClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pending reports the current count.
func (s *Semaphore) Pending() int64 {
	return s.count.Load()
}

// Close releases a blocked waiter. Close is idempotent.
func (s *Semaphore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		close(s.done)
	}
	return nil
}
