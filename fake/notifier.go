// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake wait-primitive implementations for testing.

package fake

import (
	"context"
	"sync/atomic"

	"github.com/momentics/hioload-devchan/api"
)

// Notifier counts posts and never wakes anyone.
type Notifier struct {
	posts atomic.Int64
}

// Post records one post.
func (n *Notifier) Post() { n.posts.Add(1) }

// Posts returns the number of posts so far.
func (n *Notifier) Posts() int64 { return n.posts.Load() }

// Semaphore is a non-blocking api.Semaphore for single-goroutine tests.
// Wait returns context.DeadlineExceeded instead of blocking when the
// count is zero.
type Semaphore struct {
	Notifier
	waits  atomic.Int64
	closed atomic.Bool
}

var _ api.Semaphore = (*Semaphore)(nil)

// Wait takes one count or fails immediately.
func (s *Semaphore) Wait(ctx context.Context) error {
	if s.closed.Load() {
		return api.ErrChannelClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Pending() <= 0 {
		return context.DeadlineExceeded
	}
	s.waits.Add(1)
	return nil
}

// Pending returns posts minus successful waits.
func (s *Semaphore) Pending() int64 { return s.Posts() - s.waits.Load() }

// Close marks the semaphore closed.
func (s *Semaphore) Close() error {
	s.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (s *Semaphore) Closed() bool { return s.closed.Load() }
