//go:build !linux
// +build !linux

// File: internal/concurrency/semaphore_other.go
// Author: momentics <momentics@gmail.com>
//
// eventfd is Linux-only; other platforms use the portable Semaphore.

package concurrency

import (
	"context"
	"fmt"

	"github.com/momentics/hioload-devchan/api"
)

// EventSemaphore is unavailable on this platform.
type EventSemaphore struct{}

// NewEventSemaphore always fails outside Linux.
func NewEventSemaphore() (*EventSemaphore, error) {
	return nil, fmt.Errorf("%w: eventfd: %v", api.ErrConstruction, api.ErrNotSupported)
}

// OpenEventSemaphore always fails outside Linux.
func OpenEventSemaphore(fd int) (*EventSemaphore, error) {
	return NewEventSemaphore()
}

func (s *EventSemaphore) Fd() int                        { return -1 }
func (s *EventSemaphore) Post()                          {}
func (s *EventSemaphore) Wait(ctx context.Context) error { return api.ErrNotSupported }
func (s *EventSemaphore) Pending() int64                 { return 0 }
func (s *EventSemaphore) Close() error                   { return nil }
