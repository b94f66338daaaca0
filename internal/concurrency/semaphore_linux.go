//go:build linux
// +build linux

// File: internal/concurrency/semaphore_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// eventfd(2)-backed counting semaphore. With EFD_SEMAPHORE each read
// decrements the kernel counter by one, which is exactly the wait count of
// a channel. The descriptor is close-on-exec; a producer process receives
// it through exec.Cmd.ExtraFiles and wraps it with OpenEventSemaphore.

package concurrency

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-devchan/api"
)

var _ api.Semaphore = (*EventSemaphore)(nil)

// pollSlice bounds one poll(2) when the context can be cancelled but has
// no deadline.
const pollSlice = 50 * time.Millisecond

// EventSemaphore wraps a counting eventfd and a second eventfd used to
// interrupt waiters on Close.
type EventSemaphore struct {
	fd     int
	stopfd int
	owned  bool // fd was created here and is closed on Close

	// mu is read-held by Wait/Post and write-held by Close while the
	// descriptors are released; the data path only ever uses TryRLock.
	mu     sync.RWMutex
	closed atomic.Bool
}

// NewEventSemaphore creates a fresh eventfd semaphore.
func NewEventSemaphore() (*EventSemaphore, error) {
	fd, err := unix.Eventfd(0, unix.EFD_SEMAPHORE|unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("%w: eventfd: %v", api.ErrConstruction, err)
	}
	return newEventSemaphore(fd, true)
}

// OpenEventSemaphore wraps an eventfd inherited from the channel owner.
// The descriptor stays open after Close.
func OpenEventSemaphore(fd int) (*EventSemaphore, error) {
	if fd < 0 {
		return nil, fmt.Errorf("%w: bad eventfd %d", api.ErrConstruction, fd)
	}
	return newEventSemaphore(fd, false)
}

func newEventSemaphore(fd int, owned bool) (*EventSemaphore, error) {
	stopfd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		if owned {
			unix.Close(fd)
		}
		return nil, fmt.Errorf("%w: eventfd: %v", api.ErrConstruction, err)
	}
	return &EventSemaphore{fd: fd, stopfd: stopfd, owned: owned}, nil
}

// Fd returns the counting descriptor for handing to a peer.
func (s *EventSemaphore) Fd() int { return s.fd }

// Post adds one to the kernel counter. It never blocks: a concurrent
// Close makes the post a no-op.
func (s *EventSemaphore) Post() {
	if !s.mu.TryRLock() {
		return
	}
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return
	}
	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], 1)
	unix.Write(s.fd, b[:])
}

// Wait consumes one count, sleeping in poll(2) while the counter is zero.
func (s *EventSemaphore) Wait(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var b [8]byte
	fds := []unix.PollFd{
		{Fd: int32(s.fd), Events: unix.POLLIN},
		{Fd: int32(s.stopfd), Events: unix.POLLIN},
	}
	for {
		if s.closed.Load() {
			return api.ErrChannelClosed
		}
		_, err := unix.Read(s.fd, b[:])
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EAGAIN) && !errors.Is(err, unix.EINTR) {
			return fmt.Errorf("eventfd read: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err = unix.Poll(fds, pollTimeout(ctx))
		if err != nil && !errors.Is(err, unix.EINTR) {
			return fmt.Errorf("eventfd poll: %w", err)
		}
	}
}

// pollTimeout maps ctx to a poll(2) timeout in milliseconds.
func pollTimeout(ctx context.Context) int {
	if deadline, ok := ctx.Deadline(); ok {
		ms := int(time.Until(deadline) / time.Millisecond)
		if ms < 1 {
			ms = 1
		}
		if ms > int(pollSlice/time.Millisecond) {
			ms = int(pollSlice / time.Millisecond)
		}
		return ms
	}
	if ctx.Done() != nil {
		return int(pollSlice / time.Millisecond)
	}
	return -1
}

// Pending reads the counter without consuming it. eventfd offers no peek,
// so this reports 1 when at least one count is available.
func (s *EventSemaphore) Pending() int64 {
	if s.closed.Load() {
		return 0
	}
	fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}
	if n, err := unix.Poll(fds, 0); err == nil && n > 0 {
		return 1
	}
	return 0
}

// Close wakes the waiter and releases the descriptors.
func (s *EventSemaphore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], 1)
	unix.Write(s.stopfd, b[:])

	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.owned {
		err = unix.Close(s.fd)
	}
	if cerr := unix.Close(s.stopfd); err == nil {
		err = cerr
	}
	return err
}
