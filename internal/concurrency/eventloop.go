// File: internal/concurrency/eventloop.go
// Package concurrency implements the consumer-side dispatch loop.
//
// An EventLoop owns the consumer context of one channel: it blocks on the
// channel's acquire operation, fans the item out to every registered
// handler and releases the slot before fetching the next one. Handlers run
// on the loop goroutine and must not retain the item after returning.

package concurrency

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-devchan/affinity"
	"github.com/momentics/hioload-devchan/api"
	"github.com/momentics/hioload-devchan/internal/logging"
)

// EventHandler consumes one item.
type EventHandler[E any] interface {
	HandleEvent(ev E)
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc[E any] func(ev E)

func (f HandlerFunc[E]) HandleEvent(ev E) { f(ev) }

// Source is the acquire/release pair of a channel consumer.
type Source[E any] struct {
	Next    func(ctx context.Context) (E, error)
	Release func()
}

type handlerEntry[E any] struct {
	h EventHandler[E]
}

// EventLoop dispatches the items of one consumer to its handlers.
type EventLoop[E any] struct {
	src      Source[E]
	handlers atomic.Pointer[[]*handlerEntry[E]] // copy-on-write
	cpu      int
	stopCh   chan struct{}
	stopOnce sync.Once
	running  int32
	stopped  chan struct{}

	processed atomic.Uint64
}

// NewEventLoop creates a loop over src. cpu >= 0 pins the loop's OS thread.
func NewEventLoop[E any](src Source[E], cpu int) *EventLoop[E] {
	el := &EventLoop[E]{
		src:     src,
		cpu:     cpu,
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	el.handlers.Store(&[]*handlerEntry[E]{})
	return el
}

// Processed returns the number of items dispatched so far.
func (el *EventLoop[E]) Processed() uint64 {
	return el.processed.Load()
}

// RegisterHandler adds h and returns a function that removes it again.
func (el *EventLoop[E]) RegisterHandler(h EventHandler[E]) (unregister func()) {
	entry := &handlerEntry[E]{h: h}
	for {
		old := el.handlers.Load()
		next := make([]*handlerEntry[E], 0, len(*old)+1)
		next = append(next, *old...)
		next = append(next, entry)
		if el.handlers.CompareAndSwap(old, &next) {
			break
		}
	}
	return func() { el.unregister(entry) }
}

func (el *EventLoop[E]) unregister(entry *handlerEntry[E]) {
	for {
		old := el.handlers.Load()
		next := make([]*handlerEntry[E], 0, len(*old))
		for _, e := range *old {
			if e != entry {
				next = append(next, e)
			}
		}
		if el.handlers.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Run drains the source until ctx is cancelled, Stop is called or the
// channel is closed. A clean stop returns nil.
func (el *EventLoop[E]) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&el.running, 0, 1) {
		return errors.New("event loop already running")
	}
	defer close(el.stopped)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-el.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if el.cpu < 0 {
		return el.loop(ctx)
	}
	// The pinned thread is never handed back to the scheduler: the goroutine
	// exits locked and the runtime discards the thread.
	errc := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		if err := affinity.SetAffinity(el.cpu); err != nil {
			logging.With("eventloop").Warn("affinity pin failed", "cpu", el.cpu, "err", err)
		}
		errc <- el.loop(ctx)
	}()
	return <-errc
}

func (el *EventLoop[E]) loop(ctx context.Context) error {
	for {
		ev, err := el.src.Next(ctx)
		if err != nil {
			if errors.Is(err, api.ErrChannelClosed) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		for _, e := range *el.handlers.Load() {
			e.h.HandleEvent(ev)
		}
		el.src.Release()
		el.processed.Add(1)
	}
}

// Stop cancels a running loop and waits for it to return.
func (el *EventLoop[E]) Stop() {
	el.stopOnce.Do(func() { close(el.stopCh) })
	if atomic.LoadInt32(&el.running) == 1 {
		<-el.stopped
	}
}
