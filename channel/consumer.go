// File: channel/consumer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-item consumer: owns the storage and the read cursor, blocks on the
// wait primitive and hands out slots in place.

package channel

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/momentics/hioload-devchan/api"
	"github.com/momentics/hioload-devchan/pool"
)

// Ensure compile-time interface compliance.
var _ api.ItemConsumer[int] = (*Consumer[int])(nil)

// Consumer is the read side of a fixed-item channel.
type Consumer[T any] struct {
	st       *Storage[T]
	sem      api.Semaphore
	consumed atomic.Uint64
	closed   atomic.Bool
}

// NewConsumer allocates size slots on the heap. sem is the channel's wait
// primitive; the consumer owns it from now on and releases it in Close.
func NewConsumer[T any](size int, sem api.Semaphore) (*Consumer[T], error) {
	if err := checkSize(size, 2); err != nil {
		return nil, err
	}
	return newConsumer(newHeapStorage[T](size), sem, api.KindItem)
}

// NewConsumerOn lays the storage out in a and resets both cursors. See
// ArenaSize for the space needed. T must not contain Go pointers.
func NewConsumerOn[T any](a *pool.Arena, size int, sem api.Semaphore) (*Consumer[T], error) {
	if err := checkSize(size, 2); err != nil {
		return nil, err
	}
	st, err := arenaStorage[T](a, size)
	if err != nil {
		return nil, err
	}
	st.cur.read.Store(0)
	st.cur.write.Store(0)
	return newConsumer(st, sem, api.KindItem)
}

func newConsumer[T any](st *Storage[T], sem api.Semaphore, kind api.ChannelKind) (*Consumer[T], error) {
	if sem == nil {
		return nil, fmt.Errorf("%w: nil wait primitive", api.ErrConstruction)
	}
	logger().Debug("consumer created", "kind", kind, "slots", st.Slots(), "shared", st.Shared())
	return &Consumer[T]{st: st, sem: sem}, nil
}

// Handle returns the reference a Producer attaches to.
func (c *Consumer[T]) Handle() *Handle[T] {
	return &Handle[T]{st: c.st, notify: c.sem}
}

// Storage exposes the ring for diagnostics.
func (c *Consumer[T]) Storage() *Storage[T] { return c.st }

// Acquire blocks until an item is available and returns a pointer to its
// slot without advancing read_pos. It waits indefinitely; the only error
// is api.ErrChannelClosed after Close.
func (c *Consumer[T]) Acquire() (*T, error) {
	return c.AcquireContext(context.Background())
}

// AcquireContext is Acquire with cancellation. A cancelled wait consumes
// nothing. A wait that succeeds while the ring is empty panics with an
// *api.Error wrapping api.ErrProtocolViolation.
func (c *Consumer[T]) AcquireContext(ctx context.Context) (*T, error) {
	if err := c.sem.Wait(ctx); err != nil {
		return nil, err
	}
	return &c.st.slots[c.ready()], nil
}

// ready returns read_pos after a successful wait. The producer stores
// write_pos after filling the slot and only then posts, so a granted wait
// on an empty ring means the cursors or the wait count are corrupt.
func (c *Consumer[T]) ready() uint32 {
	w := c.st.cur.write.Load()
	r := c.st.cur.read.Load()
	if r == w {
		logger().Error("protocol violation", "read_pos", r, "write_pos", w, "pending", c.sem.Pending())
		panic(api.NewError(api.ErrCodeProtocolViolation, "wait granted on an empty ring").
			WithContext("read_pos", r))
	}
	return r
}

// Release advances read_pos past the slot returned by the last Acquire.
func (c *Consumer[T]) Release() {
	r := c.st.cur.read.Load()
	c.st.cur.read.Store((r + 1) % c.st.size)
	c.consumed.Add(1)
}

// Consumed returns the number of released items.
func (c *Consumer[T]) Consumed() uint64 { return c.consumed.Load() }

// Stats returns the consumer half of the channel telemetry.
func (c *Consumer[T]) Stats() api.ChannelStats {
	r, w := c.st.Positions()
	return api.ChannelStats{
		Kind:     api.KindItem.String(),
		Slots:    c.st.Slots(),
		ReadPos:  r,
		WritePos: w,
		Pending:  c.sem.Pending(),
		Consumed: c.consumed.Load(),
	}
}

// Close releases the wait primitive. A blocked Acquire returns
// api.ErrChannelClosed. The storage itself belongs to whoever allocated
// the arena, or to the GC.
func (c *Consumer[T]) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	logger().Debug("consumer closed", "slots", c.st.Slots(), "consumed", c.consumed.Load())
	return c.sem.Close()
}
