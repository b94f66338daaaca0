// File: channel/producer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-item producer: owns the write cursor and never blocks.

package channel

import (
	"sync/atomic"

	"github.com/momentics/hioload-devchan/api"
)

var _ api.ItemProducer[int] = (*Producer[int])(nil)

// Producer is the write side of a fixed-item channel. It may be built
// before a consumer exists and attached later.
type Producer[T any] struct {
	h        *Handle[T]
	dropping atomic.Bool
	lastErr  atomic.Int32 // api.ErrorCode of the last rejection

	published atomic.Uint64
	dropped   atomic.Uint64
}

// NewProducer returns a producer attached to h; h may be nil.
func NewProducer[T any](h *Handle[T]) *Producer[T] {
	return &Producer[T]{h: h}
}

// Attach points the producer at a consumer. It must not race with Publish.
func (p *Producer[T]) Attach(h *Handle[T]) {
	p.h = h
}

// Attached reports whether a consumer handle is set.
func (p *Producer[T]) Attached() bool { return p.h != nil }

// Publish copies item into the next free slot and posts the wait
// primitive. It returns false, and sets the drop flag, when no consumer is
// attached or the ring is full. The rejected item is not retained.
func (p *Producer[T]) Publish(item T) bool {
	h := p.h
	if h == nil {
		p.reject(api.ErrCodeNoConsumer)
		return false
	}
	st := h.st
	w := st.cur.write.Load()
	next := (w + 1) % st.size
	if next == st.cur.read.Load() {
		p.reject(api.ErrCodeChannelFull)
		return false
	}
	st.slots[w] = item
	st.cur.write.Store(next)
	h.notify.Post()
	p.accept()
	return true
}

func (p *Producer[T]) reject(code api.ErrorCode) {
	p.dropping.Store(true)
	p.lastErr.Store(int32(code))
	p.dropped.Add(1)
}

func (p *Producer[T]) accept() {
	p.dropping.Store(false)
	p.lastErr.Store(int32(api.ErrCodeOK))
	p.published.Add(1)
}

// Dropping reports whether the most recent call was rejected.
func (p *Producer[T]) Dropping() bool { return p.dropping.Load() }

// LastError returns api.ErrChannelFull or api.ErrNoConsumer for the most
// recent rejected call, nil after an accepted one.
func (p *Producer[T]) LastError() error {
	switch api.ErrorCode(p.lastErr.Load()) {
	case api.ErrCodeChannelFull:
		return api.ErrChannelFull
	case api.ErrCodeNoConsumer:
		return api.ErrNoConsumer
	default:
		return nil
	}
}

// Stats returns the producer half of the channel telemetry.
func (p *Producer[T]) Stats() api.ChannelStats {
	return api.ChannelStats{
		Published: p.published.Load(),
		Dropped:   p.dropped.Load(),
		Dropping:  p.dropping.Load(),
	}
}
