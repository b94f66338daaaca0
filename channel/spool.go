// File: channel/spool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Producer-side backlog for callers that would rather defer than drop.

package channel

import (
	"bytes"
	"fmt"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-devchan/api"
)

// Spool keeps items a producer rejected and retries them, oldest first,
// before anything newer. It never blocks and is owned by the producer
// goroutine. When the backlog reaches its limit the newest item is
// dropped, so ordering is preserved for everything that is delivered.
type Spool[E any] struct {
	q        *queue.Queue
	limit    int
	publish  func(E) bool
	valid    func(E) bool
	clone    func(E) E
	rejected uint64
}

// NewSpool wraps a fixed-item producer. limit <= 0 means no backlog at all.
func NewSpool[T any](p *Producer[T], limit int) (*Spool[T], error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil producer", api.ErrInvalidArgument)
	}
	return &Spool[T]{q: queue.New(), limit: limit, publish: p.Publish}, nil
}

// NewPacketSpool wraps a packet producer. Spooled frames are copied, so
// callers may reuse their buffers. Frames the ring can never carry are
// refused up front instead of clogging the backlog.
func NewPacketSpool(pp *PacketProducer, limit int) (*Spool[[]byte], error) {
	if pp == nil {
		return nil, fmt.Errorf("%w: nil producer", api.ErrInvalidArgument)
	}
	return &Spool[[]byte]{
		q:       queue.New(),
		limit:   limit,
		publish: pp.Produce,
		valid: func(b []byte) bool {
			return len(b) > 0 && len(b) <= pp.MaxPayload()
		},
		clone: bytes.Clone,
	}, nil
}

// Offer delivers item, or spools it when the ring has no room. It returns
// false only when item was dropped.
func (s *Spool[E]) Offer(item E) bool {
	if s.valid != nil && !s.valid(item) {
		s.rejected++
		return false
	}
	if s.q.Length() > 0 {
		s.Flush()
	}
	if s.q.Length() == 0 && s.publish(item) {
		return true
	}
	if s.q.Length() >= s.limit {
		s.rejected++
		return false
	}
	if s.clone != nil {
		item = s.clone(item)
	}
	s.q.Add(item)
	return true
}

// Flush publishes spooled items until the ring refuses one. It returns the
// number delivered.
func (s *Spool[E]) Flush() int {
	n := 0
	for s.q.Length() > 0 {
		if !s.publish(s.q.Peek().(E)) {
			break
		}
		s.q.Remove()
		n++
	}
	return n
}

// Len returns the backlog size.
func (s *Spool[E]) Len() int { return s.q.Length() }

// Rejected returns how many items were dropped because the backlog was
// full or the ring could never carry them.
func (s *Spool[E]) Rejected() uint64 { return s.rejected }
