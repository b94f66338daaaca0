// File: channel/packet_consumer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package channel

import (
	"context"
	"sync/atomic"

	"github.com/momentics/hioload-devchan/api"
	"github.com/momentics/hioload-devchan/pool"
)

var _ api.FrameConsumer = (*PacketConsumer)(nil)

// PacketConsumer is the read side of a variable-length frame channel. It
// reuses the fixed-item consumer over uint32 slots and reads frames in
// place.
type PacketConsumer struct {
	c     *Consumer[uint32]
	bytes []byte
	wraps atomic.Uint64
}

// NewPacketConsumer allocates size slots of SlotSize bytes on the heap.
func NewPacketConsumer(size int, sem api.Semaphore) (*PacketConsumer, error) {
	if err := checkSize(size, minPacketSlots); err != nil {
		return nil, err
	}
	c, err := newConsumer(newHeapStorage[uint32](size), sem, api.KindPacket)
	if err != nil {
		return nil, err
	}
	return &PacketConsumer{c: c, bytes: byteView(c.st.slots)}, nil
}

// NewPacketConsumerOn lays the ring out in a and resets the cursors. See
// PacketArenaSize.
func NewPacketConsumerOn(a *pool.Arena, size int, sem api.Semaphore) (*PacketConsumer, error) {
	if err := checkSize(size, minPacketSlots); err != nil {
		return nil, err
	}
	c, err := NewConsumerOn[uint32](a, size, sem)
	if err != nil {
		return nil, err
	}
	return &PacketConsumer{c: c, bytes: byteView(c.st.slots)}, nil
}

// Handle returns the reference a PacketProducer attaches to.
func (pc *PacketConsumer) Handle() *Handle[uint32] { return pc.c.Handle() }

// Storage exposes the ring for diagnostics.
func (pc *PacketConsumer) Storage() *Storage[uint32] { return pc.c.st }

// MaxPayload returns the largest frame the channel can ever carry. It is
// one slot short of the byte capacity minus the header because one slot
// always stays free to tell a full ring from an empty one. Frames are
// never split, so a large frame also needs one contiguous free region; an
// empty ring with both cursors at slot 0 takes MaxPayload.
func (pc *PacketConsumer) MaxPayload() int { return maxPayload(pc.c.st.size) }

// GetBuffer blocks until a frame is available and returns its payload. The
// slice aliases the ring and is valid until FreeBuffer.
func (pc *PacketConsumer) GetBuffer() ([]byte, error) {
	return pc.GetBufferContext(context.Background())
}

// GetBufferContext is GetBuffer with cancellation.
//
// A stored length that cannot belong to this ring, or a granted wait on an
// empty ring, means the cursors or the memory are corrupt; the consumer
// panics with an *api.Error wrapping api.ErrProtocolViolation rather than
// hand out a bad view.
func (pc *PacketConsumer) GetBufferContext(ctx context.Context) ([]byte, error) {
	if err := pc.c.sem.Wait(ctx); err != nil {
		return nil, err
	}
	st := pc.c.st
	r := pc.c.ready()
	n := st.slots[r]
	if n == sentinel {
		r = 0
		st.cur.read.Store(0)
		pc.wraps.Add(1)
		n = st.slots[0]
	}
	pc.validate(r, n)
	off := (r + 1) * SlotSize
	return pc.bytes[off : off+n : off+n], nil
}

func (pc *PacketConsumer) validate(r, n uint32) {
	st := pc.c.st
	capBytes := uint64(st.size) * SlotSize
	if uint64(n) < capBytes && uint64(r)+uint64(slotsFor(n)) <= uint64(st.size) {
		return
	}
	err := api.NewError(api.ErrCodeProtocolViolation, "frame length inconsistent with storage").
		WithContext("length", n).
		WithContext("read_pos", r).
		WithContext("capacity_bytes", capBytes)
	logger().Error("protocol violation", "length", n, "read_pos", r, "capacity_bytes", capBytes)
	panic(err)
}

// FreeBuffer advances read_pos past the frame returned by the last
// GetBuffer.
func (pc *PacketConsumer) FreeBuffer() {
	st := pc.c.st
	r := st.cur.read.Load()
	n := st.slots[r]
	st.cur.read.Store((r + slotsFor(n)) % st.size)
	pc.c.consumed.Add(1)
}

// Wraps returns how many sentinels the consumer skipped.
func (pc *PacketConsumer) Wraps() uint64 { return pc.wraps.Load() }

// Stats returns the consumer half of the channel telemetry.
func (pc *PacketConsumer) Stats() api.ChannelStats {
	s := pc.c.Stats()
	s.Kind = api.KindPacket.String()
	s.Wraps = pc.wraps.Load()
	return s
}

// Close releases the wait primitive.
func (pc *PacketConsumer) Close() error { return pc.c.Close() }
