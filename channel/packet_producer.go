// File: channel/packet_producer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package channel

import "github.com/momentics/hioload-devchan/api"

var _ api.FrameProducer = (*PacketProducer)(nil)

// PacketProducer is the write side of a variable-length frame channel.
// Frames are never split across the physical end of storage: when the
// tail is too short but the head of the ring has room, the tail is marked
// dead with a sentinel and the frame starts at slot 0.
type PacketProducer struct {
	p     *Producer[uint32]
	bytes []byte
}

// NewPacketProducer returns a producer attached to h; h may be nil.
func NewPacketProducer(h *Handle[uint32]) *PacketProducer {
	pp := &PacketProducer{p: NewProducer[uint32](nil)}
	pp.Attach(h)
	return pp
}

// Attach points the producer at a packet consumer. It must not race with
// Produce.
func (pp *PacketProducer) Attach(h *Handle[uint32]) {
	pp.p.Attach(h)
	pp.bytes = nil
	if h != nil {
		pp.bytes = byteView(h.st.slots)
	}
}

// MaxPayload returns the largest frame the attached ring accepts, 0 when
// detached.
func (pp *PacketProducer) MaxPayload() int {
	if pp.p.h == nil {
		return 0
	}
	return maxPayload(pp.p.h.st.size)
}

// Produce copies buf into the ring as one frame and posts the wait
// primitive once. An empty buf is refused without touching any state.
// Otherwise it returns false, setting the drop flag, when no consumer is
// attached or neither the tail nor the head of the ring has enough
// contiguous room.
func (pp *PacketProducer) Produce(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	h := pp.p.h
	if h == nil {
		pp.p.reject(api.ErrCodeNoConsumer)
		return false
	}
	st := h.st
	if len(buf) > maxPayload(st.size) {
		pp.p.reject(api.ErrCodeChannelFull)
		return false
	}
	n := uint32(len(buf))
	needed := slotsFor(n)
	w := st.cur.write.Load()
	right, left := freeRegions(w, st.cur.read.Load(), st.size)

	ofs := w
	if needed > right {
		if needed > left {
			pp.p.reject(api.ErrCodeChannelFull)
			return false
		}
		st.slots[w] = sentinel
		ofs = 0
	}
	st.slots[ofs] = n
	copy(pp.bytes[(ofs+1)*SlotSize:], buf)

	next := ofs + needed
	if next == st.size {
		next = 0
	}
	st.cur.write.Store(next)
	h.notify.Post()
	pp.p.accept()
	return true
}

// Dropping reports whether the most recent call was rejected.
func (pp *PacketProducer) Dropping() bool { return pp.p.Dropping() }

// LastError reports the reason of the most recent rejection.
func (pp *PacketProducer) LastError() error { return pp.p.LastError() }

// Stats returns the producer half of the channel telemetry.
func (pp *PacketProducer) Stats() api.ChannelStats { return pp.p.Stats() }
