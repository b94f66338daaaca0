// File: channel/packet.go
// Author: momentics <momentics@gmail.com>
//
// Frame layout shared by PacketConsumer and PacketProducer.
//
//	[uint32 length][payload, padded up to a whole slot]
//
// A frame occupies ceil((length+HeaderSize)/SlotSize) contiguous slots and
// never crosses the physical end of storage. A header equal to sentinel
// marks dead tail space: the reader wraps to slot 0.

package channel

import (
	"unsafe"

	"github.com/momentics/hioload-devchan/api"
	"github.com/momentics/hioload-devchan/pool"
)

const (
	// SlotSize is the byte width of one packet slot.
	SlotSize = 4
	// HeaderSize is the byte width of the frame length header.
	HeaderSize = 4

	sentinel = ^uint32(0)

	// minPacketSlots holds one single-slot payload frame plus the reserved
	// slot.
	minPacketSlots = 3
)

// slotsFor returns the slot count of a frame with an n-byte payload.
func slotsFor(n uint32) uint32 {
	return (n + HeaderSize + SlotSize - 1) / SlotSize
}

// maxPayload is the largest payload that fits an empty ring of size slots:
// the size-1 usable slots (one is reserved to tell full from empty) minus
// the header.
func maxPayload(size uint32) int {
	return int(size-1)*SlotSize - HeaderSize
}

// PacketArenaSize returns the arena bytes needed for a packet channel.
func PacketArenaSize(size int) int {
	return ArenaSize[uint32](size)
}

// OpenPacketHandle is OpenHandle for packet storage. It rejects slot
// counts no packet consumer could have been built with.
func OpenPacketHandle(a *pool.Arena, size int, notify api.Notifier) (*Handle[uint32], error) {
	if err := checkSize(size, minPacketSlots); err != nil {
		return nil, err
	}
	return OpenHandle[uint32](a, size, notify)
}

// byteView reinterprets the slot array as its backing bytes.
func byteView(slots []uint32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&slots[0])), len(slots)*SlotSize)
}

// freeRegions returns the contiguous free slots right of w (up to the end
// of storage or up to the slot before r) and from slot 0 up to the slot
// before r. One slot always stays free so that a full ring never looks
// empty.
func freeRegions(w, r, size uint32) (right, left uint32) {
	if w < r {
		return r - w - 1, 0
	}
	// w >= r: [w, size) is free, and so is [0, r-1).
	right = size - w
	if r == 0 {
		// ending at size would wrap write_pos onto read_pos
		right--
		return right, 0
	}
	return right, r - 1
}
