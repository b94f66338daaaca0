// File: channel/storage.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Slot storage and cursor block. The storage is allocated once by the
// consumer side, either on the Go heap or inside a pool.Arena, and is
// never resized.

package channel

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/momentics/hioload-devchan/api"
	"github.com/momentics/hioload-devchan/pool"
)

// cursors is laid out at the head of an arena when storage is shared, so
// its layout must not depend on anything but the target architecture.
type cursors struct {
	read  atomic.Uint32 // consumer-owned
	_     cpu.CacheLinePad
	write atomic.Uint32 // producer-owned
	_     cpu.CacheLinePad
}

// headerBytes is the arena space reserved for cursors, 64-byte aligned.
var headerBytes = (int(unsafe.Sizeof(cursors{})) + 63) &^ 63

// maxSlots keeps cursors and byte offsets inside uint32.
const maxSlots = 1 << 29

// Storage is the ring: size slots of T plus the two cursors.
type Storage[T any] struct {
	cur   *cursors
	slots []T
	size  uint32
	arena *pool.Arena
}

func checkSize(size, min int) error {
	if size < min || size > maxSlots {
		return fmt.Errorf("%w: slot count %d outside [%d, %d]", api.ErrInvalidArgument, size, min, maxSlots)
	}
	return nil
}

func newHeapStorage[T any](size int) *Storage[T] {
	return &Storage[T]{
		cur:   &cursors{},
		slots: make([]T, size),
		size:  uint32(size),
	}
}

// ArenaSize returns the number of arena bytes needed to hold size slots of
// T together with the cursor block.
func ArenaSize[T any](size int) int {
	var zero T
	return headerBytes + size*int(unsafe.Sizeof(zero))
}

// arenaStorage overlays storage on a. T must not contain Go pointers: the
// memory is invisible to the garbage collector and may be mapped by a peer.
func arenaStorage[T any](a *pool.Arena, size int) (*Storage[T], error) {
	var zero T
	if unsafe.Sizeof(zero) == 0 {
		return nil, fmt.Errorf("%w: zero-size slot type", api.ErrInvalidArgument)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: nil arena", api.ErrConstruction)
	}
	if need := ArenaSize[T](size); a.Len() < need {
		return nil, fmt.Errorf("%w: arena holds %d bytes, need %d", api.ErrConstruction, a.Len(), need)
	}
	mem := a.Bytes()
	return &Storage[T]{
		cur:   (*cursors)(unsafe.Pointer(&mem[0])),
		slots: unsafe.Slice((*T)(unsafe.Pointer(&mem[headerBytes])), size),
		size:  uint32(size),
		arena: a,
	}, nil
}

// Slots returns the slot count; usable capacity is Slots()-1.
func (s *Storage[T]) Slots() int { return int(s.size) }

// Len returns the number of occupied slots as seen at the time of the call.
func (s *Storage[T]) Len() int {
	r := s.cur.read.Load()
	w := s.cur.write.Load()
	return int((w + s.size - r) % s.size)
}

// Empty reports read_pos == write_pos.
func (s *Storage[T]) Empty() bool {
	return s.cur.read.Load() == s.cur.write.Load()
}

// Full reports (write_pos+1) mod size == read_pos.
func (s *Storage[T]) Full() bool {
	return (s.cur.write.Load()+1)%s.size == s.cur.read.Load()
}

// Positions returns read_pos and write_pos.
func (s *Storage[T]) Positions() (read, write uint32) {
	return s.cur.read.Load(), s.cur.write.Load()
}

// Shared reports whether the storage lives in a shared mapping.
func (s *Storage[T]) Shared() bool {
	return s.arena != nil && s.arena.Shared()
}

// Handle is a non-owning reference to a consumer's storage together with
// the producer end of its wait primitive. It is all a producer needs.
type Handle[T any] struct {
	st     *Storage[T]
	notify api.Notifier
}

// OpenHandle attaches to storage that a consumer laid out in a, typically
// in another process that shares the mapping. size must match the
// consumer's slot count; the cursors are left untouched.
func OpenHandle[T any](a *pool.Arena, size int, notify api.Notifier) (*Handle[T], error) {
	if err := checkSize(size, 2); err != nil {
		return nil, err
	}
	if notify == nil {
		return nil, fmt.Errorf("%w: nil notifier", api.ErrConstruction)
	}
	st, err := arenaStorage[T](a, size)
	if err != nil {
		return nil, err
	}
	return &Handle[T]{st: st, notify: notify}, nil
}

// Storage exposes the referenced ring for diagnostics.
func (h *Handle[T]) Storage() *Storage[T] { return h.st }
