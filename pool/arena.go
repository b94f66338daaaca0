// File: pool/arena.go
// Package pool provides the backing memory for channel storage.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// An Arena is one contiguous, 8-byte aligned region allocated once and
// never resized. Heap arenas serve in-process channels; shared arenas are
// MAP_SHARED mappings that a peer in another protection domain can map as
// well (inherited across fork, or opened by name through OpenSegment).

package pool

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/momentics/hioload-devchan/api"
)

// Arena is a fixed region of memory.
type Arena struct {
	mem     []byte
	shared  bool
	path    string
	release func(mem []byte) error
	closed  atomic.Bool
}

// NewArena allocates size bytes. shared selects an anonymous shared
// mapping instead of the Go heap.
func NewArena(size int, shared bool) (*Arena, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: arena size %d", api.ErrInvalidArgument, size)
	}
	if shared {
		return sharedAlloc(size)
	}
	return heapAlloc(size), nil
}

// heapAlloc backs the arena with a []uint64 so the base is 8-byte aligned.
func heapAlloc(size int) *Arena {
	words := make([]uint64, (size+7)/8)
	mem := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)
	return &Arena{mem: mem}
}

// Bytes returns the whole region. The slice stays valid until Close.
func (a *Arena) Bytes() []byte { return a.mem }

// Len returns the region size in bytes.
func (a *Arena) Len() int { return len(a.mem) }

// Shared reports whether the region is a shared mapping.
func (a *Arena) Shared() bool { return a.shared }

// Path returns the segment path for named segments, "" otherwise.
func (a *Arena) Path() string { return a.path }

// Close unmaps shared regions. Heap arenas are left to the GC.
func (a *Arena) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	if a.release == nil {
		return nil
	}
	return a.release(a.mem)
}
