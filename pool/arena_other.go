//go:build !linux
// +build !linux

// File: pool/arena_other.go
// Author: momentics <momentics@gmail.com>
//
// Shared mappings are implemented for Linux only.

package pool

import (
	"fmt"

	"github.com/momentics/hioload-devchan/api"
)

func sharedAlloc(size int) (*Arena, error) {
	return nil, fmt.Errorf("%w: shared arena: %v", api.ErrConstruction, api.ErrNotSupported)
}

// CreateSegment is not supported on this platform.
func CreateSegment(name string, size int) (*Arena, error) {
	return sharedAlloc(size)
}

// OpenSegment is not supported on this platform.
func OpenSegment(name string) (*Arena, error) {
	return sharedAlloc(0)
}
