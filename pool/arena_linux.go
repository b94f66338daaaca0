//go:build linux
// +build linux

// File: pool/arena_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux shared arenas: anonymous MAP_SHARED mappings and named segments
// under /dev/shm (falling back to the temp dir).

package pool

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-devchan/api"
)

const segmentPrefix = "devchan_"

func sharedAlloc(size int) (*Arena, error) {
	mem, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %v", api.ErrConstruction, size, err)
	}
	return &Arena{mem: mem, shared: true, release: unix.Munmap}, nil
}

// SegmentPath returns the file backing the named segment.
func SegmentPath(name string) string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return filepath.Join("/dev/shm", segmentPrefix+name)
	}
	return filepath.Join(os.TempDir(), segmentPrefix+name)
}

// CreateSegment creates a named shared segment of size bytes. It fails if
// the segment already exists. Close unmaps it and removes the file.
func CreateSegment(name string, size int) (*Arena, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: segment size %d", api.ErrInvalidArgument, size)
	}
	path := SegmentPath(name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: create segment %s: %v", api.ErrConstruction, path, err)
	}
	defer f.Close()
	if err := f.Truncate(int64(size)); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: resize segment: %v", api.ErrConstruction, err)
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: mmap segment: %v", api.ErrConstruction, err)
	}
	return &Arena{
		mem:    mem,
		shared: true,
		path:   path,
		release: func(b []byte) error {
			err := unix.Munmap(b)
			if rerr := os.Remove(path); err == nil && !os.IsNotExist(rerr) {
				err = rerr
			}
			return err
		},
	}, nil
}

// OpenSegment maps an existing named segment. Close only unmaps it.
func OpenSegment(name string) (*Arena, error) {
	path := SegmentPath(name)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open segment %s: %v", api.ErrConstruction, path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat segment: %v", api.ErrConstruction, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: segment %s is empty", api.ErrConstruction, path)
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap segment: %v", api.ErrConstruction, err)
	}
	return &Arena{mem: mem, shared: true, path: path, release: unix.Munmap}, nil
}
