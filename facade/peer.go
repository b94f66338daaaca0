// File: facade/peer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Producer side for a process that maps a channel someone else built.

package facade

import (
	"errors"

	"github.com/momentics/hioload-devchan/channel"
	"github.com/momentics/hioload-devchan/internal/concurrency"
	"github.com/momentics/hioload-devchan/pool"
)

// Peer holds the mapping and wait-primitive handle of an attached
// producer. The cursors and storage stay owned by the building side.
type Peer struct {
	arena *pool.Arena
	sem   *concurrency.EventSemaphore
}

func openPeer(segment string, eventfd int) (*Peer, error) {
	a, err := pool.OpenSegment(segment)
	if err != nil {
		return nil, err
	}
	sem, err := concurrency.OpenEventSemaphore(eventfd)
	if err != nil {
		a.Close()
		return nil, err
	}
	return &Peer{arena: a, sem: sem}, nil
}

// OpenItemPeer maps the named segment of an item channel with slots slots
// and posts to the channel's eventfd.
func OpenItemPeer[T any](segment string, slots int, eventfd int) (*channel.Producer[T], *Peer, error) {
	p, err := openPeer(segment, eventfd)
	if err != nil {
		return nil, nil, err
	}
	h, err := channel.OpenHandle[T](p.arena, slots, p.sem)
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	return channel.NewProducer(h), p, nil
}

// OpenPacketPeer is OpenItemPeer for packet channels.
func OpenPacketPeer(segment string, slots int, eventfd int) (*channel.PacketProducer, *Peer, error) {
	p, err := openPeer(segment, eventfd)
	if err != nil {
		return nil, nil, err
	}
	h, err := channel.OpenPacketHandle(p.arena, slots, p.sem)
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	return channel.NewPacketProducer(h), p, nil
}

// Close unmaps the segment. The eventfd stays open; it belongs to the
// building side.
func (p *Peer) Close() error {
	return errors.Join(p.sem.Close(), p.arena.Close())
}
