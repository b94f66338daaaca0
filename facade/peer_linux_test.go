//go:build linux
// +build linux

package facade_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/momentics/hioload-devchan/api"
	"github.com/momentics/hioload-devchan/facade"
)

type sample struct {
	Seq   uint64
	Value int32
}

func TestItemPeerSharedSegment(t *testing.T) {
	cfg := facade.DefaultConfig()
	cfg.Name = "peer"
	cfg.Slots = 16
	cfg.Wait = facade.WaitEventfd
	cfg.Shared = true
	cfg.Segment = fmt.Sprintf("test_item_%d", os.Getpid())
	ch, err := facade.NewItemChannel[sample](cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Shutdown()
	if ch.EventFd() < 0 || ch.Arena() == nil || ch.Arena().Path() == "" {
		t.Fatal("shared channel without eventfd or segment")
	}

	p, peer, err := facade.OpenItemPeer[sample](cfg.Segment, cfg.Slots, ch.EventFd())
	if err != nil {
		t.Fatal(err)
	}
	defer peer.Close()

	c := ch.Consumer()
	for i := uint64(0); i < 40; i++ {
		if !p.Publish(sample{Seq: i, Value: int32(i) * -2}) {
			t.Fatalf("peer publish %d rejected", i)
		}
		v, err := c.Acquire()
		if err != nil {
			t.Fatal(err)
		}
		if v.Seq != i || v.Value != int32(i)*-2 {
			t.Fatalf("got %+v", *v)
		}
		c.Release()
	}
}

func TestPacketPeerSharedSegment(t *testing.T) {
	cfg := facade.DefaultConfig()
	cfg.Name = "netpeer"
	cfg.Slots = 32
	cfg.Wait = facade.WaitEventfd
	cfg.Shared = true
	cfg.Segment = fmt.Sprintf("test_packet_%d", os.Getpid())
	ch, err := facade.NewPacketChannel(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Shutdown()

	if _, _, err := facade.OpenPacketPeer(cfg.Segment, 2, ch.EventFd()); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("2-slot packet peer: %v", err)
	}
	p, peer, err := facade.OpenPacketPeer(cfg.Segment, cfg.Slots, ch.EventFd())
	if err != nil {
		t.Fatal(err)
	}
	defer peer.Close()

	c := ch.Consumer()
	for i := 0; i < 50; i++ {
		msg := fmt.Sprintf("peer frame %d", i)
		if !p.Produce([]byte(msg)) {
			t.Fatalf("frame %d rejected", i)
		}
		buf, err := c.GetBuffer()
		if err != nil {
			t.Fatal(err)
		}
		if string(buf) != msg {
			t.Fatalf("got %q", buf)
		}
		c.FreeBuffer()
	}
}
