// File: facade/packet.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package facade

import (
	"context"

	"github.com/momentics/hioload-devchan/adapters"
	"github.com/momentics/hioload-devchan/api"
	"github.com/momentics/hioload-devchan/channel"
	"github.com/momentics/hioload-devchan/internal/concurrency"
)

var _ api.GracefulShutdown = (*PacketChannel)(nil)

// PacketChannel is an assembled variable-length frame channel.
type PacketChannel struct {
	*base
	consumer *channel.PacketConsumer
	producer *channel.PacketProducer
	spool    *channel.Spool[[]byte]
	loop     *concurrency.EventLoop[[]byte]
}

// NewPacketChannel builds a frame channel from cfg; Slots counts 4-byte
// slots and must be at least 3.
func NewPacketChannel(cfg *Config, ctrl *adapters.ControlAdapter) (*PacketChannel, error) {
	b, err := newBase(cfg, api.KindPacket, ctrl)
	if err != nil {
		return nil, err
	}
	pc := &PacketChannel{base: b}

	a, err := b.allocArena(channel.PacketArenaSize(b.cfg.Slots))
	if err != nil {
		b.abort()
		return nil, err
	}
	if a != nil {
		pc.consumer, err = channel.NewPacketConsumerOn(a, b.cfg.Slots, b.sem)
	} else {
		pc.consumer, err = channel.NewPacketConsumer(b.cfg.Slots, b.sem)
	}
	if err != nil {
		b.abort()
		return nil, err
	}
	pc.producer = channel.NewPacketProducer(pc.consumer.Handle())
	if b.cfg.SpoolLimit > 0 {
		if pc.spool, err = channel.NewPacketSpool(pc.producer, b.cfg.SpoolLimit); err != nil {
			b.abort()
			return nil, err
		}
	}

	c := pc.consumer
	pc.loop = concurrency.NewEventLoop(concurrency.Source[[]byte]{
		Next:    c.GetBufferContext,
		Release: c.FreeBuffer,
	}, b.cfg.ConsumerCPU)

	b.onShutdown(c.Close)
	b.onShutdown(func() error {
		pc.loop.Stop()
		return nil
	})
	b.register(pc.Stats)
	return pc, nil
}

// Consumer returns the read side.
func (pc *PacketChannel) Consumer() *channel.PacketConsumer { return pc.consumer }

// Producer returns the write side.
func (pc *PacketChannel) Producer() *channel.PacketProducer { return pc.producer }

// MaxPayload returns the largest frame the channel accepts.
func (pc *PacketChannel) MaxPayload() int { return pc.consumer.MaxPayload() }

// Produce hands buf to the spool when one is configured, to the producer
// otherwise. Spooled frames are copied.
func (pc *PacketChannel) Produce(buf []byte) bool {
	if pc.spool != nil {
		return pc.spool.Offer(buf)
	}
	return pc.producer.Produce(buf)
}

// Flush retries spooled frames.
func (pc *PacketChannel) Flush() int {
	if pc.spool == nil {
		return 0
	}
	return pc.spool.Flush()
}

// HandleFunc registers fn with the consumer loop. The frame aliases the
// ring and is only valid during the call.
func (pc *PacketChannel) HandleFunc(fn func([]byte)) (unregister func()) {
	return pc.loop.RegisterHandler(concurrency.HandlerFunc[[]byte](fn))
}

// Run drives the consumer loop until ctx ends or the channel shuts down.
func (pc *PacketChannel) Run(ctx context.Context) error {
	return pc.loop.Run(ctx)
}

// Processed returns the number of frames the loop dispatched.
func (pc *PacketChannel) Processed() uint64 { return pc.loop.Processed() }

// Stats merges both halves of the channel telemetry. With a spool,
// Dropped counts only items the spool gave up on.
func (pc *PacketChannel) Stats() api.ChannelStats {
	s := pc.consumer.Stats()
	ps := pc.producer.Stats()
	s.Published, s.Dropped, s.Dropping = ps.Published, ps.Dropped, ps.Dropping
	if pc.spool != nil {
		s.Spooled = pc.spool.Len()
		s.Dropped = pc.spool.Rejected()
	}
	return s
}
