// File: facade/item.go
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

var _ api.GracefulShutdown = (*ItemChannel[int])(nil)

// ItemChannel is an assembled fixed-item channel pair: storage, wait
// primitive, consumer, producer, optional spool and a consumer loop.
type ItemChannel[T any] struct {
	*base
	consumer *channel.Consumer[T]
	producer *channel.Producer[T]
	spool    *channel.Spool[T]
	loop     *concurrency.EventLoop[T]
}

// NewItemChannel builds a channel from cfg (nil means DefaultConfig). ctrl
// may be shared between channels; nil creates a private one. Shared
// storage requires T to be free of Go pointers.
func NewItemChannel[T any](cfg *Config, ctrl *adapters.ControlAdapter) (*ItemChannel[T], error) {
	b, err := newBase(cfg, api.KindItem, ctrl)
	if err != nil {
		return nil, err
	}
	ic := &ItemChannel[T]{base: b}

	a, err := b.allocArena(channel.ArenaSize[T](b.cfg.Slots))
	if err != nil {
		b.abort()
		return nil, err
	}
	if a != nil {
		ic.consumer, err = channel.NewConsumerOn[T](a, b.cfg.Slots, b.sem)
	} else {
		ic.consumer, err = channel.NewConsumer[T](b.cfg.Slots, b.sem)
	}
	if err != nil {
		b.abort()
		return nil, err
	}
	ic.producer = channel.NewProducer(ic.consumer.Handle())
	if b.cfg.SpoolLimit > 0 {
		if ic.spool, err = channel.NewSpool(ic.producer, b.cfg.SpoolLimit); err != nil {
			b.abort()
			return nil, err
		}
	}

	c := ic.consumer
	ic.loop = concurrency.NewEventLoop(concurrency.Source[T]{
		Next: func(ctx context.Context) (T, error) {
			p, err := c.AcquireContext(ctx)
			if err != nil {
				var zero T
				return zero, err
			}
			return *p, nil
		},
		Release: c.Release,
	}, b.cfg.ConsumerCPU)

	b.onShutdown(c.Close)
	b.onShutdown(func() error {
		ic.loop.Stop()
		return nil
	})
	b.register(ic.Stats)
	return ic, nil
}

// Consumer returns the read side for callers that drive it themselves
// instead of Run.
func (ic *ItemChannel[T]) Consumer() *channel.Consumer[T] { return ic.consumer }

// Producer returns the write side.
func (ic *ItemChannel[T]) Producer() *channel.Producer[T] { return ic.producer }

// Publish hands item to the spool when one is configured, to the producer
// otherwise. It never blocks.
func (ic *ItemChannel[T]) Publish(item T) bool {
	if ic.spool != nil {
		return ic.spool.Offer(item)
	}
	return ic.producer.Publish(item)
}

// Flush retries spooled items and returns how many were delivered.
func (ic *ItemChannel[T]) Flush() int {
	if ic.spool == nil {
		return 0
	}
	return ic.spool.Flush()
}

// HandleFunc registers fn with the consumer loop. The returned function
// removes it.
func (ic *ItemChannel[T]) HandleFunc(fn func(T)) (unregister func()) {
	return ic.loop.RegisterHandler(concurrency.HandlerFunc[T](fn))
}

// Run drives the consumer loop until ctx ends or the channel shuts down.
func (ic *ItemChannel[T]) Run(ctx context.Context) error {
	return ic.loop.Run(ctx)
}

// Processed returns the number of items the loop dispatched.
func (ic *ItemChannel[T]) Processed() uint64 { return ic.loop.Processed() }

// Stats merges both halves of the channel telemetry. With a spool,
// Dropped counts only items the spool gave up on.
func (ic *ItemChannel[T]) Stats() api.ChannelStats {
	s := ic.consumer.Stats()
	ps := ic.producer.Stats()
	s.Published, s.Dropped, s.Dropping = ps.Published, ps.Dropped, ps.Dropping
	if ic.spool != nil {
		s.Spooled = ic.spool.Len()
		s.Dropped = ic.spool.Rejected()
	}
	return s
}
