// File: facade/base.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Parts shared by item and packet channels: wait primitive, arena,
// control registration and ordered teardown.

package facade

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/momentics/hioload-devchan/adapters"
	"github.com/momentics/hioload-devchan/api"
	"github.com/momentics/hioload-devchan/internal/concurrency"
	"github.com/momentics/hioload-devchan/internal/logging"
	"github.com/momentics/hioload-devchan/pool"
)

// SetLogger replaces the logger used by every package of the module. nil
// silences logging.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

func logger() *slog.Logger {
	return logging.With("facade")
}

type base struct {
	cfg   *Config
	kind  api.ChannelKind
	sem   api.Semaphore
	arena *pool.Arena
	ctrl  *adapters.ControlAdapter

	mu       sync.Mutex
	closers  []func() error
	shutdown bool
}

func newBase(cfg *Config, kind api.ChannelKind, ctrl *adapters.ControlAdapter) (*base, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ctrl == nil {
		ctrl = adapters.NewControlAdapter()
	}
	b := &base{cfg: cfg, kind: kind, ctrl: ctrl}
	sem, err := newSemaphore(cfg.Wait)
	if err != nil {
		return nil, err
	}
	b.sem = sem
	return b, nil
}

func newSemaphore(wait string) (api.Semaphore, error) {
	if wait == WaitEventfd {
		s, err := concurrency.NewEventSemaphore()
		if err != nil {
			return nil, fmt.Errorf("wait primitive: %w", err)
		}
		return s, nil
	}
	return concurrency.NewSemaphore(), nil
}

// allocArena maps shared storage of size bytes, or returns nil for heap
// storage.
func (b *base) allocArena(size int) (*pool.Arena, error) {
	if !b.cfg.Shared {
		return nil, nil
	}
	var (
		a   *pool.Arena
		err error
	)
	if b.cfg.Segment != "" {
		a, err = pool.CreateSegment(b.cfg.Segment, size)
	} else {
		a, err = pool.NewArena(size, true)
	}
	if err != nil {
		return nil, fmt.Errorf("channel storage: %w", err)
	}
	b.arena = a
	return a, nil
}

// abort releases what a failed constructor already acquired.
func (b *base) abort() {
	b.sem.Close()
	if b.arena != nil {
		b.arena.Close()
	}
}

// register wires stats into control and logs the ready channel.
func (b *base) register(stats func() api.ChannelStats) {
	b.ctrl.SetConfig(b.cfg.Map())
	if b.cfg.EnableMetrics {
		b.ctrl.RegisterChannel(b.cfg.Name, stats)
		b.onShutdown(func() error {
			b.ctrl.UnregisterChannel(b.cfg.Name)
			return nil
		})
	}
	if b.cfg.EnableDebug {
		probe := b.cfg.Name + ".segment"
		b.ctrl.RegisterDebugProbe(probe, func() any {
			if b.arena == nil {
				return "heap"
			}
			if p := b.arena.Path(); p != "" {
				return p
			}
			return "anonymous"
		})
	}
	logger().Info("channel ready",
		"name", b.cfg.Name,
		"kind", b.kind,
		"slots", b.cfg.Slots,
		"wait", b.cfg.Wait,
		"shared", b.cfg.Shared,
		"spool", b.cfg.SpoolLimit)
}

func (b *base) onShutdown(fn func() error) {
	b.mu.Lock()
	b.closers = append(b.closers, fn)
	b.mu.Unlock()
}

// Control returns the control adapter the channel reports to.
func (b *base) Control() *adapters.ControlAdapter { return b.ctrl }

// Config returns the effective configuration.
func (b *base) Config() Config { return *b.cfg }

// Notifier returns the producer end of the wait primitive, for a producer
// attached through OpenHandle.
func (b *base) Notifier() api.Notifier { return b.sem }

// Arena returns the shared storage, nil for heap-backed channels.
func (b *base) Arena() *pool.Arena { return b.arena }

// EventFd returns the eventfd a peer process posts to, or -1.
func (b *base) EventFd() int {
	if s, ok := b.sem.(*concurrency.EventSemaphore); ok {
		return s.Fd()
	}
	return -1
}

// Shutdown runs the teardown steps in reverse registration order and
// unmaps shared storage last. The producer must be quiescent. Shutdown is
// idempotent.
func (b *base) Shutdown() error {
	b.mu.Lock()
	if b.shutdown {
		b.mu.Unlock()
		return nil
	}
	b.shutdown = true
	closers := b.closers
	b.mu.Unlock()

	var first error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && first == nil {
			first = err
		}
	}
	if b.arena != nil {
		if err := b.arena.Close(); err != nil && first == nil {
			first = err
		}
	}
	logger().Info("channel shut down", "name", b.cfg.Name, "err", first)
	return first
}
