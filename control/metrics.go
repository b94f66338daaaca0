// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector. Channel counters live in atomics on the data
// path; collectors copy them into this map when a snapshot is taken.

package control

import (
	"sync"
	"time"

	"github.com/momentics/hioload-devchan/api"
)

// MetricsRegistry holds mutable and read-only metrics.
type MetricsRegistry struct {
	mu         sync.RWMutex
	metrics    map[string]any
	collectors map[string]func() api.ChannelStats
	updated    time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics:    make(map[string]any),
		collectors: make(map[string]func() api.ChannelStats),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// RegisterChannel adds a collector whose stats appear under prefix.
func (mr *MetricsRegistry) RegisterChannel(prefix string, fn func() api.ChannelStats) {
	mr.mu.Lock()
	mr.collectors[prefix] = fn
	mr.mu.Unlock()
}

// UnregisterChannel drops the collector and the keys it produced.
func (mr *MetricsRegistry) UnregisterChannel(prefix string) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	delete(mr.collectors, prefix)
	for k := range flatten(prefix, api.ChannelStats{}) {
		delete(mr.metrics, k)
	}
}

// Updated returns the time of the last change.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// GetSnapshot runs the collectors and returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.Lock()
	if len(mr.collectors) > 0 {
		for prefix, fn := range mr.collectors {
			for k, v := range flatten(prefix, fn()) {
				mr.metrics[k] = v
			}
		}
		mr.updated = time.Now()
	}
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	mr.mu.Unlock()
	return out
}

func flatten(prefix string, s api.ChannelStats) map[string]any {
	return map[string]any{
		prefix + ".published": s.Published,
		prefix + ".dropped":   s.Dropped,
		prefix + ".consumed":  s.Consumed,
		prefix + ".wraps":     s.Wraps,
		prefix + ".pending":   s.Pending,
		prefix + ".spooled":   s.Spooled,
		prefix + ".dropping":  s.Dropping,
	}
}
