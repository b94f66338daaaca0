// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control interface using control package primitives.

package adapters

import (
	"github.com/momentics/hioload-devchan/api"
	"github.com/momentics/hioload-devchan/control"
)

var _ api.Control = (*ControlAdapter)(nil)

// ControlAdapter bundles config, metrics and debug probes of one process.
type ControlAdapter struct {
	config  *control.ConfigStore
	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
}

// NewControlAdapter returns an adapter with the platform probes registered.
func NewControlAdapter() *ControlAdapter {
	adapter := &ControlAdapter{
		config:  control.NewConfigStore(),
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
	}
	control.RegisterPlatformProbes(adapter.debug)
	return adapter
}

func (c *ControlAdapter) GetConfig() map[string]any {
	return c.config.GetSnapshot()
}

func (c *ControlAdapter) SetConfig(cfg map[string]any) error {
	c.config.SetConfig(cfg)
	return nil
}

// Stats merges metrics, channel collectors and probe output; probe keys
// carry a "debug." prefix.
func (c *ControlAdapter) Stats() map[string]any {
	stats := c.metrics.GetSnapshot()
	debugStats := c.debug.DumpState()
	combined := make(map[string]any, len(stats)+len(debugStats))
	for k, v := range stats {
		combined[k] = v
	}
	for k, v := range debugStats {
		combined["debug."+k] = v
	}
	return combined
}

func (c *ControlAdapter) OnReload(fn func()) {
	c.config.OnReload(fn)
}

func (c *ControlAdapter) SetMetric(key string, value any) {
	c.metrics.Set(key, value)
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

// RegisterChannel publishes a channel's counters under prefix.
func (c *ControlAdapter) RegisterChannel(prefix string, fn func() api.ChannelStats) {
	c.metrics.RegisterChannel(prefix, fn)
	c.debug.RegisterProbe(prefix+".stats", func() any { return fn() })
}

// UnregisterChannel removes what RegisterChannel added.
func (c *ControlAdapter) UnregisterChannel(prefix string) {
	c.metrics.UnregisterChannel(prefix)
	c.debug.Unregister(prefix + ".stats")
}
