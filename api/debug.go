// Package api
// Author: momentics
//
// Live debug support: probes expose channel cursors and counters on demand.

package api

// Debug exposes runtime introspection and health API.
type Debug interface {
	// DumpState evaluates every registered probe.
	DumpState() map[string]any

	// RegisterProbe dynamically registers new debug probes.
	RegisterProbe(name string, fn func() any)
}
