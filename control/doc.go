// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime configuration, metrics and debug introspection for channel pairs.
//
// Provides concurrent-safe state handling primitives including:
//   - Snapshot config reads with reload listeners
//   - Channel counters flattened into a metrics map
//   - Debug probes for cursors, wait counts and platform capabilities
//
// Nothing here is touched by Publish or Produce; the data path only keeps
// atomic counters that these types read on demand.
package control
