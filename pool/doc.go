// Package pool
// Author: momentics <momentics@gmail.com>
//
// Backing memory for channel storage. Arenas are allocated once and never
// grow: heap arenas for in-process channels, shared mappings (anonymous or
// named segments) for channels whose peer lives in another process.
// See arena.go and arena_linux.go for implementation details.
package pool
