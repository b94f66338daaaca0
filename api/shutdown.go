// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by assembled channel pairs.
type GracefulShutdown interface {
	// Shutdown releases the wait primitive and backing storage.
	// Blocked consumers return ErrChannelClosed.
	Shutdown() error
}
