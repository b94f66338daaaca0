//go:build !linux && !windows
// +build !linux,!windows

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package affinity

import (
	"fmt"

	"github.com/momentics/hioload-devchan/api"
)

func setAffinityPlatform(cpuID int) error {
	return fmt.Errorf("affinity: %w on this platform", api.ErrNotSupported)
}
