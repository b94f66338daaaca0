// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Consumer loops use it to give the
// consumer context its own CPU, apart from the producing vCPU threads.
// Platform-specific implementations live in affinity_linux.go,
// affinity_windows.go and affinity_stub.go.

package affinity

import (
	"fmt"

	"github.com/momentics/hioload-devchan/api"
)

// SetAffinity pins the current OS thread to a given logical CPU. The caller
// must hold runtime.LockOSThread for the pin to stick to its goroutine.
func SetAffinity(cpuID int) error {
	if cpuID < 0 {
		return fmt.Errorf("affinity: cpu %d: %w", cpuID, api.ErrInvalidArgument)
	}
	return setAffinityPlatform(cpuID)
}
