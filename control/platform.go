// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Capability probes shared by every platform.

package control

import (
	"runtime"

	"github.com/momentics/hioload-devchan/internal/concurrency"
	"github.com/momentics/hioload-devchan/pool"
)

func registerCommonProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.os", func() any {
		return runtime.GOOS + "/" + runtime.GOARCH
	})
	dp.RegisterProbe("platform.eventfd", func() any {
		s, err := concurrency.NewEventSemaphore()
		if err != nil {
			return false
		}
		s.Close()
		return true
	})
	dp.RegisterProbe("platform.shared_arena", func() any {
		a, err := pool.NewArena(4096, true)
		if err != nil {
			return false
		}
		a.Close()
		return true
	})
}
