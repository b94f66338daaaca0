//go:build linux
// +build linux

// control/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific debug probes: where named segments live.

package control

import (
	"os"
	"path/filepath"

	"github.com/momentics/hioload-devchan/pool"
)

// RegisterPlatformProbes sets Linux-specific debug probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	registerCommonProbes(dp)
	dp.RegisterProbe("platform.segment_dir", func() any {
		return filepath.Dir(pool.SegmentPath("probe"))
	})
	dp.RegisterProbe("platform.dev_shm", func() any {
		fi, err := os.Stat("/dev/shm")
		return err == nil && fi.IsDir()
	})
}
