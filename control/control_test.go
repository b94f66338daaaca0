package control_test

import (
	"runtime"
	"testing"

	"github.com/momentics/hioload-devchan/api"
	"github.com/momentics/hioload-devchan/control"
)

func TestConfigStoreReload(t *testing.T) {
	cs := control.NewConfigStore()
	calls := 0
	cs.OnReload(func() {
		calls++
		if v, _ := cs.Get("slots"); v != 64 {
			t.Errorf("listener saw slots=%v", v)
		}
	})
	cs.SetConfig(map[string]any{"slots": 64})
	if calls != 1 {
		t.Fatalf("listener called %d times", calls)
	}
	snap := cs.GetSnapshot()
	snap["slots"] = 1
	if v, _ := cs.Get("slots"); v != 64 {
		t.Fatal("snapshot aliases the store")
	}
}

func TestMetricsCollectors(t *testing.T) {
	mr := control.NewMetricsRegistry()
	published := uint64(0)
	mr.RegisterChannel("kbd", func() api.ChannelStats {
		published++
		return api.ChannelStats{Published: published, Dropped: 2, Dropping: true}
	})
	mr.Set("custom", "x")

	snap := mr.GetSnapshot()
	if snap["kbd.published"] != uint64(1) || snap["kbd.dropped"] != uint64(2) || snap["kbd.dropping"] != true {
		t.Fatalf("snapshot %v", snap)
	}
	if snap["custom"] != "x" {
		t.Fatal("plain metric lost")
	}
	if mr.Updated().IsZero() {
		t.Fatal("Updated not set")
	}
	if mr.GetSnapshot()["kbd.published"] != uint64(2) {
		t.Fatal("collector not re-run on snapshot")
	}

	mr.UnregisterChannel("kbd")
	if _, ok := mr.GetSnapshot()["kbd.published"]; ok {
		t.Fatal("keys survived UnregisterChannel")
	}
}

func TestDebugProbes(t *testing.T) {
	dp := control.NewDebugProbes()
	dp.RegisterProbe("b", func() any { return 2 })
	dp.RegisterProbe("a", func() any { return 1 })
	if names := dp.Names(); len(names) != 2 || names[0] != "a" {
		t.Fatalf("names %v", names)
	}
	dp.Unregister("b")
	if st := dp.DumpState(); len(st) != 1 || st["a"] != 1 {
		t.Fatalf("state %v", st)
	}
}

func TestPlatformProbes(t *testing.T) {
	dp := control.NewDebugProbes()
	control.RegisterPlatformProbes(dp)
	st := dp.DumpState()
	if st["platform.cpus"] != runtime.NumCPU() {
		t.Fatalf("cpus probe = %v", st["platform.cpus"])
	}
	wantEventfd := runtime.GOOS == "linux"
	if st["platform.eventfd"] != wantEventfd || st["platform.shared_arena"] != wantEventfd {
		t.Fatalf("eventfd=%v shared_arena=%v on %s", st["platform.eventfd"], st["platform.shared_arena"], runtime.GOOS)
	}
}
