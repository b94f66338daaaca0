package concurrency

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-devchan/api"
)

func testSemaphoreCounts(t *testing.T, sem api.Semaphore) {
	t.Helper()
	for i := 0; i < 3; i++ {
		sem.Post()
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := sem.Wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := sem.Wait(tctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("wait on zero count = %v", err)
	}
}

func testSemaphoreWakes(t *testing.T, sem api.Semaphore) {
	t.Helper()
	const n = 10000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			sem.Post()
		}
	}()
	done := make(chan error, 1)
	go func() {
		for i := 0; i < n; i++ {
			if err := sem.Wait(context.Background()); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("waiter missed posts")
	}
	wg.Wait()
}

func testSemaphoreClose(t *testing.T, sem api.Semaphore) {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- sem.Wait(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	if err := sem.Close(); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-errc:
		if !errors.Is(err, api.ErrChannelClosed) {
			t.Fatalf("wait after close = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not release the waiter")
	}
	sem.Post()
	if err := sem.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestSemaphore(t *testing.T) {
	t.Run("counts", func(t *testing.T) { testSemaphoreCounts(t, NewSemaphore()) })
	t.Run("wakes", func(t *testing.T) { testSemaphoreWakes(t, NewSemaphore()) })
	t.Run("close", func(t *testing.T) { testSemaphoreClose(t, NewSemaphore()) })
}

func TestSemaphorePending(t *testing.T) {
	s := NewSemaphore()
	s.Post()
	s.Post()
	if s.Pending() != 2 {
		t.Fatalf("Pending = %d", s.Pending())
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait with available count must not fail: %v", err)
	}
	if s.Pending() != 1 {
		t.Fatalf("Pending = %d", s.Pending())
	}
}
