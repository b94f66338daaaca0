package channel_test

import (
	"context"
	"errors"
	"math/rand"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-devchan/api"
	"github.com/momentics/hioload-devchan/channel"
	"github.com/momentics/hioload-devchan/fake"
	"github.com/momentics/hioload-devchan/internal/concurrency"
	"github.com/momentics/hioload-devchan/pool"
)

func newPair[T any](t *testing.T, size int) (*channel.Consumer[T], *channel.Producer[T]) {
	t.Helper()
	c, err := channel.NewConsumer[T](size, concurrency.NewSemaphore())
	if err != nil {
		t.Fatalf("NewConsumer(%d): %v", size, err)
	}
	t.Cleanup(func() { c.Close() })
	return c, channel.NewProducer(c.Handle())
}

func mustAcquire[T any](t *testing.T, c *channel.Consumer[T]) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p, err := c.AcquireContext(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	v := *p
	c.Release()
	return v
}

func TestFIFO(t *testing.T) {
	c, p := newPair[int](t, 16)
	for i := 0; i < 15; i++ {
		if !p.Publish(i) {
			t.Fatalf("publish %d rejected", i)
		}
	}
	for i := 0; i < 15; i++ {
		if got := mustAcquire(t, c); got != i {
			t.Fatalf("item %d: got %d", i, got)
		}
	}
	if !c.Storage().Empty() {
		t.Fatal("storage not empty after draining")
	}
}

func TestCapacityBoundary(t *testing.T) {
	c, p := newPair[uint64](t, 4)
	for i := uint64(0); i < 3; i++ {
		if !p.Publish(i) {
			t.Fatalf("publish %d rejected below capacity", i)
		}
	}
	if !c.Storage().Full() {
		t.Fatal("storage should be full after size-1 publishes")
	}
	if p.Publish(99) {
		t.Fatal("publish into full ring accepted")
	}
	if !p.Dropping() || !errors.Is(p.LastError(), api.ErrChannelFull) {
		t.Fatalf("dropping=%v lastErr=%v", p.Dropping(), p.LastError())
	}
	if c.Storage().Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Storage().Len())
	}
	mustAcquire(t, c)
	if !p.Publish(3) || p.Dropping() || p.LastError() != nil {
		t.Fatal("drop flag not cleared by accepted publish")
	}
	st := p.Stats()
	if st.Published != 4 || st.Dropped != 1 {
		t.Fatalf("stats %+v", st)
	}
}

// Capacity 8: seven fit, the eighth is dropped until one slot is freed.
func TestPublishAfterDrain(t *testing.T) {
	c, p := newPair[int](t, 8)
	for i := 0; i < 7; i++ {
		if !p.Publish(i) {
			t.Fatalf("publish %d rejected", i)
		}
	}
	if p.Publish(7) {
		t.Fatal("eighth publish accepted")
	}
	if got := mustAcquire(t, c); got != 0 {
		t.Fatalf("first item = %d", got)
	}
	if !p.Publish(7) {
		t.Fatal("publish after release rejected")
	}
	for want := 1; want <= 7; want++ {
		if got := mustAcquire(t, c); got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
	}
}

func TestPublishWithoutConsumer(t *testing.T) {
	p := channel.NewProducer[int](nil)
	if p.Publish(1) {
		t.Fatal("publish without consumer accepted")
	}
	if !p.Dropping() || !errors.Is(p.LastError(), api.ErrNoConsumer) {
		t.Fatalf("dropping=%v lastErr=%v", p.Dropping(), p.LastError())
	}

	c, err := channel.NewConsumer[int](4, concurrency.NewSemaphore())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	p.Attach(c.Handle())
	if !p.Attached() || !p.Publish(1) {
		t.Fatal("publish after attach rejected")
	}
	if got := mustAcquire(t, c); got != 1 {
		t.Fatalf("got %d", got)
	}
}

func TestNewConsumerErrors(t *testing.T) {
	if _, err := channel.NewConsumer[int](1, concurrency.NewSemaphore()); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("size 1: %v", err)
	}
	if _, err := channel.NewConsumer[int](8, nil); !errors.Is(err, api.ErrConstruction) {
		t.Fatalf("nil semaphore: %v", err)
	}
	a, err := pool.NewArena(64, false)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if _, err := channel.NewConsumerOn[uint64](a, 64, concurrency.NewSemaphore()); !errors.Is(err, api.ErrConstruction) {
		t.Fatalf("small arena: %v", err)
	}
}

func TestAcquireContextTimeout(t *testing.T) {
	c, p := newPair[int](t, 4)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.AcquireContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("AcquireContext on empty ring = %v", err)
	}
	p.Publish(5)
	if got := mustAcquire(t, c); got != 5 {
		t.Fatalf("got %d", got)
	}
}

func TestCloseUnblocksAcquire(t *testing.T) {
	c, err := channel.NewConsumer[int](4, concurrency.NewSemaphore())
	if err != nil {
		t.Fatal(err)
	}
	errc := make(chan error, 1)
	go func() {
		_, err := c.Acquire()
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-errc:
		if !errors.Is(err, api.ErrChannelClosed) {
			t.Fatalf("Acquire after Close = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire still blocked after Close")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestPublishPostsOnce(t *testing.T) {
	sem := &fake.Semaphore{}
	c, err := channel.NewConsumer[int](4, sem)
	if err != nil {
		t.Fatal(err)
	}
	p := channel.NewProducer(c.Handle())
	for i := 0; i < 5; i++ {
		p.Publish(i)
	}
	if sem.Posts() != 3 {
		t.Fatalf("posts = %d, want 3", sem.Posts())
	}
	if _, err := c.Acquire(); err != nil {
		t.Fatal(err)
	}
	c.Release()
	if st := c.Stats(); st.Pending != 2 || st.Consumed != 1 || st.ReadPos != 1 || st.WritePos != 3 {
		t.Fatalf("stats %+v", st)
	}
	c.Close()
	if !sem.Closed() {
		t.Fatal("Close did not release the wait primitive")
	}
}

type event struct {
	Code  uint32
	Flags uint16
	Seq   uint64
}

func TestArenaBackedChannel(t *testing.T) {
	const size = 8
	a, err := pool.NewArena(channel.ArenaSize[event](size), false)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	sem := concurrency.NewSemaphore()
	c, err := channel.NewConsumerOn[event](a, size, sem)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	h, err := channel.OpenHandle[event](a, size, sem)
	if err != nil {
		t.Fatal(err)
	}
	p := channel.NewProducer(h)
	for i := uint64(0); i < size-1; i++ {
		if !p.Publish(event{Code: 30, Seq: i}) {
			t.Fatalf("publish %d rejected", i)
		}
	}
	if p.Publish(event{}) {
		t.Fatal("publish into full arena ring accepted")
	}
	for i := uint64(0); i < size-1; i++ {
		if ev := mustAcquire(t, c); ev.Seq != i || ev.Code != 30 {
			t.Fatalf("event %d: %+v", i, ev)
		}
	}
}

func TestSharedArenaChannel(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("shared mappings are linux-only")
	}
	const size = 16
	a, err := pool.NewArena(channel.ArenaSize[uint64](size), true)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	sem, err := concurrency.NewEventSemaphore()
	if err != nil {
		t.Fatal(err)
	}
	c, err := channel.NewConsumerOn[uint64](a, size, sem)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if !c.Storage().Shared() {
		t.Fatal("storage should report shared")
	}
	h, err := channel.OpenHandle[uint64](a, size, sem)
	if err != nil {
		t.Fatal(err)
	}
	p := channel.NewProducer(h)
	for i := uint64(0); i < 100; i++ {
		if !p.Publish(i * 3) {
			t.Fatalf("publish %d rejected", i)
		}
		if got := mustAcquire(t, c); got != i*3 {
			t.Fatalf("got %d, want %d", got, i*3)
		}
	}
}

func TestOpenHandleErrors(t *testing.T) {
	a, err := pool.NewArena(channel.ArenaSize[uint32](8), false)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if _, err := channel.OpenHandle[uint32](a, 8, nil); !errors.Is(err, api.ErrConstruction) {
		t.Fatalf("nil notifier: %v", err)
	}
	if _, err := channel.OpenHandle[uint32](a, 1, &fake.Notifier{}); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("size 1: %v", err)
	}
	if _, err := channel.OpenHandle[uint32](nil, 8, &fake.Notifier{}); !errors.Is(err, api.ErrConstruction) {
		t.Fatalf("nil arena: %v", err)
	}
	if _, err := channel.OpenHandle[struct{}](a, 8, &fake.Notifier{}); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("zero-size slot: %v", err)
	}
}

// Random interleavings of publish and acquire against a slice model.
func TestRandomizedAgainstModel(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, size := range []int{2, 3, 5, 8, 33} {
		c, p := newPair[int](t, size)
		var model []int
		next := 0
		for op := 0; op < 5000; op++ {
			if rng.Intn(2) == 0 {
				ok := p.Publish(next)
				if ok != (len(model) < size-1) {
					t.Fatalf("size %d op %d: publish=%v with %d queued", size, op, ok, len(model))
				}
				if ok {
					model = append(model, next)
				}
				next++
				continue
			}
			if len(model) == 0 {
				continue
			}
			if got := mustAcquire(t, c); got != model[0] {
				t.Fatalf("size %d op %d: got %d, want %d", size, op, got, model[0])
			}
			model = model[1:]
			if c.Storage().Len() != len(model) {
				t.Fatalf("size %d: Len=%d model=%d", size, c.Storage().Len(), len(model))
			}
		}
	}
}

func runItemStress(t *testing.T, sem api.Semaphore) {
	const n = 200000
	c, err := channel.NewConsumer[uint64](64, sem)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	p := channel.NewProducer(c.Handle())

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint64(0); i < n; {
			if p.Publish(i) {
				i++
				continue
			}
			select {
			case <-done:
				return
			default:
				runtime.Gosched()
			}
		}
	}()

	go func() {
		defer close(done)
		for i := uint64(0); i < n; i++ {
			v, err := c.Acquire()
			if err != nil {
				t.Errorf("acquire %d: %v", i, err)
				return
			}
			if *v != i {
				t.Errorf("out of order: got %d, want %d", *v, i)
				return
			}
			c.Release()
		}
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("stress test timed out")
	}
	wg.Wait()
	if got := c.Consumed(); got != n {
		t.Fatalf("consumed %d, want %d", got, n)
	}
}

func TestConcurrentStress(t *testing.T) {
	runItemStress(t, concurrency.NewSemaphore())
}

func TestConcurrentStressEventfd(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("eventfd is linux-only")
	}
	sem, err := concurrency.NewEventSemaphore()
	if err != nil {
		t.Fatal(err)
	}
	runItemStress(t, sem)
}
