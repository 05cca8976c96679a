package refresh

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// gate blocks the first cycle until released so tests can trigger while a
// cycle is in flight.
type gate struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newGate() *gate {
	return &gate{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gate) fn(err error) Func {
	return func(ctx context.Context) error {
		if g.calls.Add(1) == 1 {
			g.started <- struct{}{}
			<-g.release
			return err
		}
		return nil
	}
}

func waitDone(t *testing.T, done <-chan bool) bool {
	t.Helper()
	select {
	case ran := <-done:
		return ran
	case <-time.After(2 * time.Second):
		t.Fatal("Trigger did not settle")
		return false
	}
}

func TestCoordinator_NeverRunsConcurrently(t *testing.T) {
	var active, maxActive, calls atomic.Int32
	c := New(func(ctx context.Context) error {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		calls.Add(1)
		time.Sleep(time.Millisecond)
		active.Add(-1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Trigger(context.Background())
		}()
	}
	wg.Wait()

	if got := maxActive.Load(); got != 1 {
		t.Fatalf("max concurrent cycles = %d, want 1", got)
	}
	if calls.Load() == 0 {
		t.Fatal("no cycle ran")
	}
	if c.Running() {
		t.Fatal("coordinator still running after all triggers settled")
	}
}

func TestCoordinator_CoalescesTriggersIntoOneDeferredCycle(t *testing.T) {
	g := newGate()
	c := New(g.fn(nil))

	done := make(chan bool, 1)
	go func() { done <- c.Trigger(context.Background()) }()
	<-g.started

	for i := 0; i < 5; i++ {
		if c.Trigger(context.Background()) {
			t.Fatalf("Trigger %d during a running cycle returned true, want false", i)
		}
	}
	close(g.release)

	if !waitDone(t, done) {
		t.Fatal("first Trigger returned false, want true")
	}
	if got := g.calls.Load(); got != 2 {
		t.Fatalf("cycles = %d, want 2 (running + one deferred)", got)
	}
}

func TestCoordinator_NoDeferredCycleWithoutTrigger(t *testing.T) {
	var calls atomic.Int32
	c := New(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	if !c.Trigger(context.Background()) {
		t.Fatal("Trigger returned false on idle coordinator")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("cycles = %d, want 1", got)
	}
}

func TestCoordinator_FailureStillRunsDeferredCycle(t *testing.T) {
	g := newGate()
	var reported []error
	var mu sync.Mutex
	c := New(g.fn(errors.New("store unreachable")), WithErrorHandler(func(err error) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	}))

	done := make(chan bool, 1)
	go func() { done <- c.Trigger(context.Background()) }()
	<-g.started
	c.Trigger(context.Background())
	close(g.release)
	waitDone(t, done)

	if got := g.calls.Load(); got != 2 {
		t.Fatalf("cycles = %d, want 2", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 || reported[0].Error() != "store unreachable" {
		t.Fatalf("reported = %v, want the single failure", reported)
	}
}

func TestCoordinator_PanicIsReportedAndNextTriggerRuns(t *testing.T) {
	var calls atomic.Int32
	var got error
	c := New(func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			panic("boom")
		}
		return nil
	}, WithErrorHandler(func(err error) { got = err }))

	c.Trigger(context.Background())
	if got == nil || !strings.Contains(got.Error(), "boom") {
		t.Fatalf("reported error = %v, want panic message", got)
	}
	if !c.Trigger(context.Background()) {
		t.Fatal("Trigger after panic returned false, want a fresh cycle")
	}
	if calls.Load() != 2 {
		t.Fatalf("cycles = %d, want 2", calls.Load())
	}
}

func TestCoordinator_CloseDropsDeferredCycle(t *testing.T) {
	g := newGate()
	c := New(g.fn(nil))

	done := make(chan bool, 1)
	go func() { done <- c.Trigger(context.Background()) }()
	<-g.started
	c.Trigger(context.Background())
	c.Close()
	close(g.release)
	waitDone(t, done)

	if got := g.calls.Load(); got != 1 {
		t.Fatalf("cycles = %d, want 1 after Close", got)
	}
	if c.Trigger(context.Background()) {
		t.Fatal("Trigger after Close returned true")
	}
}
