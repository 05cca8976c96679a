package refresh

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Schedule calls fn repeatedly, waiting next() before each call, until the
// returned stop function is called or ctx ends. stop cancels the loop and
// waits for it to exit; it is safe to call more than once but must not be
// called from fn.
func Schedule(ctx context.Context, clk clock.Clock, next func() time.Duration, fn func()) (stop func()) {
	if clk == nil {
		clk = clock.RealClock{}
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			timer := clk.NewTimer(next())
			select {
			case <-loopCtx.Done():
				timer.Stop()
				return
			case <-timer.C():
			}
			if loopCtx.Err() != nil {
				return
			}
			fn()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

// Every is Schedule with a fixed interval.
func Every(ctx context.Context, clk clock.Clock, interval time.Duration, fn func()) (stop func()) {
	return Schedule(ctx, clk, func() time.Duration { return interval }, fn)
}

// Poll starts a scoped poll driver for c: one cycle right away, then one
// after every next() wait. Cycles run on their own goroutines with ctx, so
// stopping the driver never aborts a cycle already in flight; overlapping
// ticks coalesce inside the coordinator.
func Poll(ctx context.Context, clk clock.Clock, c *Coordinator, next func() time.Duration) (stop func()) {
	go c.Trigger(ctx)
	return Schedule(ctx, clk, next, func() {
		go c.Trigger(ctx)
	})
}
