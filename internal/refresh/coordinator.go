package refresh

import (
	"context"
	"fmt"
	"sync"
)

// Func is one refresh cycle.
type Func func(ctx context.Context) error

// Coordinator runs a refresh operation with at most one cycle in flight.
// A trigger that arrives while a cycle is running is remembered, and exactly
// one more cycle runs after the current one finishes, no matter how many
// triggers arrived in between.
type Coordinator struct {
	fn      Func
	onError func(error)

	mu      sync.Mutex
	running bool
	pending bool
	closed  bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithErrorHandler routes cycle failures to h. Without one, failures are
// dropped after the pending check.
func WithErrorHandler(h func(error)) Option {
	return func(c *Coordinator) {
		c.onError = h
	}
}

// New wraps fn in a Coordinator.
func New(fn Func, opts ...Option) *Coordinator {
	c := &Coordinator{fn: fn}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Trigger requests a refresh. When no cycle is running it runs one in the
// calling goroutine and returns true once the chain, including any deferred
// cycle, has settled. When a cycle is already running it marks a deferred
// cycle and returns false immediately.
func (c *Coordinator) Trigger(ctx context.Context) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	if c.running {
		c.pending = true
		c.mu.Unlock()
		return false
	}
	c.running = true
	c.mu.Unlock()

	for {
		c.runOnce(ctx)

		c.mu.Lock()
		if c.pending && !c.closed {
			c.pending = false
			c.mu.Unlock()
			continue
		}
		c.pending = false
		c.running = false
		c.mu.Unlock()
		return true
	}
}

// Running reports whether a cycle is in flight.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Close stops the coordinator. A running cycle completes, but no deferred
// cycle follows it and later triggers are ignored.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.pending = false
}

func (c *Coordinator) runOnce(ctx context.Context) {
	err := c.call(ctx)
	if err != nil && c.onError != nil {
		c.onError(err)
	}
}

func (c *Coordinator) call(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh panicked: %v", r)
		}
	}()
	return c.fn(ctx)
}
