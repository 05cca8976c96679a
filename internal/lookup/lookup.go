// Package lookup debounces user-typed lookup keys.
package lookup

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// DefaultDelay is the quiet period before a typed key is looked up.
const DefaultDelay = 200 * time.Millisecond

// ValidationError reports a key rejected locally. It never reaches the store.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid key %q: %s", e.Input, e.Reason)
}

// ParseKey parses a racer number. Non-numeric and non-positive input yields a
// *ValidationError.
func ParseKey(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, &ValidationError{Input: raw, Reason: "empty"}
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &ValidationError{Input: raw, Reason: "not a number"}
	}
	if n <= 0 {
		return 0, &ValidationError{Input: raw, Reason: "must be positive"}
	}
	return n, nil
}

// Debouncer delays fn until input has been quiet for the configured delay.
// Every Input restarts the wait; only the last value of a burst is delivered.
// fn runs on the clock's timer goroutine.
type Debouncer[T any] struct {
	clk   clock.WithDelayedExecution
	delay time.Duration
	fn    func(T)

	mu    sync.Mutex
	timer clock.Timer
	gen   uint64
}

// NewDebouncer builds a Debouncer. A nil clk uses the wall clock; a
// non-positive delay uses DefaultDelay.
func NewDebouncer[T any](clk clock.WithDelayedExecution, delay time.Duration, fn func(T)) *Debouncer[T] {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{clk: clk, delay: delay, fn: fn}
}

// Input records v and restarts the quiet period.
func (d *Debouncer[T]) Input(v T) {
	d.mu.Lock()
	prev := d.timer
	d.timer = nil
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	// Clock calls happen outside d.mu: a fake clock runs callbacks under its
	// own lock.
	if prev != nil {
		prev.Stop()
	}
	timer := d.clk.AfterFunc(d.delay, func() {
		d.fire(gen, v)
	})

	d.mu.Lock()
	if d.gen == gen {
		d.timer = timer
	}
	d.mu.Unlock()
}

// Cancel drops a pending delivery.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	prev := d.timer
	d.timer = nil
	d.gen++
	d.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}
}

func (d *Debouncer[T]) fire(gen uint64, v T) {
	d.mu.Lock()
	// A timer that lost a race with Stop must not deliver a stale value.
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn(v)
}
