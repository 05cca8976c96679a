// Package livetimer interpolates elapsed time for entities between polls.
//
// A Registry records the local instant a timed condition began for an entity
// (a racer's pause, for instance). Each fast tick turns those instants into
// elapsed durations from the wall clock alone; no network round trip is
// involved, so the display keeps moving while a poll is slow or failing.
package livetimer

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Registry maps entity keys to locally recorded start instants. An entry
// exists only while the entity's timer is running.
type Registry[K comparable] struct {
	clk clock.PassiveClock

	mu     sync.Mutex
	starts map[K]time.Time
}

// New creates an empty Registry reading time from clk. A nil clk uses the
// wall clock.
func New[K comparable](clk clock.PassiveClock) *Registry[K] {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Registry[K]{clk: clk, starts: make(map[K]time.Time)}
}

// Start records now as the start of id's timer and returns it. Restarting a
// running timer resets it.
func (r *Registry[K]) Start(id K) time.Time {
	now := r.clk.Now()
	r.mu.Lock()
	r.starts[id] = now
	r.mu.Unlock()
	return now
}

// Stop removes id's timer and reports whether one was running.
func (r *Registry[K]) Stop(id K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.starts[id]
	delete(r.starts, id)
	return ok
}

// Active reports whether id has a running timer.
func (r *Registry[K]) Active(id K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.starts[id]
	return ok
}

// Elapsed returns time since id's timer started, or zero when none runs.
func (r *Registry[K]) Elapsed(id K) time.Duration {
	r.mu.Lock()
	start, ok := r.starts[id]
	r.mu.Unlock()
	if !ok {
		return 0
	}
	return r.clk.Since(start)
}

// Len returns the number of running timers.
func (r *Registry[K]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.starts)
}

// Tick computes every running timer's elapsed time against a single now and
// hands it to apply. apply reports whether the entity is still tracked; a
// timer whose entity is gone is left alone until Stop or Retain clears it.
// Tick returns how many entities were updated.
func (r *Registry[K]) Tick(apply func(id K, elapsed time.Duration) bool) int {
	now := r.clk.Now()
	r.mu.Lock()
	snapshot := make(map[K]time.Time, len(r.starts))
	for id, start := range r.starts {
		snapshot[id] = start
	}
	r.mu.Unlock()

	applied := 0
	for id, start := range snapshot {
		if apply(id, now.Sub(start)) {
			applied++
		}
	}
	return applied
}

// Retain drops every timer whose key keep rejects.
func (r *Registry[K]) Retain(keep func(K) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.starts {
		if !keep(id) {
			delete(r.starts, id)
		}
	}
}
