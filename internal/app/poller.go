package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"k8s.io/utils/clock"

	"github.com/five82/trackside/internal/refresh"
	"github.com/five82/trackside/internal/ui"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// calculateBackoff returns the wait before the next poll after the given
// number of consecutive failures: base, doubling per failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if base <= 0 {
		base = defaultPollInterval
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     base,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         maxBackoff,
	}
	b.Reset()
	wait := b.NextBackOff()
	for i := 0; i < failures; i++ {
		wait = b.NextBackOff()
	}
	return min(wait, maxBackoff)
}

// streamDriver is what the activator needs from a live stream.
type streamDriver interface {
	Name() string
	Refresher() *refresh.Coordinator
	Failures() int
	SetActive(bool)
}

// ticker is a pure local per-second update (the pause live timers).
type ticker interface {
	Tick() int
}

type route struct {
	stream   streamDriver
	interval time.Duration
	tick     ticker
}

// Activator owns the drivers of the visible view. Activating a view stops
// the previous view's drivers on every path and marks its stream inactive
// so a fetch already in flight is discarded when it lands.
type Activator struct {
	ctx       context.Context
	clk       clock.Clock
	tickEvery time.Duration
	log       *slog.Logger
	routes    map[ui.View]route

	mu      sync.Mutex
	current ui.View
	active  streamDriver
	stops   []func()
}

// NewActivator returns an Activator with no view active.
func NewActivator(ctx context.Context, clk clock.Clock, tickEvery time.Duration, log *slog.Logger) *Activator {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Activator{
		ctx:       ctx,
		clk:       clk,
		tickEvery: tickEvery,
		log:       log,
		routes:    make(map[ui.View]route),
		current:   -1,
	}
}

// Route binds view v to a stream polled every interval. tick, when non-nil,
// also runs every tickEvery while v is active.
func (a *Activator) Route(v ui.View, s streamDriver, interval time.Duration, tick ticker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[v] = route{stream: s, interval: interval, tick: tick}
}

// Activate switches the running drivers to view v. Views without a route
// (the log view) simply stop everything.
func (a *Activator) Activate(v ui.View) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if v == a.current && len(a.stops) > 0 {
		return
	}
	a.stopLocked()
	a.current = v

	r, ok := a.routes[v]
	if !ok {
		a.log.Debug("view has no drivers", slog.String("view", v.String()))
		return
	}
	s := r.stream
	s.SetActive(true)
	a.active = s

	interval := r.interval
	next := func() time.Duration {
		return calculateBackoff(s.Failures(), interval)
	}
	a.stops = append(a.stops, refresh.Poll(a.ctx, a.clk, s.Refresher(), next))
	if r.tick != nil && a.tickEvery > 0 {
		tick := r.tick
		a.stops = append(a.stops, refresh.Every(a.ctx, a.clk, a.tickEvery, func() { tick.Tick() }))
	}
	a.log.Info("view activated",
		slog.String("view", v.String()),
		slog.String("stream", s.Name()),
		slog.Duration("poll_interval", interval),
	)
}

// Current returns the active view, or -1 before the first activation.
func (a *Activator) Current() ui.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Stop stops every driver. It is safe to call more than once.
func (a *Activator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Activator) stopLocked() {
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil
	if a.active != nil {
		a.active.SetActive(false)
		a.active = nil
	}
}
