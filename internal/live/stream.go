// Package live drives the views of a running race: the pause, start, finish
// and dashboard streams. Each stream owns a refresh.Coordinator shared by
// its poll driver and by the forced refresh that follows every operator
// action, and writes the results to its board in package state.
package live

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"k8s.io/utils/clock"

	"github.com/five82/trackside/internal/race"
	"github.com/five82/trackside/internal/refresh"
	"github.com/five82/trackside/internal/state"
)

// Deps are the collaborators shared by all streams.
type Deps struct {
	Store   race.Store
	Logger  *slog.Logger
	Notices *state.Notices
	Clock   clock.WithDelayedExecution
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.RealClock{}
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Notices == nil {
		d.Notices = state.NewNotices(d.Clock)
	}
	return d
}

// stream is the part every view shares: the coordinator, the active flag
// and failure reporting.
type stream struct {
	name     string
	log      *slog.Logger
	notices  *state.Notices
	coord    *refresh.Coordinator
	active   atomic.Bool
	fail     func(error)
	failures func() int
}

func (s *stream) init(name string, deps Deps, fn refresh.Func, fail func(error), failures func() int) {
	s.name = name
	s.log = deps.Logger.With(slog.String("stream", name))
	s.notices = deps.Notices
	s.fail = fail
	s.failures = failures
	s.coord = refresh.New(fn, refresh.WithErrorHandler(s.refreshFailed))
}

// Name identifies the stream in logs and the UI.
func (s *stream) Name() string { return s.name }

// Refresher returns the stream's coordinator for the poll driver.
func (s *stream) Refresher() *refresh.Coordinator { return s.coord }

// SetActive marks the stream's view as shown. Results of cycles that
// complete while inactive are discarded.
func (s *stream) SetActive(active bool) { s.active.Store(active) }

// Active reports whether the stream's view is shown.
func (s *stream) Active() bool { return s.active.Load() }

// Failures returns the number of consecutive failed refreshes.
func (s *stream) Failures() int { return s.failures() }

// Close stops the coordinator; later refreshes are ignored.
func (s *stream) Close() { s.coord.Close() }

func (s *stream) refreshFailed(err error) {
	if !s.active.Load() {
		s.log.Debug("dropping refresh failure of inactive stream", slog.Any("error", err))
		return
	}
	s.fail(err)
	s.log.Warn("refresh failed", slog.Int("failures", s.failures()), slog.Any("error", err))
	if s.failures() == 1 {
		s.notices.Push(slog.LevelWarn, fmt.Sprintf("%s refresh failed: %s", s.name, race.Message(err, "")))
	}
}

func (s *stream) actionFailed(action string, err error, fallback string) {
	s.log.Error("action failed", slog.String("action", action), slog.Any("error", err))
	s.notices.Push(slog.LevelError, race.Message(err, fallback))
}
