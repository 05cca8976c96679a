package live

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/trackside/internal/lookup"
	"github.com/five82/trackside/internal/race"
	"github.com/five82/trackside/internal/refresh"
	"github.com/five82/trackside/internal/state"
)

// ErrNotStartable is returned by StartRacer when no unstarted racer is
// loaded.
var ErrNotStartable = errors.New("no racer ready to start")

type lookupRequest struct {
	ctx context.Context
}

// Start runs the start line: the recently started and next-to-start lists
// plus the racer-number lookup.
type Start struct {
	stream
	store    race.Store
	board    *state.StartBoard
	lookup   *refresh.Coordinator
	debounce *lookup.Debouncer[lookupRequest]
}

// NewStart creates the start stream. Lookups fire once typing has been
// quiet for delay.
func NewStart(deps Deps, delay time.Duration) *Start {
	deps = deps.withDefaults()
	s := &Start{
		store: deps.Store,
		board: &state.StartBoard{Clock: deps.Clock},
	}
	s.init("start", deps, s.refreshLists, func(err error) {
		s.board.ApplyLists(nil, nil, err)
	}, func() int {
		return s.board.Snapshot().Status.ConsecutiveFailures
	})
	s.lookup = refresh.New(s.lookupRacer, refresh.WithErrorHandler(func(err error) {
		s.log.Warn("racer lookup failed", slog.Any("error", err))
	}))
	s.debounce = lookup.NewDebouncer(deps.Clock, delay, func(req lookupRequest) {
		s.lookup.Trigger(req.ctx)
	})
	return s
}

// Snapshot returns a copy of the start board.
func (s *Start) Snapshot() state.StartSnapshot {
	return s.board.Snapshot()
}

// Close stops both coordinators and drops a pending lookup.
func (s *Start) Close() {
	s.debounce.Cancel()
	s.lookup.Close()
	s.stream.Close()
}

func (s *Start) refreshLists(ctx context.Context) error {
	var recent, next []race.Racer
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recent, err = race.RecentlyStarted(gctx, s.store)
		return err
	})
	g.Go(func() error {
		var err error
		next, err = race.NextToStart(gctx, s.store)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if !s.active.Load() {
		return nil
	}
	s.board.ApplyLists(recent, next, nil)
	return nil
}

// lookupRacer always reads the latest input, so a lookup deferred by the
// coordinator still resolves what the operator typed last.
func (s *Start) lookupRacer(ctx context.Context) error {
	input := s.board.Input()
	no, err := lookup.ParseKey(input)
	if err != nil {
		s.board.SetRacer(nil, "")
		return nil
	}
	s.board.BeginLookup()
	r, err := race.RacerByNumber(ctx, s.store, no)
	if err != nil {
		s.board.SetRacer(nil, race.Message(err, "Failed to fetch racer."))
		return err
	}
	if r == nil {
		s.board.SetRacer(nil, "Racer not found.")
		return nil
	}
	s.board.SetRacer(r, "")
	return nil
}

// TriggerManualRefresh runs or schedules a refresh of the lists.
func (s *Start) TriggerManualRefresh(ctx context.Context) bool {
	return s.coord.Trigger(ctx)
}

// OnInputChange records the typed racer number and restarts the lookup
// quiet period.
func (s *Start) OnInputChange(ctx context.Context, input string) {
	s.board.SetInput(input)
	s.debounce.Input(lookupRequest{ctx: ctx})
}

// SubmitLookup looks the current input up without waiting.
func (s *Start) SubmitLookup(ctx context.Context) {
	s.debounce.Cancel()
	s.lookup.Trigger(ctx)
}

// LoadRacer puts racer number no in the input and looks it up.
func (s *Start) LoadRacer(ctx context.Context, no int) {
	s.board.SetInput(strconv.Itoa(no))
	s.SubmitLookup(ctx)
}

// StartRacer sends off the looked-up racer, then refreshes the lookup and
// the lists whatever the outcome.
func (s *Start) StartRacer(ctx context.Context) error {
	if !s.board.Snapshot().CanStart() {
		return ErrNotStartable
	}
	r := s.board.Racer()
	err := race.Start(ctx, s.store, r.ID)
	if err != nil {
		s.actionFailed(race.ActionStart, err, "Cannot start.")
	} else {
		s.log.Info("racer started", slog.Int64("racer", r.ID), slog.Int("racer_no", r.RacerNo))
	}
	s.lookup.Trigger(ctx)
	s.coord.Trigger(ctx)
	return wrapAction(race.ActionStart, err)
}

// RevertStart clears racer id's start time.
func (s *Start) RevertStart(ctx context.Context, id int64) error {
	err := race.RevertStart(ctx, s.store, id)
	if err != nil {
		s.actionFailed("revert_start", err, "Failed to revert.")
	} else {
		s.board.ClearStart(id)
		s.notices.Push(slog.LevelWarn, "Start time removed.")
		s.log.Info("start reverted", slog.Int64("racer", id))
	}
	s.coord.Trigger(ctx)
	return wrapAction("revert_start", err)
}
