package live

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/five82/trackside/internal/leaderboard"
	"github.com/five82/trackside/internal/race"
	"github.com/five82/trackside/internal/state"
)

// Finish runs the finish line: racers on track and the finishers.
type Finish struct {
	stream
	store race.Store
	board *state.FinishBoard
}

// NewFinish creates the finish stream.
func NewFinish(deps Deps) *Finish {
	deps = deps.withDefaults()
	f := &Finish{
		store: deps.Store,
		board: &state.FinishBoard{Clock: deps.Clock},
	}
	f.init("finish", deps, f.refresh, func(err error) {
		f.board.Apply(nil, nil, err)
	}, func() int {
		return f.board.Snapshot().Status.ConsecutiveFailures
	})
	return f
}

// Snapshot returns a copy of the finish board.
func (f *Finish) Snapshot() state.FinishSnapshot {
	return f.board.Snapshot()
}

func (f *Finish) refresh(ctx context.Context) error {
	var onTrack, finishers []race.Racer
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		onTrack, err = race.OnTrack(gctx, f.store)
		return err
	})
	g.Go(func() error {
		var err error
		finishers, err = race.Finishers(gctx, f.store)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if !f.active.Load() {
		return nil
	}
	f.board.Apply(onTrack, finishers, nil)
	return nil
}

// TriggerManualRefresh runs or schedules a refresh.
func (f *Finish) TriggerManualRefresh(ctx context.Context) bool {
	return f.coord.Trigger(ctx)
}

// FinishNow records racer id's finish at server time.
func (f *Finish) FinishNow(ctx context.Context, id int64) error {
	err := race.FinishNow(ctx, f.store, id)
	if err != nil {
		f.actionFailed(race.ActionFinishNow, err, "Failed to finish racer.")
	} else {
		f.log.Info("racer finished", slog.Int64("racer", id))
	}
	f.coord.Trigger(ctx)
	return wrapAction(race.ActionFinishNow, err)
}

// RevertFinish clears racer id's finish and final time.
func (f *Finish) RevertFinish(ctx context.Context, id int64) error {
	err := race.RevertFinish(ctx, f.store, id)
	if err != nil {
		f.actionFailed("revert_finish", err, "Failed to revert finish.")
	} else {
		f.log.Info("finish reverted", slog.Int64("racer", id))
	}
	f.coord.Trigger(ctx)
	return wrapAction("revert_finish", err)
}

// Dashboard keeps the leaderboard of classified racers.
type Dashboard struct {
	stream
	store race.Store
	board *state.DashboardBoard
}

// NewDashboard creates the dashboard stream.
func NewDashboard(deps Deps) *Dashboard {
	deps = deps.withDefaults()
	d := &Dashboard{
		store: deps.Store,
		board: &state.DashboardBoard{Clock: deps.Clock},
	}
	d.init("dashboard", deps, d.refresh, func(err error) {
		d.board.Apply(leaderboard.Board{}, err)
	}, func() int {
		return d.board.Snapshot().Status.ConsecutiveFailures
	})
	return d
}

// Snapshot returns a copy of the leaderboard.
func (d *Dashboard) Snapshot() state.DashboardSnapshot {
	return d.board.Snapshot()
}

func (d *Dashboard) refresh(ctx context.Context) error {
	racers, err := race.Classified(ctx, d.store)
	if err != nil {
		return err
	}
	if !d.active.Load() {
		return nil
	}
	d.board.Apply(leaderboard.Build(racers), nil)
	return nil
}

// TriggerManualRefresh runs or schedules a refresh.
func (d *Dashboard) TriggerManualRefresh(ctx context.Context) bool {
	return d.coord.Trigger(ctx)
}
