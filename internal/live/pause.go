package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/five82/trackside/internal/race"
	"github.com/five82/trackside/internal/state"
)

// ErrNoCheckpoint is returned by pause actions before a checkpoint is
// selected.
var ErrNoCheckpoint = errors.New("no checkpoint selected")

// Pause keeps the on-track racers and their pause times at one checkpoint.
type Pause struct {
	stream
	store     race.Store
	board     *state.PauseBoard
	preferred int64
}

// NewPause creates the pause stream. preferredCheckpoint is selected once
// checkpoints load, when it exists.
func NewPause(deps Deps, preferredCheckpoint int64) *Pause {
	deps = deps.withDefaults()
	p := &Pause{
		store:     deps.Store,
		board:     state.NewPauseBoard(deps.Clock),
		preferred: preferredCheckpoint,
	}
	p.init("pause", deps, p.refresh, p.board.Fail, func() int {
		return p.board.Snapshot().Status.ConsecutiveFailures
	})
	return p
}

// Snapshot returns a copy of the pause board.
func (p *Pause) Snapshot() state.PauseSnapshot {
	return p.board.Snapshot()
}

// Tick advances live pause timers from the local clock.
func (p *Pause) Tick() int {
	return p.board.Tick()
}

func (p *Pause) refresh(ctx context.Context) error {
	if len(p.board.Snapshot().Checkpoints) == 0 {
		cps, err := race.Checkpoints(ctx, p.store)
		if err != nil {
			return err
		}
		p.board.SetCheckpoints(cps, p.preferred)
	}

	checkpointID := p.board.CheckpointID()
	if checkpointID == 0 {
		return nil
	}
	racers, err := race.PauseCandidates(ctx, p.store)
	if err != nil {
		return err
	}
	ids := make([]int64, len(racers))
	for i, r := range racers {
		ids[i] = r.ID
	}
	logs, err := race.PauseLogs(ctx, p.store, ids, checkpointID)
	if err != nil {
		return err
	}

	if !p.active.Load() || p.board.CheckpointID() != checkpointID {
		p.log.Debug("discarding stale pause refresh", slog.Int64("checkpoint", checkpointID))
		return nil
	}
	p.board.Apply(racers, race.PauseTotals(logs))
	return nil
}

// TriggerManualRefresh runs or schedules a refresh.
func (p *Pause) TriggerManualRefresh(ctx context.Context) bool {
	return p.coord.Trigger(ctx)
}

// SelectCheckpoint switches checkpoint and refreshes right away.
func (p *Pause) SelectCheckpoint(ctx context.Context, id int64) bool {
	if !p.board.SelectCheckpoint(id) {
		return false
	}
	p.log.Info("checkpoint selected", slog.Int64("checkpoint", id))
	p.coord.Trigger(ctx)
	return true
}

// StartLocalTimer starts racer id's live pause, then opens the pause on the
// store. A rejected start rolls the timer back.
func (p *Pause) StartLocalTimer(ctx context.Context, id int64) error {
	checkpointID := p.board.CheckpointID()
	if checkpointID == 0 {
		return ErrNoCheckpoint
	}
	p.board.StartTimer(id)
	err := race.PauseStart(ctx, p.store, id, checkpointID)
	if err != nil {
		p.board.StopTimer(id)
		p.actionFailed(race.ActionPauseStart, err, "Failed to start pause.")
	}
	p.coord.Trigger(ctx)
	return wrapAction(race.ActionPauseStart, err)
}

// EndLocalTimer stops racer id's live pause and closes the pause on the
// store. The next refresh supplies the authoritative total.
func (p *Pause) EndLocalTimer(ctx context.Context, id int64) error {
	err := p.endPause(ctx, id)
	p.coord.Trigger(ctx)
	return err
}

func (p *Pause) endPause(ctx context.Context, id int64) error {
	p.board.StopTimer(id)
	err := race.PauseEnd(ctx, p.store, id)
	if err != nil {
		p.actionFailed(race.ActionPauseEnd, err, "Failed to end pause.")
	}
	return wrapAction(race.ActionPauseEnd, err)
}

// Invalidate discards racer id's pauses at the checkpoint, ending an open
// pause first.
func (p *Pause) Invalidate(ctx context.Context, id int64) error {
	checkpointID := p.board.CheckpointID()
	if checkpointID == 0 {
		return ErrNoCheckpoint
	}
	var errs []error
	if p.paused(id) {
		errs = append(errs, p.endPause(ctx, id))
	}
	if err := race.InvalidatePauses(ctx, p.store, id, checkpointID); err != nil {
		p.actionFailed(race.ActionInvalidateLogs, err, "Failed to invalidate pauses.")
		errs = append(errs, wrapAction(race.ActionInvalidateLogs, err))
	}
	p.coord.Trigger(ctx)
	return errors.Join(errs...)
}

func (p *Pause) paused(id int64) bool {
	if p.board.TimerRunning(id) {
		return true
	}
	for _, row := range p.board.Snapshot().Rows {
		if row.Racer.ID == id {
			return row.Racer.Paused()
		}
	}
	return false
}

// OpenCustomTime opens the custom pause editor for racer id, seeded with
// the current total in seconds.
func (p *Pause) OpenCustomTime(id int64) (int, bool) {
	return p.board.OpenCustomTime(id)
}

// EditCustomTime updates the value in racer id's open editor.
func (p *Pause) EditCustomTime(id int64, seconds int) bool {
	return p.board.SetCustomTime(id, seconds)
}

// CancelCustomTime closes racer id's editor without saving.
func (p *Pause) CancelCustomTime(id int64) {
	p.board.CloseCustomTime(id)
}

// ConfirmCustomTime stores the edited pause total for racer id and
// refreshes. The editor stays open when the store rejects the value.
func (p *Pause) ConfirmCustomTime(ctx context.Context, id int64) error {
	checkpointID := p.board.CheckpointID()
	if checkpointID == 0 {
		return ErrNoCheckpoint
	}
	seconds, ok := p.board.CustomTime(id)
	if !ok {
		return fmt.Errorf("no custom time open for racer %d", id)
	}
	err := race.SetCustomPause(ctx, p.store, id, checkpointID, seconds)
	if err != nil {
		p.actionFailed(race.ActionCustomTime, err, "Failed to set custom time.")
	} else {
		p.board.CloseCustomTime(id)
	}
	p.coord.Trigger(ctx)
	return wrapAction(race.ActionCustomTime, err)
}

func wrapAction(action string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", action, err)
}
