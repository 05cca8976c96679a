package ui

import (
	"context"

	"github.com/five82/trackside/internal/race"
	"github.com/five82/trackside/internal/state"
)

// PauseStream is the pause view's data source (live.Pause).
type PauseStream interface {
	Snapshot() state.PauseSnapshot
	TriggerManualRefresh(ctx context.Context) bool
	SelectCheckpoint(ctx context.Context, id int64) bool
	StartLocalTimer(ctx context.Context, id int64) error
	EndLocalTimer(ctx context.Context, id int64) error
	Invalidate(ctx context.Context, id int64) error
	OpenCustomTime(id int64) (int, bool)
	EditCustomTime(id int64, seconds int) bool
	CancelCustomTime(id int64)
	ConfirmCustomTime(ctx context.Context, id int64) error
}

// StartStream is the start view's data source (live.Start).
type StartStream interface {
	Snapshot() state.StartSnapshot
	TriggerManualRefresh(ctx context.Context) bool
	OnInputChange(ctx context.Context, input string)
	SubmitLookup(ctx context.Context)
	LoadRacer(ctx context.Context, no int)
	StartRacer(ctx context.Context) error
	RevertStart(ctx context.Context, id int64) error
}

// FinishStream is the finish view's data source (live.Finish).
type FinishStream interface {
	Snapshot() state.FinishSnapshot
	TriggerManualRefresh(ctx context.Context) bool
	FinishNow(ctx context.Context, id int64) error
	RevertFinish(ctx context.Context, id int64) error
}

// DashboardStream is the dashboard's data source (live.Dashboard).
type DashboardStream interface {
	Snapshot() state.DashboardSnapshot
	TriggerManualRefresh(ctx context.Context) bool
}

// errorText is the operator-facing text of an action error.
func errorText(err error, fallback string) string {
	return race.Message(err, fallback)
}
