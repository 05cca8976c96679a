package live

import (
	"context"
	"errors"
	"testing"
	"time"

	clocktesting "k8s.io/utils/clock/testing"

	"github.com/five82/trackside/internal/race"
	"github.com/five82/trackside/internal/state"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func at(offset time.Duration) race.Datetime {
	return race.Datetime{Time: t0.Add(offset)}
}

// pauseStore serves two checkpoints, the given on-track racers and pause
// logs.
func pauseStore(onTrack func() []race.Racer, logs []race.PauseLog) *fakeStore {
	return &fakeStore{
		search: func(model string, _ []race.Condition, _ race.SearchOptions) (any, error) {
			switch model {
			case race.ModelCheckpoint:
				return []race.Checkpoint{{ID: 4, Name: "Summit"}, {ID: 9, Name: "Lake"}}, nil
			case race.ModelRacer:
				return onTrack(), nil
			case race.ModelPauseLog:
				return logs, nil
			}
			return nil, nil
		},
		invoke: map[string]error{},
	}
}

func newTestPause(store race.Store) (*Pause, *clocktesting.FakeClock) {
	clk := clocktesting.NewFakeClock(t0)
	p := NewPause(Deps{Store: store, Clock: clk}, 0)
	p.SetActive(true)
	return p, clk
}

func TestPause_RefreshLoadsCheckpointsAndTotals(t *testing.T) {
	store := pauseStore(
		func() []race.Racer { return []race.Racer{{ID: 1, RacerNo: 11}, {ID: 2, RacerNo: 12}} },
		[]race.PauseLog{
			{RacerID: race.Many2One{ID: 1}, StartTime: at(0), EndTime: at(30 * time.Second)},
			{RacerID: race.Many2One{ID: 1}, StartTime: at(time.Minute), EndTime: at(90 * time.Second)},
			{RacerID: race.Many2One{ID: 2}, StartTime: at(0)}, // still open
		},
	)
	p, _ := newTestPause(store)

	if !p.TriggerManualRefresh(context.Background()) {
		t.Fatal("TriggerManualRefresh = false with nothing running")
	}

	snap := p.Snapshot()
	if snap.CheckpointID != 4 || len(snap.Checkpoints) != 2 {
		t.Fatalf("checkpoints = %+v selected %d", snap.Checkpoints, snap.CheckpointID)
	}
	if len(snap.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(snap.Rows))
	}
	if snap.Rows[0].CheckpointPause != time.Minute || snap.Rows[1].CheckpointPause != 0 {
		t.Fatalf("totals = %v, %v; want 1m and 0", snap.Rows[0].CheckpointPause, snap.Rows[1].CheckpointPause)
	}

	logQuery := store.callsOf("search")
	last := logQuery[len(logQuery)-1]
	if last.Model != race.ModelPauseLog {
		t.Fatalf("last search = %s, want pause logs", last.Model)
	}
	if cond, ok := hasCondition(last.Domain, "checkpoint_id", "="); !ok || cond.Value != int64(4) {
		t.Fatalf("pause log domain = %+v, want checkpoint 4", last.Domain)
	}
}

func TestPause_NoCheckpointIsNoop(t *testing.T) {
	store := &fakeStore{}
	p, _ := newTestPause(store)

	p.TriggerManualRefresh(context.Background())

	if n := store.searchCount(race.ModelRacer); n != 0 {
		t.Fatalf("racer searches = %d, want 0 without checkpoints", n)
	}
	if err := p.StartLocalTimer(context.Background(), 1); !errors.Is(err, ErrNoCheckpoint) {
		t.Fatalf("StartLocalTimer error = %v, want ErrNoCheckpoint", err)
	}
}

func TestPause_InactiveResultsAreDiscarded(t *testing.T) {
	store := pauseStore(func() []race.Racer { return []race.Racer{{ID: 1}} }, nil)
	p, _ := newTestPause(store)
	p.SetActive(false)

	p.TriggerManualRefresh(context.Background())

	if rows := p.Snapshot().Rows; len(rows) != 0 {
		t.Fatalf("rows = %d, want none while inactive", len(rows))
	}
}

func TestPause_FailedStartRollsBackTimer(t *testing.T) {
	store := pauseStore(func() []race.Racer { return []race.Racer{{ID: 7}} }, nil)
	store.invoke[race.ActionPauseStart] = remoteErr("Racer is already paused.")
	p, clk := newTestPause(store)
	p.TriggerManualRefresh(context.Background())

	err := p.StartLocalTimer(context.Background(), 7)
	if !race.IsRemote(err) || race.Message(err, "") != "Racer is already paused." {
		t.Fatalf("StartLocalTimer error = %v", err)
	}

	clk.Step(1500 * time.Millisecond)
	p.Tick()
	row := p.Snapshot().Rows[0]
	if row.LivePause != 0 || row.Timing {
		t.Fatalf("row after failed start = %+v, want no live pause", row)
	}
	latest, ok := p.notices.Latest()
	if !ok || latest.Message != "Racer is already paused." {
		t.Fatalf("latest notice = %+v", latest)
	}
}

func TestPause_LiveTimerSurvivesPolls(t *testing.T) {
	store := pauseStore(func() []race.Racer { return []race.Racer{{ID: 7}} }, nil)
	p, clk := newTestPause(store)
	p.TriggerManualRefresh(context.Background())

	if err := p.StartLocalTimer(context.Background(), 7); err != nil {
		t.Fatalf("StartLocalTimer: %v", err)
	}
	clk.Step(time.Second)
	p.TriggerManualRefresh(context.Background())
	clk.Step(500 * time.Millisecond)
	p.Tick()

	if got := p.Snapshot().Rows[0].LivePause; got != 1500*time.Millisecond {
		t.Fatalf("live pause = %v, want 1.5s", got)
	}

	starts := store.callsOf("invoke")
	if len(starts) != 1 || starts[0].Method != race.ActionPauseStart || starts[0].Args[0] != int64(4) {
		t.Fatalf("invokes = %+v", starts)
	}
}

func TestPause_EndZeroesEvenWhenStoreFails(t *testing.T) {
	store := pauseStore(func() []race.Racer { return []race.Racer{{ID: 7}} }, nil)
	store.invoke[race.ActionPauseEnd] = remoteErr("nope")
	p, clk := newTestPause(store)
	p.TriggerManualRefresh(context.Background())
	_ = p.StartLocalTimer(context.Background(), 7)
	clk.Step(3 * time.Second)
	p.Tick()

	if err := p.EndLocalTimer(context.Background(), 7); err == nil {
		t.Fatal("EndLocalTimer error = nil, want remote failure")
	}
	clk.Step(time.Second)
	p.Tick()
	if row := p.Snapshot().Rows[0]; row.LivePause != 0 || row.Timing {
		t.Fatalf("row = %+v, want cleared live pause", row)
	}
}

func TestPause_InvalidateEndsOpenPauseFirst(t *testing.T) {
	store := pauseStore(func() []race.Racer {
		return []race.Racer{{ID: 7, ActivePauseLogID: race.Many2One{ID: 70}}, {ID: 8}}
	}, nil)
	p, _ := newTestPause(store)
	p.TriggerManualRefresh(context.Background())

	if err := p.Invalidate(context.Background(), 7); err != nil {
		t.Fatalf("Invalidate(7): %v", err)
	}
	if err := p.Invalidate(context.Background(), 8); err != nil {
		t.Fatalf("Invalidate(8): %v", err)
	}

	var methods []string
	for _, c := range store.callsOf("invoke") {
		methods = append(methods, c.Method)
	}
	want := []string{race.ActionPauseEnd, race.ActionInvalidateLogs, race.ActionInvalidateLogs}
	if len(methods) != len(want) {
		t.Fatalf("methods = %v, want %v", methods, want)
	}
	for i := range want {
		if methods[i] != want[i] {
			t.Fatalf("methods = %v, want %v", methods, want)
		}
	}
}

func TestPause_CustomTime(t *testing.T) {
	store := pauseStore(
		func() []race.Racer { return []race.Racer{{ID: 3}} },
		[]race.PauseLog{{RacerID: race.Many2One{ID: 3}, StartTime: at(0), EndTime: at(65 * time.Second)}},
	)
	p, _ := newTestPause(store)
	p.TriggerManualRefresh(context.Background())

	seconds, ok := p.OpenCustomTime(3)
	if !ok || seconds != 65 {
		t.Fatalf("OpenCustomTime = %d, %v; want 65", seconds, ok)
	}
	p.EditCustomTime(3, 100)

	store.invoke[race.ActionCustomTime] = remoteErr("bad value")
	if err := p.ConfirmCustomTime(context.Background(), 3); err == nil {
		t.Fatal("ConfirmCustomTime error = nil")
	}
	if !p.Snapshot().Rows[0].ShowCustomTime {
		t.Fatal("editor closed after a rejected value")
	}

	store.invoke[race.ActionCustomTime] = nil
	if err := p.ConfirmCustomTime(context.Background(), 3); err != nil {
		t.Fatalf("ConfirmCustomTime: %v", err)
	}
	if p.Snapshot().Rows[0].ShowCustomTime {
		t.Fatal("editor still open after confirm")
	}
	calls := store.callsOf("invoke")
	last := calls[len(calls)-1]
	if last.Args[0] != int64(4) || last.Args[1] != 100 {
		t.Fatalf("custom time args = %v, want [4 100]", last.Args)
	}

	p.OpenCustomTime(3)
	p.CancelCustomTime(3)
	if p.Snapshot().Rows[0].ShowCustomTime {
		t.Fatal("editor open after cancel")
	}
}

func TestPause_SelectCheckpointRefreshes(t *testing.T) {
	store := pauseStore(func() []race.Racer { return []race.Racer{{ID: 1}} }, nil)
	p, _ := newTestPause(store)
	p.TriggerManualRefresh(context.Background())
	before := store.searchCount(race.ModelPauseLog)

	if !p.SelectCheckpoint(context.Background(), 9) {
		t.Fatal("SelectCheckpoint(9) = false")
	}
	if got := store.searchCount(race.ModelPauseLog); got != before+1 {
		t.Fatalf("pause log searches = %d, want %d", got, before+1)
	}
	if p.Snapshot().CheckpointID != 9 || len(p.Snapshot().Rows) != 1 {
		t.Fatalf("snapshot = %+v", p.Snapshot())
	}
}

func TestPause_RefreshFailureRecorded(t *testing.T) {
	store := &fakeStore{search: func(string, []race.Condition, race.SearchOptions) (any, error) {
		return nil, remoteErr("store down")
	}}
	p, _ := newTestPause(store)

	p.TriggerManualRefresh(context.Background())
	p.TriggerManualRefresh(context.Background())

	if p.Failures() != 2 {
		t.Fatalf("Failures = %d, want 2", p.Failures())
	}
	if all := p.notices.All(); len(all) != 1 {
		t.Fatalf("notices = %+v, want one per failure streak", all)
	}
	var snap state.PauseSnapshot = p.Snapshot()
	if !snap.Status.IsOffline() {
		t.Fatal("IsOffline() = false after two failures")
	}
}
