package state

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"testing"
	"time"

	clocktesting "k8s.io/utils/clock/testing"

	"github.com/five82/trackside/internal/leaderboard"
	"github.com/five82/trackside/internal/race"
)

func TestFinishBoard_ApplyAndSnapshotClone(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	b := FinishBoard{Clock: clk}

	b.Apply(racers(1, 2), racers(3), nil)

	snap := b.Snapshot()
	if len(snap.OnTrack) != 2 || len(snap.Finishers) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if !snap.Status.LastUpdated.Equal(clk.Now()) || !snap.Status.Loaded {
		t.Fatalf("status = %+v", snap.Status)
	}

	// Returned snapshot should be independent of the stored one.
	snap.OnTrack[0].ID = 999
	if b.Snapshot().OnTrack[0].ID != 1 {
		t.Fatal("Snapshot should clone lists")
	}
}

func TestFinishBoard_ErrorKeepsPreviousData(t *testing.T) {
	var b FinishBoard
	b.Apply(racers(1), nil, nil)

	origErr := errors.New("boom")
	b.Apply(nil, nil, origErr)

	snap := b.Snapshot()
	if len(snap.OnTrack) != 1 {
		t.Fatalf("on track changed on error: %+v", snap.OnTrack)
	}
	if snap.Status.LastError == nil || snap.Status.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.Status.LastError)
	}
	if reflect.ValueOf(snap.Status.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatal("Snapshot should clone error instance")
	}
	if !errors.Is(snap.Status.LastError, origErr) {
		t.Fatal("cloned error should wrap the original")
	}
}

func TestStatus_ConsecutiveFailures(t *testing.T) {
	var b FinishBoard
	if b.Snapshot().Status.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	b.Apply(nil, nil, errors.New("fail 1"))
	if st := b.Snapshot().Status; st.ConsecutiveFailures != 1 || st.IsOffline() {
		t.Fatalf("after 1 failure: %+v", st)
	}
	b.Apply(nil, nil, errors.New("fail 2"))
	if !b.Snapshot().Status.IsOffline() {
		t.Fatal("IsOffline() = false, want true after 2 failures")
	}
	b.Apply(racers(1), nil, nil)
	if st := b.Snapshot().Status; st.ConsecutiveFailures != 0 || st.IsOffline() {
		t.Fatalf("after recovery: %+v", st)
	}
}

func TestStartBoard_Lookup(t *testing.T) {
	var b StartBoard
	b.SetInput("12")
	b.BeginLookup()
	if !b.Snapshot().Looking {
		t.Fatal("Looking = false during lookup")
	}

	b.SetRacer(&race.Racer{ID: 5, RacerNo: 12}, "")
	snap := b.Snapshot()
	if snap.Looking || snap.Racer == nil || snap.Racer.ID != 5 || snap.Input != "12" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if !snap.CanStart() {
		t.Fatal("CanStart() = false for an unstarted racer")
	}

	snap.Racer.ID = 99
	if b.Racer().ID != 5 {
		t.Fatal("Snapshot should clone the racer")
	}

	b.SetRacer(nil, "Racer not found.")
	snap = b.Snapshot()
	if snap.Racer != nil || snap.LookupError != "Racer not found." || snap.CanStart() {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestStartSnapshot_CanStart(t *testing.T) {
	started := race.Racer{ID: 1, RacerNo: 3, StartTime: race.Datetime{Time: time.Unix(100, 0)}}
	tests := []struct {
		name  string
		racer *race.Racer
		want  bool
	}{
		{"none", nil, false},
		{"no number", &race.Racer{ID: 1}, false},
		{"started", &started, false},
		{"ready", &race.Racer{ID: 1, RacerNo: 3}, true},
	}
	for _, tt := range tests {
		if got := (StartSnapshot{Racer: tt.racer}).CanStart(); got != tt.want {
			t.Errorf("%s: CanStart() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStartBoard_ClearStartOnlyForSameRacer(t *testing.T) {
	var b StartBoard
	b.SetRacer(&race.Racer{ID: 5, RacerNo: 12, StartTime: race.Datetime{Time: time.Unix(100, 0)}}, "")

	if b.ClearStart(6) {
		t.Fatal("ClearStart(6) cleared another racer")
	}
	if !b.ClearStart(5) || b.Racer().StartTime.Set() {
		t.Fatal("ClearStart(5) did not clear the start time")
	}
}

func TestStartBoard_ListsKeepOnError(t *testing.T) {
	var b StartBoard
	b.ApplyLists(racers(1), racers(2, 3), nil)
	b.ApplyLists(nil, nil, errors.New("down"))

	snap := b.Snapshot()
	if len(snap.Recent) != 1 || len(snap.Next) != 2 || snap.Status.ConsecutiveFailures != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestDashboardBoard_Apply(t *testing.T) {
	var b DashboardBoard
	board := leaderboard.Build([]race.Racer{{ID: 1, Category: "M18"}})
	b.Apply(board, nil)
	b.Apply(leaderboard.Board{}, errors.New("down"))

	snap := b.Snapshot()
	if snap.Board.Empty() || snap.Status.LastError == nil {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestNotices_KeepsNewest(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.Unix(0, 0))
	n := NewNotices(clk)
	if _, ok := n.Latest(); ok {
		t.Fatal("Latest() on empty history = ok")
	}

	for i := 0; i < MaxNotices+5; i++ {
		n.Push(slog.LevelInfo, fmt.Sprintf("notice %d", i))
	}
	n.Push(slog.LevelError, "last")

	all := n.All()
	if len(all) != MaxNotices {
		t.Fatalf("len = %d, want %d", len(all), MaxNotices)
	}
	if all[0].Message != "notice 6" {
		t.Fatalf("oldest = %q, want notice 6", all[0].Message)
	}
	latest, ok := n.Latest()
	if !ok || latest.Message != "last" || latest.Level != slog.LevelError || !latest.Time.Equal(clk.Now()) {
		t.Fatalf("latest = %+v", latest)
	}
}
