package live

import (
	"context"
	"testing"
	"time"

	"github.com/five82/trackside/internal/race"
)

func finishStore() *fakeStore {
	return &fakeStore{
		search: func(model string, domain []race.Condition, opts race.SearchOptions) (any, error) {
			if _, ok := hasCondition(domain, "final_time", "!="); ok {
				return []race.Racer{
					{ID: 1, Category: "M18", FinalTime: "10:00"},
					{ID: 2, Age: 12, Gender: "female", FinalTime: "11:00"},
				}, nil
			}
			if _, ok := hasCondition(domain, "finish_time", "="); ok {
				return []race.Racer{{ID: 3, StartTime: at(0)}}, nil
			}
			return []race.Racer{{ID: 4, StartTime: at(0), FinishTime: at(95 * time.Second)}}, nil
		},
		invoke: map[string]error{},
	}
}

func TestFinish_RefreshFetchesBothLists(t *testing.T) {
	store := finishStore()
	f := NewFinish(Deps{Store: store})
	f.SetActive(true)

	f.TriggerManualRefresh(context.Background())

	snap := f.Snapshot()
	if len(snap.OnTrack) != 1 || snap.OnTrack[0].ID != 3 {
		t.Fatalf("on track = %+v", snap.OnTrack)
	}
	if len(snap.Finishers) != 1 || snap.Finishers[0].FinalDisplay() != "01:35" {
		t.Fatalf("finishers = %+v", snap.Finishers)
	}
	if n := store.searchCount(race.ModelRacer); n != 2 {
		t.Fatalf("searches = %d, want 2", n)
	}
}

func TestFinish_FinishNowAndRevert(t *testing.T) {
	store := finishStore()
	f := NewFinish(Deps{Store: store})
	f.SetActive(true)
	ctx := context.Background()

	if err := f.FinishNow(ctx, 3); err != nil {
		t.Fatalf("FinishNow: %v", err)
	}
	if err := f.RevertFinish(ctx, 4); err != nil {
		t.Fatalf("RevertFinish: %v", err)
	}

	invokes := store.callsOf("invoke")
	if len(invokes) != 1 || invokes[0].Method != race.ActionFinishNow || invokes[0].IDs[0] != 3 {
		t.Fatalf("invokes = %+v", invokes)
	}
	writes := store.callsOf("write")
	if len(writes) != 1 || writes[0].Values["finish_time"] != false || writes[0].Values["final_time"] != false {
		t.Fatalf("writes = %+v", writes)
	}
	// Each action re-synchronizes both lists.
	if n := store.searchCount(race.ModelRacer); n != 4 {
		t.Fatalf("searches = %d, want 4", n)
	}
}

func TestFinish_FailedActionStillResyncs(t *testing.T) {
	store := finishStore()
	store.invoke[race.ActionFinishNow] = remoteErr("Racer has not started.")
	f := NewFinish(Deps{Store: store})
	f.SetActive(true)

	err := f.FinishNow(context.Background(), 3)
	if !race.IsRemote(err) {
		t.Fatalf("FinishNow error = %v, want remote", err)
	}
	if n := store.searchCount(race.ModelRacer); n != 2 {
		t.Fatalf("searches = %d, want a refresh after the failure", n)
	}
	latest, _ := f.notices.Latest()
	if latest.Message != "Racer has not started." {
		t.Fatalf("notice = %q", latest.Message)
	}
}

func TestDashboard_BuildsLeaderboard(t *testing.T) {
	d := NewDashboard(Deps{Store: finishStore()})
	d.SetActive(true)

	d.TriggerManualRefresh(context.Background())

	board := d.Snapshot().Board
	if len(board.Overall) != 2 || board.Overall[0].OverallRank != 1 {
		t.Fatalf("overall = %+v", board.Overall)
	}
	if len(board.Pairs) != 2 {
		t.Fatalf("pairs = %+v, want F10 and M18 rows", board.Pairs)
	}
	if board.Pairs[0].Female.Name != "F10" || board.Pairs[1].Male.Name != "M18" {
		t.Fatalf("pair order = %s, %s", board.Pairs[0].Female.Name, board.Pairs[1].Male.Name)
	}
}
