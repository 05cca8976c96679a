package livetimer

import (
	"testing"
	"time"

	clocktesting "k8s.io/utils/clock/testing"
)

func TestRegistry_ElapsedFollowsWallClock(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	r := New[int64](clk)

	r.Start(7)
	clk.Step(1500 * time.Millisecond)

	if got := r.Elapsed(7); got != 1500*time.Millisecond {
		t.Fatalf("Elapsed = %v, want 1.5s", got)
	}
	if !r.Active(7) {
		t.Fatal("timer 7 should be active")
	}
}

func TestRegistry_StopZeroesElapsed(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.Unix(0, 0))
	r := New[int64](clk)

	r.Start(7)
	clk.Step(time.Second)
	if !r.Stop(7) {
		t.Fatal("Stop(7) = false, want true for a running timer")
	}
	clk.Step(time.Second)
	if got := r.Elapsed(7); got != 0 {
		t.Fatalf("Elapsed after Stop = %v, want 0", got)
	}
	if r.Stop(7) {
		t.Fatal("second Stop(7) = true, want false")
	}
}

func TestRegistry_TickAppliesToTrackedEntitiesOnly(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.Unix(0, 0))
	r := New[int64](clk)

	r.Start(1)
	clk.Step(time.Second)
	r.Start(2)
	clk.Step(2 * time.Second)

	tracked := map[int64]time.Duration{1: 0}
	applied := r.Tick(func(id int64, elapsed time.Duration) bool {
		if _, ok := tracked[id]; !ok {
			return false
		}
		tracked[id] = elapsed
		return true
	})

	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}
	if tracked[1] != 3*time.Second {
		t.Fatalf("entity 1 elapsed = %v, want 3s", tracked[1])
	}
	if !r.Active(2) {
		t.Fatal("untracked timer 2 should stay until cleared")
	}
}

func TestRegistry_RetainPrunes(t *testing.T) {
	r := New[int64](clocktesting.NewFakeClock(time.Unix(0, 0)))
	r.Start(1)
	r.Start(2)
	r.Start(3)

	r.Retain(func(id int64) bool { return id != 2 })

	if r.Len() != 2 || r.Active(2) {
		t.Fatalf("Len = %d, Active(2) = %v; want 2 timers without 2", r.Len(), r.Active(2))
	}
}
