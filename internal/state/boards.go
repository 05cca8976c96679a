package state

import (
	"sync"

	"k8s.io/utils/clock"

	"github.com/five82/trackside/internal/leaderboard"
	"github.com/five82/trackside/internal/race"
)

// FinishSnapshot is the finish board as seen by the UI.
type FinishSnapshot struct {
	OnTrack   []race.Racer
	Finishers []race.Racer
	Status    Status
}

// FinishBoard holds racers on track and finishers. The zero value is ready
// to use.
type FinishBoard struct {
	Clock clock.PassiveClock

	mu       sync.RWMutex
	snapshot FinishSnapshot
}

// Apply replaces both lists. When err is non-nil the previous lists are
// kept but the error is recorded for visibility.
func (b *FinishBoard) Apply(onTrack, finishers []race.Racer, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := nowFrom(b.Clock)
	if err != nil {
		b.snapshot.Status.fail(err, now)
		return
	}
	b.snapshot.OnTrack = cloneRacers(onTrack)
	b.snapshot.Finishers = cloneRacers(finishers)
	b.snapshot.Status.succeed(now)
}

// Snapshot returns a copy of the board.
func (b *FinishBoard) Snapshot() FinishSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return FinishSnapshot{
		OnTrack:   cloneRacers(b.snapshot.OnTrack),
		Finishers: cloneRacers(b.snapshot.Finishers),
		Status:    b.snapshot.Status.clone(),
	}
}

// StartSnapshot is the start board as seen by the UI.
type StartSnapshot struct {
	Recent      []race.Racer
	Next        []race.Racer
	Input       string
	Racer       *race.Racer // looked-up racer, nil when none
	LookupError string
	Looking     bool
	Status      Status
}

// CanStart reports whether the looked-up racer may be sent off.
func (s StartSnapshot) CanStart() bool {
	return s.Racer != nil && s.Racer.RacerNo != 0 && !s.Racer.StartTime.Set()
}

// StartBoard holds the start lists and the racer-number lookup. The zero
// value is ready to use.
type StartBoard struct {
	Clock clock.PassiveClock

	mu       sync.RWMutex
	snapshot StartSnapshot
}

// ApplyLists replaces the recent and next lists, or records err.
func (b *StartBoard) ApplyLists(recent, next []race.Racer, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := nowFrom(b.Clock)
	if err != nil {
		b.snapshot.Status.fail(err, now)
		return
	}
	b.snapshot.Recent = cloneRacers(recent)
	b.snapshot.Next = cloneRacers(next)
	b.snapshot.Status.succeed(now)
}

// SetInput stores the typed racer number.
func (b *StartBoard) SetInput(input string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot.Input = input
}

// Input returns the latest typed racer number.
func (b *StartBoard) Input() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot.Input
}

// BeginLookup marks a lookup in flight.
func (b *StartBoard) BeginLookup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot.Looking = true
	b.snapshot.LookupError = ""
}

// SetRacer stores a lookup result. A nil racer with an empty message clears
// the result silently.
func (b *StartBoard) SetRacer(r *race.Racer, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot.Looking = false
	b.snapshot.LookupError = message
	if r == nil {
		b.snapshot.Racer = nil
		return
	}
	dup := *r
	b.snapshot.Racer = &dup
}

// Racer returns a copy of the looked-up racer.
func (b *StartBoard) Racer() *race.Racer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.snapshot.Racer == nil {
		return nil
	}
	dup := *b.snapshot.Racer
	return &dup
}

// ClearStart drops the local start time of the looked-up racer when it is
// racer id.
func (b *StartBoard) ClearStart(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.snapshot.Racer == nil || b.snapshot.Racer.ID != id {
		return false
	}
	b.snapshot.Racer.StartTime = race.Datetime{}
	return true
}

// Snapshot returns a copy of the board.
func (b *StartBoard) Snapshot() StartSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap := b.snapshot
	snap.Recent = cloneRacers(b.snapshot.Recent)
	snap.Next = cloneRacers(b.snapshot.Next)
	if b.snapshot.Racer != nil {
		dup := *b.snapshot.Racer
		snap.Racer = &dup
	}
	snap.Status = b.snapshot.Status.clone()
	return snap
}

// DashboardSnapshot is the leaderboard as seen by the UI.
type DashboardSnapshot struct {
	Board  leaderboard.Board
	Status Status
}

// DashboardBoard holds the latest leaderboard. The zero value is ready to
// use.
type DashboardBoard struct {
	Clock clock.PassiveClock

	mu       sync.RWMutex
	snapshot DashboardSnapshot
}

// Apply replaces the leaderboard, or records err.
func (b *DashboardBoard) Apply(board leaderboard.Board, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := nowFrom(b.Clock)
	if err != nil {
		b.snapshot.Status.fail(err, now)
		return
	}
	b.snapshot.Board = board
	b.snapshot.Status.succeed(now)
}

// Snapshot returns a copy of the board. Leaderboards are rebuilt on every
// refresh and never mutated, so the layout is shared.
func (b *DashboardBoard) Snapshot() DashboardSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap := b.snapshot
	snap.Status = b.snapshot.Status.clone()
	return snap
}

func cloneRacers(items []race.Racer) []race.Racer {
	if len(items) == 0 {
		return nil
	}
	dup := make([]race.Racer, len(items))
	copy(dup, items)
	return dup
}
