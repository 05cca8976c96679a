package state

import (
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/five82/trackside/internal/livetimer"
	"github.com/five82/trackside/internal/race"
	"github.com/five82/trackside/internal/snapshot"
)

// PauseLocal is the client-owned part of a pause row. None of it is ever
// sent by the store.
type PauseLocal struct {
	CheckpointPause time.Duration // closed pause intervals at the checkpoint
	LivePause       time.Duration // interpolated running pause
	ShowCustomTime  bool
	CustomTime      int // seconds, while the editor is open
}

// Total is the pause time shown for the row.
func (l PauseLocal) Total() time.Duration {
	return l.CheckpointPause + l.LivePause
}

// PauseRow is one tracked racer at the selected checkpoint.
type PauseRow = snapshot.Entity[race.Racer, PauseLocal]

// PauseEntry is a copy of a row handed to readers.
type PauseEntry struct {
	Racer race.Racer
	PauseLocal
	Timing bool // a local live timer is running
}

// PauseSnapshot is the pause board as seen by the UI.
type PauseSnapshot struct {
	Rows         []PauseEntry
	Checkpoints  []race.Checkpoint
	CheckpointID int64
	Status       Status
}

// Checkpoint returns the selected checkpoint.
func (s PauseSnapshot) Checkpoint() (race.Checkpoint, bool) {
	for _, cp := range s.Checkpoints {
		if cp.ID == s.CheckpointID {
			return cp, true
		}
	}
	return race.Checkpoint{}, false
}

// PauseBoard holds the on-track racers for the pause view together with
// their live pause timers.
type PauseBoard struct {
	clk    clock.PassiveClock
	timers *livetimer.Registry[int64]

	mu           sync.RWMutex
	rows         []*PauseRow
	checkpoints  []race.Checkpoint
	checkpointID int64
	status       Status
}

// NewPauseBoard creates an empty board. A nil clk uses the wall clock.
func NewPauseBoard(clk clock.PassiveClock) *PauseBoard {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &PauseBoard{clk: clk, timers: livetimer.New[int64](clk)}
}

// SetCheckpoints stores the checkpoint list. When nothing is selected yet,
// or the selection no longer exists, the preferred id is selected if
// present, else the first checkpoint.
func (b *PauseBoard) SetCheckpoints(cps []race.Checkpoint, preferred int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkpoints = append([]race.Checkpoint(nil), cps...)
	if b.checkpointID != 0 && hasCheckpoint(cps, b.checkpointID) {
		return
	}
	b.checkpointID = 0
	if preferred != 0 && hasCheckpoint(cps, preferred) {
		b.checkpointID = preferred
	} else if len(cps) > 0 {
		b.checkpointID = cps[0].ID
	}
}

// SelectCheckpoint switches the checkpoint and reports whether it changed.
// Rows and timers of the previous checkpoint are dropped.
func (b *PauseBoard) SelectCheckpoint(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id == b.checkpointID {
		return false
	}
	b.checkpointID = id
	b.rows = nil
	b.timers.Retain(func(int64) bool { return false })
	return true
}

// CheckpointID returns the selected checkpoint, zero when none.
func (b *PauseBoard) CheckpointID() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.checkpointID
}

// Apply merges a fresh poll result. totals holds the closed pause time per
// racer at the checkpoint; racers without an entry get zero. Timers of
// racers that left the track are pruned.
func (b *PauseBoard) Apply(racers []race.Racer, totals map[int64]time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rows = snapshot.Merge(b.rows, racers, race.Racer.Key, nil)
	present := make(map[int64]struct{}, len(b.rows))
	for _, row := range b.rows {
		row.Local.CheckpointPause = totals[row.Remote.ID]
		present[row.Remote.ID] = struct{}{}
	}
	b.timers.Retain(func(id int64) bool {
		_, ok := present[id]
		return ok
	})
	b.status.succeed(b.clk.Now())
}

// Fail records a failed refresh and keeps the previous rows.
func (b *PauseBoard) Fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status.fail(err, b.clk.Now())
}

// Tick advances every live pause from the local clock and returns how many
// rows changed.
func (b *PauseBoard) Tick() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timers.Tick(func(id int64, elapsed time.Duration) bool {
		row := snapshot.Find(b.rows, race.Racer.Key, id)
		if row == nil {
			return false
		}
		row.Local.LivePause = elapsed
		return true
	})
}

// StartTimer starts racer id's live pause at the current instant.
func (b *PauseBoard) StartTimer(id int64) time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	start := b.timers.Start(id)
	if row := snapshot.Find(b.rows, race.Racer.Key, id); row != nil {
		row.Local.LivePause = 0
	}
	return start
}

// StopTimer removes racer id's live pause and zeroes the displayed value.
// It serves pause end, invalidation and the rollback of a failed start.
func (b *PauseBoard) StopTimer(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	running := b.timers.Stop(id)
	if row := snapshot.Find(b.rows, race.Racer.Key, id); row != nil {
		row.Local.LivePause = 0
	}
	return running
}

// TimerRunning reports whether racer id has a live pause.
func (b *PauseBoard) TimerRunning(id int64) bool {
	return b.timers.Active(id)
}

// OpenCustomTime opens the editor for racer id seeded with the current
// total in whole seconds.
func (b *PauseBoard) OpenCustomTime(id int64) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	row := snapshot.Find(b.rows, race.Racer.Key, id)
	if row == nil {
		return 0, false
	}
	row.Local.ShowCustomTime = true
	row.Local.CustomTime = int(row.Local.Total() / time.Second)
	return row.Local.CustomTime, true
}

// SetCustomTime updates the value being edited.
func (b *PauseBoard) SetCustomTime(id int64, seconds int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	row := snapshot.Find(b.rows, race.Racer.Key, id)
	if row == nil || !row.Local.ShowCustomTime {
		return false
	}
	row.Local.CustomTime = seconds
	return true
}

// CustomTime returns the value being edited for racer id.
func (b *PauseBoard) CustomTime(id int64) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	row := snapshot.Find(b.rows, race.Racer.Key, id)
	if row == nil || !row.Local.ShowCustomTime {
		return 0, false
	}
	return row.Local.CustomTime, true
}

// CloseCustomTime closes racer id's editor.
func (b *PauseBoard) CloseCustomTime(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if row := snapshot.Find(b.rows, race.Racer.Key, id); row != nil {
		row.Local.ShowCustomTime = false
	}
}

// Snapshot returns a copy of the board.
func (b *PauseBoard) Snapshot() PauseSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap := PauseSnapshot{
		Checkpoints:  append([]race.Checkpoint(nil), b.checkpoints...),
		CheckpointID: b.checkpointID,
		Status:       b.status.clone(),
	}
	if len(b.rows) > 0 {
		snap.Rows = make([]PauseEntry, len(b.rows))
		for i, row := range b.rows {
			snap.Rows[i] = PauseEntry{
				Racer:      row.Remote,
				PauseLocal: row.Local,
				Timing:     b.timers.Active(row.Remote.ID),
			}
		}
	}
	return snap
}

func hasCheckpoint(cps []race.Checkpoint, id int64) bool {
	for _, cp := range cps {
		if cp.ID == id {
			return true
		}
	}
	return false
}
