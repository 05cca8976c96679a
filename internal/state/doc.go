// Package state holds the live boards shared between the refresh streams
// and the UI.
//
// Each board is written by one stream's refresh cycles and read by the UI
// through Snapshot, which returns a copy:
//
//	Producer (stream):               Consumer (UI):
//	┌────────────────────┐          ┌────────────────────┐
//	│ race.OnTrack()     │          │                    │
//	│ race.Finishers()   │          │                    │
//	│      ↓             │          │                    │
//	│ board.Apply()      │─────────→│ board.Snapshot()   │
//	│      ↓             │ (mutex)  │      ↓             │
//	│  next cycle...     │          │  render view       │
//	└────────────────────┘          └────────────────────┘
//
// Boards guard their data with a sync.RWMutex held only while copying,
// never across network I/O. Mutual exclusion of the cycles themselves is
// the job of refresh.Coordinator.
//
// # Failure Semantics
//
// A failed refresh keeps the previous data and records the error in the
// board's Status, counting consecutive failures so the UI can flag the
// store as offline after two in a row. A successful refresh resets it.
//
// # Pause Board
//
// PauseBoard tracks on-track racers as snapshot entities: the store owns
// the racer record, the client owns the pause totals, the interpolated
// live pause and the custom-time editor. Merging a poll result keeps the
// client-owned part of every racer still on track and prunes live timers
// of racers that left. Tick advances live pauses from the local clock
// alone.
//
// # Notices
//
// Notices keeps the last MaxNotices operator messages: refresh failures,
// action failures and confirmations.
package state
