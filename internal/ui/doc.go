// Package ui provides the terminal interface for trackside.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program styled with Lip Gloss. It never talks to
// the race store directly: each view reads a copy of its board through a
// stream interface (PauseStream, StartStream, FinishStream, DashboardStream)
// on every render tick, and operator actions run as commands off the UI
// goroutine with a bounded context.
//
// # Views
//
//   - Start: racer-number input with debounced lookup, the racer card, the
//     last started racers and the next racers to send off
//   - Pause: racers on track at the selected checkpoint with their running
//     and accumulated pause time
//   - Finish: racers on track with elapsed time, and the finishers list
//   - Dashboard: overall standings and the category podiums side by side
//   - Log: notice history or the tail of the trackside log file
//
// Only the visible view is polled. The Activate callback tells the caller
// which view is visible so it can move the poll drivers.
//
// # Key Bindings
//
//   - 1-5 or F1-F5: Switch view (F-keys also work while typing a number)
//   - j/k, g/G: Navigate lists
//   - Enter: Look up the typed number, or start the loaded racer
//   - Space: Start or end the pause timer (pause view), follow (log view)
//   - t: Edit the pause time of the selected racer
//   - x: Invalidate the selected racer's pauses at the checkpoint
//   - c: Next checkpoint
//   - f: Finish the selected racer now
//   - r: Revert a start or a finish
//   - T: Cycle theme
//   - ctrl+r: Refresh now
//   - ?: Help
//   - e or Ctrl+C: Exit
//
// Destructive actions (revert, invalidate) ask for confirmation first.
// The theme, the visible view and the pause checkpoint are remembered in
// the preferences file.
package ui
