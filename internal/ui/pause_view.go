package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/trackside/internal/race"
	"github.com/five82/trackside/internal/state"
)

func (m Model) handlePauseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pause == nil {
		return m, nil
	}
	p := m.pause
	snap := m.snaps.Pause

	if key.Matches(msg, m.keys.CycleCheckpoint) {
		id, ok := nextCheckpoint(snap.Checkpoints, snap.CheckpointID)
		if !ok {
			return m, nil
		}
		m.pauseSel = 0
		m.prefs.Checkpoint = id
		m.savePrefs()
		return m, m.actionCmd(actionCheckpoint, func(ctx context.Context) error {
			p.SelectCheckpoint(ctx, id)
			return nil
		})
	}

	if sel, moved := m.moveSelection(msg, m.pauseSel, len(snap.Rows)); moved {
		m.pauseSel = sel
		return m, nil
	}

	if len(snap.Rows) == 0 {
		return m, nil
	}
	row := snap.Rows[m.pauseSel]
	id := row.Racer.ID

	switch {
	case key.Matches(msg, m.keys.TogglePause):
		if row.Timing || row.Racer.Paused() {
			return m, m.actionCmd(actionPause, func(ctx context.Context) error {
				return p.EndLocalTimer(ctx, id)
			})
		}
		return m, m.actionCmd(actionPause, func(ctx context.Context) error {
			return p.StartLocalTimer(ctx, id)
		})

	case key.Matches(msg, m.keys.Invalidate):
		where := "this checkpoint"
		if cp, ok := snap.Checkpoint(); ok {
			where = string(cp.Name)
		}
		m.modal = confirmModal{
			title:   "Invalidate pauses",
			message: fmt.Sprintf("Discard every pause of %s at %s?", row.Racer.DisplayName(), where),
			onYes: m.actionCmd(actionInvalidate, func(ctx context.Context) error {
				return p.Invalidate(ctx, id)
			}),
		}
		return m, nil

	case key.Matches(msg, m.keys.CustomTime):
		seconds, ok := p.OpenCustomTime(id)
		if !ok {
			return m, nil
		}
		m.modal = newCustomTimeModal(id, row.Racer.DisplayName(), seconds, m.submitCustomTime, m.cancelCustomTime)
		return m, m.fetchSnapshotsCmd()
	}
	return m, nil
}

func (m Model) submitCustomTime(id int64, seconds int) tea.Cmd {
	p := m.pause
	return m.actionCmd(actionCustomTime, func(ctx context.Context) error {
		p.EditCustomTime(id, seconds)
		return p.ConfirmCustomTime(ctx, id)
	})
}

func (m Model) cancelCustomTime(id int64) tea.Cmd {
	p := m.pause
	return tea.Sequence(func() tea.Msg {
		p.CancelCustomTime(id)
		return nil
	}, m.fetchSnapshotsCmd())
}

// nextCheckpoint returns the checkpoint after current, wrapping around.
func nextCheckpoint(cps []race.Checkpoint, current int64) (int64, bool) {
	if len(cps) == 0 {
		return 0, false
	}
	for i, cp := range cps {
		if cp.ID == current {
			next := cps[(i+1)%len(cps)]
			return next.ID, next.ID != current
		}
	}
	return cps[0].ID, true
}

func (m Model) renderPause() string {
	height := m.contentHeight()
	snap := m.snaps.Pause

	title := "Pause"
	empty := "No racers on track"
	if cp, ok := snap.Checkpoint(); ok {
		title = fmt.Sprintf("Pause · %s (%d/%d)", cp.Name, checkpointIndex(snap)+1, len(snap.Checkpoints))
	} else if len(snap.Checkpoints) == 0 {
		empty = "No checkpoint selected"
	}

	rows := make([]listRow, 0, len(snap.Rows))
	for _, e := range snap.Rows {
		rows = append(rows, pauseRow(e))
	}
	content := m.renderList(rows, m.pauseSel, m.width-2, height-2, m.paneBg(true), empty)
	return m.renderTitledBox(title, content, m.width, height, true)
}

func pauseRow(e state.PauseEntry) listRow {
	text := fmt.Sprintf("#%-4d %-28s pause %s", e.Racer.RacerNo, e.Racer.FullName(), race.FormatClock(e.Total()))
	if e.ShowCustomTime {
		text += "  (editing)"
	}
	switch {
	case e.Timing:
		return listRow{text: text, status: statusTiming, label: "TIMING"}
	case e.Racer.Paused():
		return listRow{text: text, status: statusPaused, label: "PAUSED"}
	default:
		return listRow{text: text, status: statusOnTrack, label: "ON TRACK"}
	}
}

func checkpointIndex(snap state.PauseSnapshot) int {
	for i, cp := range snap.Checkpoints {
		if cp.ID == snap.CheckpointID {
			return i
		}
	}
	return 0
}
