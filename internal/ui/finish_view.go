package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/trackside/internal/race"
)

func (m Model) handleFinishKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.finish == nil {
		return m, nil
	}
	f := m.finish
	snap := m.snaps.Finish

	if key.Matches(msg, m.keys.Tab) {
		m.finishPane = 1 - m.finishPane
		return m, nil
	}

	if m.finishPane == 0 {
		if sel, moved := m.moveSelection(msg, m.onTrackSel, len(snap.OnTrack)); moved {
			m.onTrackSel = sel
			return m, nil
		}
		if key.Matches(msg, m.keys.FinishNow) && len(snap.OnTrack) > 0 {
			id := snap.OnTrack[m.onTrackSel].ID
			return m, m.actionCmd(actionFinish, func(ctx context.Context) error {
				return f.FinishNow(ctx, id)
			})
		}
		return m, nil
	}

	if sel, moved := m.moveSelection(msg, m.finisherSel, len(snap.Finishers)); moved {
		m.finisherSel = sel
		return m, nil
	}
	if key.Matches(msg, m.keys.RevertFinish) && len(snap.Finishers) > 0 {
		racer := snap.Finishers[m.finisherSel]
		m.modal = confirmModal{
			title:   "Revert finish",
			message: fmt.Sprintf("Clear the finish of %s (%s)?", racer.DisplayName(), racer.FinalDisplay()),
			onYes: m.actionCmd(actionRevertFinish, func(ctx context.Context) error {
				return f.RevertFinish(ctx, racer.ID)
			}),
		}
	}
	return m, nil
}

func (m Model) renderFinish() string {
	height := m.contentHeight()
	snap := m.snaps.Finish

	onTrack := make([]listRow, 0, len(snap.OnTrack))
	for _, r := range snap.OnTrack {
		onTrack = append(onTrack, m.onTrackRow(r))
	}
	finishers := make([]listRow, 0, len(snap.Finishers))
	for _, r := range snap.Finishers {
		finishers = append(finishers, listRow{
			text:   fmt.Sprintf("#%-4d %-28s %s", r.RacerNo, r.FullName(), r.FinalDisplay()),
			status: statusFinished,
			label:  racerCategory(r),
		})
	}

	pane := func(title string, rows []listRow, sel, idx, width, h int, empty string) string {
		focused := m.finishPane == idx
		if !focused {
			sel = -1
		}
		title = fmt.Sprintf("%s (%d)", title, len(rows))
		content := m.renderList(rows, sel, width-2, h-2, m.paneBg(focused), empty)
		return m.renderTitledBox(title, content, width, h, focused)
	}

	if m.width < LayoutCompactWidth {
		top := height / 2
		return lipgloss.JoinVertical(lipgloss.Left,
			pane("On track", onTrack, m.onTrackSel, 0, m.width, top, "Nobody on track"),
			pane("Finishers", finishers, m.finisherSel, 1, m.width, height-top, "No finishers yet"),
		)
	}
	left := m.width / 2
	return lipgloss.JoinHorizontal(lipgloss.Top,
		pane("On track", onTrack, m.onTrackSel, 0, left, height, "Nobody on track"),
		pane("Finishers", finishers, m.finisherSel, 1, m.width-left, height, "No finishers yet"),
	)
}

// onTrackRow shows the running time since the start.
func (m Model) onTrackRow(r race.Racer) listRow {
	elapsed := m.now.Sub(r.StartTime.Time)
	text := fmt.Sprintf("#%-4d %-28s %s", r.RacerNo, r.FullName(), race.FormatClock(elapsed))
	if m.width >= LayoutExtraWideWidth {
		text += "  from " + clockTime(r.StartTime)
	}
	status, label := racerStatus(r)
	return listRow{text: text, status: status, label: label}
}
