package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/trackside/internal/race"
)

// handleStartInputKey handles keys while the racer number input has focus.
func (m Model) handleStartInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyRunes {
		if v, ok := m.viewForKey(msg); ok {
			return m.switchView(v)
		}
	}

	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Tab):
		m.startInput.Blur()
		m.startFocus = focusRecent
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCurrentCmd()
	case key.Matches(msg, m.keys.Submit):
		return m, m.submitStartCmd()
	}

	before := m.startInput.Value()
	var cmd tea.Cmd
	m.startInput, cmd = m.startInput.Update(msg)
	if after := m.startInput.Value(); after != before && m.start != nil {
		m.start.OnInputChange(m.ctx, after)
	}
	return m, cmd
}

// submitStartCmd starts the loaded racer when the input still shows its
// number, otherwise it looks the input up right away.
func (m Model) submitStartCmd() tea.Cmd {
	if m.start == nil {
		return nil
	}
	s := m.start
	snap := m.snaps.Start
	input := strings.TrimSpace(m.startInput.Value())
	if snap.CanStart() && strconv.Itoa(snap.Racer.RacerNo) == input {
		return m.actionCmd(actionStart, s.StartRacer)
	}
	return m.actionCmd(actionLookup, func(ctx context.Context) error {
		s.SubmitLookup(ctx)
		return nil
	})
}

// handleStartKey handles keys while one of the start lists has focus.
func (m Model) handleStartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.snaps.Start

	switch {
	case key.Matches(msg, m.keys.FocusInput):
		m.startFocus = focusInput
		return m, m.startInput.Focus()

	case key.Matches(msg, m.keys.Tab):
		if m.startFocus == focusRecent {
			m.startFocus = focusNext
			return m, nil
		}
		m.startFocus = focusInput
		return m, m.startInput.Focus()

	case key.Matches(msg, m.keys.RevertStart):
		if m.startFocus != focusRecent || len(snap.Recent) == 0 || m.start == nil {
			return m, nil
		}
		racer := snap.Recent[m.recentSel]
		s := m.start
		m.modal = confirmModal{
			title:   "Revert start",
			message: fmt.Sprintf("Remove the start time of %s?", racer.DisplayName()),
			onYes: m.actionCmd(actionRevertStart, func(ctx context.Context) error {
				return s.RevertStart(ctx, racer.ID)
			}),
		}
		return m, nil

	case key.Matches(msg, m.keys.LoadRacer):
		list, sel := snap.Recent, m.recentSel
		if m.startFocus == focusNext {
			list, sel = snap.Next, m.nextSel
		}
		if len(list) == 0 || m.start == nil {
			return m, nil
		}
		no := list[sel].RacerNo
		s := m.start
		m.startInput.SetValue(strconv.Itoa(no))
		m.startFocus = focusInput
		return m, tea.Batch(m.startInput.Focus(), m.actionCmd(actionLookup, func(ctx context.Context) error {
			s.LoadRacer(ctx, no)
			return nil
		}))
	}

	switch m.startFocus {
	case focusRecent:
		m.recentSel, _ = m.moveSelection(msg, m.recentSel, len(snap.Recent))
	case focusNext:
		m.nextSel, _ = m.moveSelection(msg, m.nextSel, len(snap.Next))
	}
	return m, nil
}

// renderStart renders the racer card next to the recent and next lists.
func (m Model) renderStart() string {
	height := m.contentHeight()
	snap := m.snaps.Start

	if m.width < LayoutCompactWidth {
		cardHeight := min(9, height/3)
		listHeight := (height - cardHeight) / 2
		card := m.renderTitledBox("Start", m.renderRacerCard(m.width-2), m.width, cardHeight, m.startFocus == focusInput)
		recent := m.renderStartList("Recently started", snap.Recent, m.recentSel, focusRecent, m.width, listHeight)
		next := m.renderStartList("Next to start", snap.Next, m.nextSel, focusNext, m.width, height-cardHeight-listHeight)
		return lipgloss.JoinVertical(lipgloss.Left, card, recent, next)
	}

	leftWidth := m.width * 45 / 100
	rightWidth := m.width - leftWidth
	card := m.renderTitledBox("Start", m.renderRacerCard(leftWidth-2), leftWidth, height, m.startFocus == focusInput)
	top := height / 2
	recent := m.renderStartList("Recently started", snap.Recent, m.recentSel, focusRecent, rightWidth, top)
	next := m.renderStartList("Next to start", snap.Next, m.nextSel, focusNext, rightWidth, height-top)
	return lipgloss.JoinHorizontal(lipgloss.Top, card, lipgloss.JoinVertical(lipgloss.Left, recent, next))
}

func (m Model) renderRacerCard(width int) string {
	focused := m.startFocus == focusInput
	bg := NewBgStyle(m.paneBg(focused))
	styles := m.theme.Styles()
	snap := m.snaps.Start

	lines := []string{
		bg.FillLine(m.startInput.View(), width),
		bg.FillLine("", width),
	}
	add := func(text string, style lipgloss.Style) {
		lines = append(lines, bg.FillLine(bg.Render(text, style), width))
	}

	switch {
	case snap.Looking:
		add("Looking up...", styles.WarningText)
	case snap.LookupError != "":
		add(snap.LookupError, styles.DangerText)
	case snap.Racer != nil:
		r := *snap.Racer
		add(r.FullName(), styles.Text.Bold(true))
		details := []string{"#" + strconv.Itoa(r.RacerNo)}
		if cat := racerCategory(r); cat != "" {
			details = append(details, cat)
		}
		if r.Age > 0 {
			details = append(details, fmt.Sprintf("age %d", r.Age))
		}
		add(strings.Join(details, " · "), styles.MutedText)
		lines = append(lines, bg.FillLine("", width))
		status, label := racerStatus(r)
		stateStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForStatus(status))).Bold(true)
		switch {
		case snap.CanStart():
			add("Ready to start (enter)", styles.SuccessText)
		case r.StartTime.Set():
			add(label+" since "+clockTime(r.StartTime), stateStyle)
		default:
			add(label, stateStyle)
		}
	default:
		add("Type a racer number", styles.MutedText)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStartList(title string, racers []race.Racer, sel int, focus startFocus, width, height int) string {
	focused := m.startFocus == focus
	rows := make([]listRow, 0, len(racers))
	for _, r := range racers {
		status, label := racerStatus(r)
		text := fmt.Sprintf("#%-4d %s", r.RacerNo, r.FullName())
		if r.StartTime.Set() {
			text += "  " + clockTime(r.StartTime)
		}
		rows = append(rows, listRow{text: text, status: status, label: label})
	}
	if !focused {
		sel = -1
	}
	content := m.renderList(rows, sel, width-2, height-2, m.paneBg(focused), "Nobody here")
	return m.renderTitledBox(title, content, width, height, focused)
}

// racerStatus maps a racer to a StatusColors key and a short label.
func racerStatus(r race.Racer) (string, string) {
	switch {
	case r.FinishTime.Set():
		return statusFinished, "FINISHED"
	case r.Paused():
		return statusPaused, "PAUSED"
	case r.StartTime.Set():
		return statusOnTrack, "ON TRACK"
	default:
		return statusWaiting, "WAITING"
	}
}

func racerCategory(r race.Racer) string {
	if c := strings.TrimSpace(string(r.Category)); c != "" {
		return c
	}
	return race.CategoryFor(r.Age, string(r.Gender))
}

func clockTime(d race.Datetime) string {
	if !d.Set() {
		return "--:--:--"
	}
	return d.Local().Format("15:04:05")
}
