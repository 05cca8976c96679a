package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/five82/trackside/internal/race"
	"github.com/five82/trackside/internal/state"
)

// renderHeader renders the logo, the view tabs and the state of the
// visible view's connection.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{bg.Render("trackside", styles.Logo)}
	if m.server != "" && m.width >= LayoutCompactWidth {
		parts = append(parts, bg.Render(m.server, styles.FaintText))
	}

	tabs := make([]string, 0, len(viewNames))
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if View(i) == m.currentView {
			tabs = append(tabs, bg.Render(label, styles.AccentText.Bold(true)))
		} else {
			tabs = append(tabs, bg.Render(label, styles.MutedText))
		}
	}
	parts = append(parts, bg.Join(tabs, "  "))

	if status, ok := m.viewStatus(); ok {
		parts = append(parts, m.formatStatus(status, styles, bg))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// viewStatus returns the board status of the visible view.
func (m Model) viewStatus() (state.Status, bool) {
	switch m.currentView {
	case ViewStart:
		return m.snaps.Start.Status, m.start != nil
	case ViewPause:
		return m.snaps.Pause.Status, m.pause != nil
	case ViewFinish:
		return m.snaps.Finish.Status, m.finish != nil
	case ViewDashboard:
		return m.snaps.Dashboard.Status, m.dashboard != nil
	}
	return state.Status{}, false
}

func (m Model) formatStatus(s state.Status, styles Styles, bg BgStyle) string {
	switch {
	case s.IsOffline():
		return bg.Render(classifyConnectionError(s.LastError), styles.DangerText.Bold(true)) + bg.Space() +
			bg.Render(fmt.Sprintf("Retrying (%d failures)", s.ConsecutiveFailures), styles.WarningText)
	case s.LastError != nil:
		return bg.Render("Retrying...", styles.WarningText.Bold(true))
	case !s.Loaded:
		return bg.Render("Connecting...", styles.WarningText.Bold(true))
	default:
		return bg.Render("● LIVE", styles.SuccessText) + bg.Space() +
			bg.Render(s.LastUpdated.Local().Format("15:04:05"), styles.MutedText)
	}
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	var remote *race.RemoteError
	if errors.As(err, &remote) && remote.Status > 0 && remote.Status != 200 {
		return fmt.Sprintf("HTTP %d", remote.Status)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewStart:
		if m.startFocus == focusInput {
			commands = []cmd{
				{"enter", "Look up/Start"},
				{"esc", "Lists"},
				{"F1-F5", "Views"},
			}
		} else {
			commands = []cmd{
				{"/", "Number"},
				{"j/k", "Navigate"},
				{"l", "Load"},
				{"r", "Revert start"},
				{"Tab", "Pane"},
			}
		}
	case ViewPause:
		commands = []cmd{
			{"Space", "Pause/Resume"},
			{"t", "Custom time"},
			{"x", "Invalidate"},
			{"c", "Checkpoint"},
			{"j/k", "Navigate"},
		}
	case ViewFinish:
		if m.finishPane == 0 {
			commands = []cmd{{"f", "Finish now"}, {"j/k", "Navigate"}, {"Tab", "Finishers"}}
		} else {
			commands = []cmd{{"r", "Revert finish"}, {"j/k", "Navigate"}, {"Tab", "On track"}}
		}
	case ViewDashboard:
		commands = []cmd{{"ctrl+r", "Refresh"}}
	case ViewLog:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"s", "Source"},
			{"g/G", "Top/Bottom"},
		}
	}
	commands = append(commands, cmd{"?", "More"})

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// renderStatusLine shows the newest notice.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if len(m.snaps.Notices) == 0 {
		return styles.Footer.Width(m.width).Render(bg.Render("Ready", styles.FaintText))
	}
	n := m.snaps.Notices[len(m.snaps.Notices)-1]
	style := styles.InfoText
	switch {
	case n.Level >= slog.LevelError:
		style = styles.DangerText
	case n.Level >= slog.LevelWarn:
		style = styles.WarningText
	}
	text := bg.Render(n.Time.Local().Format("15:04:05"), styles.FaintText) + bg.Space() +
		bg.Render(truncate(n.Message, max(m.width-14, 10)), style)
	return styles.Footer.Width(m.width).Render(text)
}
