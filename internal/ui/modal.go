package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmModal asks a yes/no question before a destructive action.
type confirmModal struct {
	title   string
	message string
	onYes   tea.Cmd
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(k, keys.Confirm):
		return c, c.onYes, true
	case key.Matches(k, keys.Cancel):
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := styles.Text.Bold(true).Render(c.title) + "\n\n" +
		styles.Text.Render(c.message) + "\n\n" +
		styles.AccentText.Render("enter/y") + styles.MutedText.Render(" confirm   ") +
		styles.AccentText.Render("esc/n") + styles.MutedText.Render(" cancel")
	return placeModal(theme, body, width, height, theme.Warning)
}

// customTimeModal edits the pause time of one racer. It stays open while
// the store call is in flight and after a rejection; the model closes it
// once the store accepts the value.
type customTimeModal struct {
	racerID    int64
	label      string
	input      textinput.Model
	err        string
	submitting bool

	submit func(id int64, seconds int) tea.Cmd
	cancel func(id int64) tea.Cmd
}

func newCustomTimeModal(id int64, label string, seconds int, submit func(int64, int) tea.Cmd, cancel func(int64) tea.Cmd) *customTimeModal {
	ti := textinput.New()
	ti.Placeholder = "mm:ss or seconds"
	ti.CharLimit = 8
	ti.SetValue(formatSeconds(seconds))
	ti.CursorEnd()
	ti.Focus()
	return &customTimeModal{racerID: id, label: label, input: ti, submit: submit, cancel: cancel}
}

func (c *customTimeModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return c, cmd, false
	}
	switch k.String() {
	case "esc":
		return c, c.cancel(c.racerID), true
	case "enter":
		if c.submitting {
			return c, nil, false
		}
		seconds, err := parseSeconds(c.input.Value())
		if err != nil {
			c.err = err.Error()
			return c, nil, false
		}
		c.err = ""
		c.submitting = true
		return c, c.submit(c.racerID, seconds), false
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd, false
}

// rejected reopens the editor for another attempt.
func (c *customTimeModal) rejected(message string) {
	c.submitting = false
	c.err = message
}

func (c *customTimeModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Custom pause time"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(c.label))
	b.WriteString("\n\n")
	b.WriteString(c.input.View())
	b.WriteString("\n\n")
	switch {
	case c.submitting:
		b.WriteString(styles.WarningText.Render("Saving..."))
	case c.err != "":
		b.WriteString(styles.DangerText.Render(c.err))
	default:
		b.WriteString(styles.AccentText.Render("enter") + styles.MutedText.Render(" save   ") +
			styles.AccentText.Render("esc") + styles.MutedText.Render(" cancel"))
	}
	return placeModal(theme, b.String(), width, height, theme.Accent)
}

func placeModal(theme Theme, body string, width, height int, border string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 2).
		Width(44).
		Render(body)
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// parseSeconds accepts "90", "1:30" or "01:30".
func parseSeconds(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("enter a time")
	}
	mins, secs, hasColon := strings.Cut(value, ":")
	if !hasColon {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q", value)
		}
		return n, nil
	}
	m, errM := strconv.Atoi(mins)
	s, errS := strconv.Atoi(secs)
	if errM != nil || errS != nil || m < 0 || s < 0 || s > 59 {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	return m*60 + s, nil
}

func formatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
