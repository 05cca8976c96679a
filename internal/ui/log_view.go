package ui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/trackside/internal/logtail"
	"github.com/five82/trackside/internal/state"
)

// logSource selects what the log view shows.
type logSource int

const (
	logSourceNotices logSource = iota
	logSourceFile
)

// logState holds all log-related state.
type logState struct {
	source      logSource
	follow      bool
	fileLines   []string
	fileErr     error
	lastRefresh time.Time

	// rendered is false when the viewport content must be rebuilt.
	rendered    bool
	noticeCount int
}

type logLinesMsg struct {
	lines []string
	err   error
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-2, 1), max(m.contentHeight()-2, 1))
	m.logViewport.Style = lipgloss.NewStyle()
}

// updateLogViewport resizes the viewport and rebuilds its content when the
// source changed.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	m.logViewport.Width = max(m.width-2, 1)
	m.logViewport.Height = max(m.contentHeight()-2, 1)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if m.logState.source == logSourceNotices && len(m.snaps.Notices) != m.logState.noticeCount {
		m.logState.noticeCount = len(m.snaps.Notices)
		m.logState.rendered = false
	}
	if !m.logState.rendered {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.rendered = true
	}
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	title := "Notices"
	if m.logState.source == logSourceFile {
		title = "Log " + truncateMiddle(m.logPath, max(m.width-20, 10))
	}
	return m.renderTitledBox(title, m.logViewport.View(), m.width, m.contentHeight(), true)
}

// renderLogContent renders every line of the active source.
func (m *Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.logViewport.Width

	var lines []string
	switch m.logState.source {
	case logSourceFile:
		if m.logState.fileErr != nil {
			return bg.FillLine(bg.Render("Cannot read log: "+m.logState.fileErr.Error(), styles.DangerText), width)
		}
		for _, e := range logtail.ParseLines(m.logState.fileLines) {
			lines = append(lines, bg.FillLine(m.formatLogEntry(e, styles, bg), width))
		}
	default:
		for _, n := range m.snaps.Notices {
			lines = append(lines, bg.FillLine(m.formatNotice(n, styles, bg), width))
		}
	}

	if len(lines) == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) formatNotice(n state.Notice, styles Styles, bg BgStyle) string {
	return bg.Render(n.Time.Local().Format("15:04:05"), styles.FaintText) + bg.Space() +
		bg.Render(padRight(n.Level.String(), 5), m.levelStyle(n.Level, styles).Bold(true)) + bg.Space() +
		bg.Render(n.Message, styles.Text)
}

// formatLogEntry colors one parsed slog record; lines that were not records
// are shown as they are.
func (m *Model) formatLogEntry(e logtail.Entry, styles Styles, bg BgStyle) string {
	if e.Time.IsZero() && e.Level == "" {
		return bg.Render(e.Message, styles.Text)
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(bg.Render(e.Time.Local().Format("15:04:05"), styles.FaintText))
		b.WriteString(bg.Space())
	}
	level := parseLogLevel(e.Level)
	b.WriteString(bg.Render(padRight(e.Level, 5), m.levelStyle(level, styles).Bold(true)))
	b.WriteString(bg.Space())
	b.WriteString(bg.Render(e.Message, styles.Text))
	for _, a := range e.Attrs {
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(a.Key+"=", styles.FaintText))
		b.WriteString(bg.Render(a.Value, styles.MutedText))
	}
	return b.String()
}

// levelStyle returns the style for a log level.
func (m *Model) levelStyle(level slog.Level, styles Styles) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return styles.DangerText
	case level >= slog.LevelWarn:
		return styles.WarningText
	case level >= slog.LevelInfo:
		return styles.SuccessText
	default:
		return styles.InfoText
	}
}

func parseLogLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// handleLogKey processes keyboard input for the log view.
func (m Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogSource):
		if m.logState.source == logSourceNotices {
			m.logState.source = logSourceFile
		} else {
			m.logState.source = logSourceNotices
		}
		m.logState.rendered = false
		m.updateLogViewport()
		return m, m.refreshLogs()

	case key.Matches(msg, m.keys.Bottom):
		m.logState.follow = true
		m.logViewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return m, nil
	}

	// Manual scrolling pauses follow mode
	var cmd tea.Cmd
	before := m.logViewport.YOffset
	m.logViewport, cmd = m.logViewport.Update(msg)
	if m.logViewport.YOffset < before {
		m.logState.follow = false
	}
	return m, cmd
}

// refreshLogs reads the log file tail off the UI goroutine.
func (m *Model) refreshLogs() tea.Cmd {
	if m.logState.source != logSourceFile || m.logPath == "" {
		return nil
	}
	path := m.logPath
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogBufferLimit)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.fileLines = msg.lines
	m.logState.fileErr = msg.err
	m.logState.rendered = false
	m.updateLogViewport()
}
