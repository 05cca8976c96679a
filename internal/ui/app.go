package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/trackside/internal/prefs"
	"github.com/five82/trackside/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewStart View = iota
	ViewPause
	ViewFinish
	ViewDashboard
	ViewLog
)

var viewNames = []string{"start", "pause", "finish", "dashboard", "log"}

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// ParseView maps a stored view name back to a View, defaulting to start.
func ParseView(name string) View {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range viewNames {
		if n == name {
			return View(i)
		}
	}
	return ViewStart
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Pause     PauseStream
	Start     StartStream
	Finish    FinishStream
	Dashboard DashboardStream
	Notices   *state.Notices

	// Activate is called whenever the visible view changes so the caller
	// can move the poll drivers.
	Activate func(View)

	View       View
	LogPath    string
	Server     string
	ThemeName  string
	PrefsPath  string
	Prefs      prefs.Prefs
	RenderTick time.Duration
}

// startFocus is the focused element of the start view.
type startFocus int

const (
	focusInput startFocus = iota
	focusRecent
	focusNext
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	pause      PauseStream
	start      StartStream
	finish     FinishStream
	dashboard  DashboardStream
	notices    *state.Notices
	activate   func(View)
	prefsPath  string
	prefs      prefs.Prefs
	logPath    string
	server     string
	renderTick time.Duration
	keys       keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	now         time.Time

	// Data state
	snaps snapshots

	// Start view
	startInput textinput.Model
	startFocus startFocus
	recentSel  int
	nextSel    int

	// Pause view
	pauseSel int

	// Finish view
	finishPane int // 0 = on track, 1 = finishers
	onTrackSel int
	finisherSel int

	// Log view
	logViewport viewport.Model
	logState    logState

	// Overlays
	showHelp bool
	modal    Modal
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	renderTick := opts.RenderTick
	if renderTick <= 0 {
		renderTick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = opts.Prefs.Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ti := textinput.New()
	ti.Placeholder = "Racer no."
	ti.CharLimit = 6
	ti.Prompt = "# "

	m := Model{
		ctx:         ctx,
		pause:       opts.Pause,
		start:       opts.Start,
		finish:      opts.Finish,
		dashboard:   opts.Dashboard,
		notices:     opts.Notices,
		activate:    opts.Activate,
		prefsPath:   prefsPath,
		prefs:       opts.Prefs,
		logPath:     opts.LogPath,
		server:      opts.Server,
		renderTick:  renderTick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: opts.View,
		now:         time.Now(),
		startInput:  ti,
		logState:    logState{source: logSourceNotices, follow: true},
	}
	if m.currentView == ViewStart {
		m.startInput.Focus()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.renderTick),
		m.fetchSnapshotsCmd(),
		textinput.Blink,
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotsMsg:
		m.snaps = snapshots(msg)
		m.clampSelections()
		m.updateLogViewport()
		return m, nil

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	if m.currentView == ViewStart && m.startFocus == focusInput {
		var cmd tea.Cmd
		m.startInput, cmd = m.startInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}

	// The racer number input swallows printable keys; only F-keys, esc,
	// tab, enter and ctrl+r reach the rest of the key map.
	if m.currentView == ViewStart && m.startFocus == focusInput {
		return m.handleStartInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.logState.rendered = false
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCurrentCmd()
	}

	if v, ok := m.viewForKey(msg); ok {
		return m.switchView(v)
	}

	switch m.currentView {
	case ViewStart:
		return m.handleStartKey(msg)
	case ViewPause:
		return m.handlePauseKey(msg)
	case ViewFinish:
		return m.handleFinishKey(msg)
	case ViewLog:
		return m.handleLogKey(msg)
	}

	return m, nil
}

func (m Model) viewForKey(msg tea.KeyMsg) (View, bool) {
	switch {
	case key.Matches(msg, m.keys.ViewStart):
		return ViewStart, true
	case key.Matches(msg, m.keys.ViewPause):
		return ViewPause, true
	case key.Matches(msg, m.keys.ViewFinish):
		return ViewFinish, true
	case key.Matches(msg, m.keys.ViewDashboard):
		return ViewDashboard, true
	case key.Matches(msg, m.keys.ViewLog):
		return ViewLog, true
	}
	return 0, false
}

// switchView makes v visible, moves the drivers and remembers the choice.
func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	if v == m.currentView {
		return m, nil
	}
	m.currentView = v
	if m.activate != nil {
		m.activate(v)
	}
	m.prefs.View = v.String()
	m.savePrefs()

	var cmds []tea.Cmd
	switch v {
	case ViewStart:
		m.startFocus = focusInput
		cmds = append(cmds, m.startInput.Focus())
	case ViewLog:
		m.updateLogViewport()
		cmds = append(cmds, m.refreshLogs())
	default:
		m.startInput.Blur()
	}
	cmds = append(cmds, m.fetchSnapshotsCmd())
	return m, tea.Batch(cmds...)
}

func (m *Model) savePrefs() {
	if m.prefsPath != "" {
		_ = prefs.Save(m.prefsPath, m.prefs)
	}
}

// handleTick processes the render tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.now = now
	cmds := []tea.Cmd{m.fetchSnapshotsCmd()}

	if m.currentView == ViewLog && m.logState.source == logSourceFile && m.logState.follow &&
		now.Sub(m.logState.lastRefresh) >= LogRefreshInterval {
		m.logState.lastRefresh = now
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, tickCmd(m.renderTick))
	return m, tea.Batch(cmds...)
}

// handleActionDone closes or reopens modals waiting on a store call and
// pulls fresh snapshots. Failures are already in the notice history.
func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if ct, ok := m.modal.(*customTimeModal); ok && msg.action == actionCustomTime {
		if msg.err != nil {
			ct.rejected(errorText(msg.err, "Failed to save custom time."))
		} else {
			m.modal = nil
		}
	}
	return m, m.fetchSnapshotsCmd()
}

// clampSelections keeps list selections inside the current snapshots.
func (m *Model) clampSelections() {
	m.recentSel = clampIndex(m.recentSel, len(m.snaps.Start.Recent))
	m.nextSel = clampIndex(m.nextSel, len(m.snaps.Start.Next))
	m.pauseSel = clampIndex(m.pauseSel, len(m.snaps.Pause.Rows))
	m.onTrackSel = clampIndex(m.onTrackSel, len(m.snaps.Finish.OnTrack))
	m.finisherSel = clampIndex(m.finisherSel, len(m.snaps.Finish.Finishers))
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// moveSelection applies the navigation keys to sel over n rows.
func (m Model) moveSelection(msg tea.KeyMsg, sel, n int) (int, bool) {
	switch {
	case key.Matches(msg, m.keys.Up):
		return clampIndex(sel-1, n), true
	case key.Matches(msg, m.keys.Down):
		return clampIndex(sel+1, n), true
	case key.Matches(msg, m.keys.Top):
		return 0, true
	case key.Matches(msg, m.keys.Bottom):
		return clampIndex(n-1, n), true
	}
	return sel, false
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	b.WriteString(m.renderContent())
	b.WriteString("\n")

	b.WriteString(m.renderStatusLine())

	return b.String()
}

// contentHeight is the height left for the active view.
func (m Model) contentHeight() int {
	return max(m.height-chromeHeight, 3)
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewStart:
		return m.renderStart()
	case ViewPause:
		return m.renderPause()
	case ViewFinish:
		return m.renderFinish()
	case ViewDashboard:
		return m.renderDashboard()
	case ViewLog:
		return m.renderLogs()
	default:
		return ""
	}
}

// Messages

type tickMsg time.Time

type snapshots struct {
	Pause     state.PauseSnapshot
	Start     state.StartSnapshot
	Finish    state.FinishSnapshot
	Dashboard state.DashboardSnapshot
	Notices   []state.Notice
}

type snapshotsMsg snapshots

// actionDoneMsg reports the end of an operator action.
type actionDoneMsg struct {
	action string
	err    error
}

// Action names carried by actionDoneMsg.
const (
	actionStart        = "start"
	actionRevertStart  = "revert_start"
	actionPause        = "pause"
	actionInvalidate   = "invalidate"
	actionCustomTime   = "custom_time"
	actionCheckpoint   = "checkpoint"
	actionFinish       = "finish"
	actionRevertFinish = "revert_finish"
	actionRefresh      = "refresh"
	actionLookup       = "lookup"
)

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchSnapshotsCmd copies every board. Snapshots are cheap copies taken
// under each board's read lock.
func (m Model) fetchSnapshotsCmd() tea.Cmd {
	pause, start, finish, dashboard, notices := m.pause, m.start, m.finish, m.dashboard, m.notices
	return func() tea.Msg {
		var s snapshots
		if pause != nil {
			s.Pause = pause.Snapshot()
		}
		if start != nil {
			s.Start = start.Snapshot()
		}
		if finish != nil {
			s.Finish = finish.Snapshot()
		}
		if dashboard != nil {
			s.Dashboard = dashboard.Snapshot()
		}
		if notices != nil {
			s.Notices = notices.All()
		}
		return snapshotsMsg(s)
	}
}

// actionCmd runs fn off the UI goroutine with a bounded context.
func (m Model) actionCmd(action string, fn func(ctx context.Context) error) tea.Cmd {
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, actionTimeout)
		defer cancel()
		return actionDoneMsg{action: action, err: fn(ctx)}
	}
}

// refreshCurrentCmd forces a refresh of the visible view's stream.
func (m Model) refreshCurrentCmd() tea.Cmd {
	var refresher interface {
		TriggerManualRefresh(context.Context) bool
	}
	switch m.currentView {
	case ViewStart:
		if m.start != nil {
			refresher = m.start
		}
	case ViewPause:
		if m.pause != nil {
			refresher = m.pause
		}
	case ViewFinish:
		if m.finish != nil {
			refresher = m.finish
		}
	case ViewDashboard:
		if m.dashboard != nil {
			refresher = m.dashboard
		}
	case ViewLog:
		return m.refreshLogs()
	}
	if refresher == nil {
		return nil
	}
	return m.actionCmd(actionRefresh, func(ctx context.Context) error {
		refresher.TriggerManualRefresh(ctx)
		return nil
	})
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
