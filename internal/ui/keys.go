package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	ForceQuit  key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Refresh    key.Binding
	Tab        key.Binding
	Escape     key.Binding

	// View switching
	ViewStart     key.Binding
	ViewPause     key.Binding
	ViewFinish    key.Binding
	ViewDashboard key.Binding
	ViewLog       key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Start actions
	FocusInput  key.Binding
	Submit      key.Binding
	LoadRacer   key.Binding
	RevertStart key.Binding

	// Pause actions
	TogglePause     key.Binding
	Invalidate      key.Binding
	CustomTime      key.Binding
	CycleCheckpoint key.Binding

	// Finish actions
	FinishNow    key.Binding
	RevertFinish key.Binding

	// Log actions
	ToggleFollow    key.Binding
	ToggleLogSource key.Binding

	// Modal
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "Refresh now"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Switch pane"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Leave input"),
		),

		// View switching; F-keys also work while typing a racer number.
		ViewStart: key.NewBinding(
			key.WithKeys("1", "f1"),
			key.WithHelp("1", "Start view"),
		),
		ViewPause: key.NewBinding(
			key.WithKeys("2", "f2"),
			key.WithHelp("2", "Pause view"),
		),
		ViewFinish: key.NewBinding(
			key.WithKeys("3", "f3"),
			key.WithHelp("3", "Finish view"),
		),
		ViewDashboard: key.NewBinding(
			key.WithKeys("4", "f4"),
			key.WithHelp("4", "Dashboard"),
		),
		ViewLog: key.NewBinding(
			key.WithKeys("5", "f5"),
			key.WithHelp("5", "Log view"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		// Start actions
		FocusInput: key.NewBinding(
			key.WithKeys("/", "i"),
			key.WithHelp("/", "Type racer number"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Look up / start"),
		),
		LoadRacer: key.NewBinding(
			key.WithKeys("l", "enter"),
			key.WithHelp("l", "Load selected racer"),
		),
		RevertStart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Revert start"),
		),

		// Pause actions
		TogglePause: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("Space", "Start/end pause"),
		),
		Invalidate: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Invalidate pauses"),
		),
		CustomTime: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Custom pause time"),
		),
		CycleCheckpoint: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Next checkpoint"),
		),

		// Finish actions
		FinishNow: key.NewBinding(
			key.WithKeys("f", "enter"),
			key.WithHelp("f", "Finish now"),
		),
		RevertFinish: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Revert finish"),
		),

		// Log actions
		ToggleFollow: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("Space", "Toggle follow mode"),
		),
		ToggleLogSource: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Notices/log file"),
		),

		// Modal
		Confirm: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("enter/y", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "n"),
			key.WithHelp("esc/n", "Cancel"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewStart, k.ViewPause, k.ViewFinish, k.ViewDashboard, k.ViewLog},
		{k.Up, k.Down, k.Top, k.Bottom, k.Tab},
		{k.FocusInput, k.Submit, k.LoadRacer, k.RevertStart},
		{k.TogglePause, k.Invalidate, k.CustomTime, k.CycleCheckpoint},
		{k.FinishNow, k.RevertFinish},
		{k.ToggleFollow, k.ToggleLogSource},
		{k.Refresh, k.CycleTheme, k.Help, k.Quit},
	}
}
