package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which panes stack vertically.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth is the threshold for showing extra columns.
	LayoutExtraWideWidth = 140
)

// Rows taken by the header, command bar and status line.
const chromeHeight = 3

// Log display limits.
const (
	// LogBufferLimit is the maximum number of log file lines kept in memory.
	LogBufferLimit = 2000
)

// Timing constants.
const (
	// LogRefreshInterval is the minimum time between log file reads while following.
	LogRefreshInterval = 2 * time.Second

	// DefaultUIInterval is the default render tick.
	DefaultUIInterval = 250 * time.Millisecond

	// actionTimeout bounds a single operator action against the store.
	actionTimeout = 15 * time.Second
)
