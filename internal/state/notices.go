package state

import (
	"log/slog"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// MaxNotices bounds the notice history.
const MaxNotices = 50

// Notice is a message shown to the operator.
type Notice struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// Notices keeps the most recent notices, oldest first.
type Notices struct {
	clk clock.PassiveClock

	mu    sync.RWMutex
	items []Notice
}

// NewNotices creates an empty history. A nil clk uses the wall clock.
func NewNotices(clk clock.PassiveClock) *Notices {
	return &Notices{clk: clk}
}

// Push appends a notice, dropping the oldest beyond MaxNotices.
func (n *Notices) Push(level slog.Level, message string) {
	notice := Notice{Time: nowFrom(n.clk), Level: level, Message: message}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, notice)
	if over := len(n.items) - MaxNotices; over > 0 {
		n.items = append([]Notice(nil), n.items[over:]...)
	}
}

// Latest returns the newest notice.
func (n *Notices) Latest() (Notice, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if len(n.items) == 0 {
		return Notice{}, false
	}
	return n.items[len(n.items)-1], true
}

// All returns a copy of the history.
func (n *Notices) All() []Notice {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if len(n.items) == 0 {
		return nil
	}
	dup := make([]Notice, len(n.items))
	copy(dup, n.items)
	return dup
}
