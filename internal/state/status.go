package state

import (
	"fmt"
	"time"

	"k8s.io/utils/clock"
)

// Status describes the health of a board's last refresh.
type Status struct {
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures
	Loaded              bool
}

// IsOffline returns true when the store has been unreachable for multiple polls.
func (s Status) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

func (s *Status) succeed(now time.Time) {
	s.LastError = nil
	s.LastUpdated = now
	s.ConsecutiveFailures = 0
	s.Loaded = true
}

func (s *Status) fail(err error, now time.Time) {
	s.LastError = err
	s.LastUpdated = now
	s.ConsecutiveFailures++
}

func (s Status) clone() Status {
	if s.LastError != nil {
		s.LastError = fmt.Errorf("%w", s.LastError)
	}
	return s
}

func nowFrom(clk clock.PassiveClock) time.Time {
	if clk == nil {
		return time.Now()
	}
	return clk.Now()
}
