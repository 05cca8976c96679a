package race

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// storeTimestampLayout is how the store serializes datetimes (always UTC).
const storeTimestampLayout = "2006-01-02 15:04:05"

var jsonFalse = []byte("false")

// Text is a char field. The store sends false for unset values.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	if isUnset(data) {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode text: %w", err)
	}
	*t = Text(s)
	return nil
}

// Datetime is a datetime field; the zero value means unset.
type Datetime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Datetime) UnmarshalJSON(data []byte) error {
	if isUnset(data) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode datetime: %w", err)
	}
	d.Time = ParseTime(s)
	return nil
}

// MarshalJSON writes the store layout, or false when unset.
func (d Datetime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return jsonFalse, nil
	}
	return json.Marshal(d.UTC().Format(storeTimestampLayout))
}

// Set reports whether the datetime carries a value.
func (d Datetime) Set() bool {
	return !d.IsZero()
}

// Many2One is a reference to another record, sent as [id, "display name"].
type Many2One struct {
	ID   int64
	Name string
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Many2One) UnmarshalJSON(data []byte) error {
	*m = Many2One{}
	if isUnset(data) {
		return nil
	}
	// Some endpoints send a bare id instead of the pair.
	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		m.ID = id
		return nil
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode many2one: %w", err)
	}
	if len(pair) == 0 {
		return nil
	}
	if err := json.Unmarshal(pair[0], &m.ID); err != nil {
		return fmt.Errorf("decode many2one id: %w", err)
	}
	if len(pair) > 1 {
		_ = json.Unmarshal(pair[1], &m.Name)
	}
	return nil
}

// MarshalJSON writes [id, name], or false when unset.
func (m Many2One) MarshalJSON() ([]byte, error) {
	if m.ID == 0 {
		return jsonFalse, nil
	}
	return json.Marshal([]any{m.ID, m.Name})
}

// Set reports whether the reference points at a record.
func (m Many2One) Set() bool {
	return m.ID != 0
}

// Racer mirrors a salezrace.racer record.
type Racer struct {
	ID               int64    `json:"id"`
	RacerNo          int      `json:"racer_no"`
	FirstName        Text     `json:"first_name"`
	LastName         Text     `json:"last_name"`
	Age              int      `json:"age"`
	Gender           Text     `json:"gender"`
	Category         Text     `json:"category"`
	StartTime        Datetime `json:"start_time"`
	FinishTime       Datetime `json:"finish_time"`
	FinalTime        Text     `json:"final_time"`
	ActivePauseLogID Many2One `json:"active_pause_log_id"`
}

// Key returns the record id.
func (r Racer) Key() int64 {
	return r.ID
}

// FullName joins first and last name.
func (r Racer) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(string(r.FirstName)) + " " + strings.TrimSpace(string(r.LastName)))
}

// DisplayName renders "First Last (#no)".
func (r Racer) DisplayName() string {
	return fmt.Sprintf("%s (#%d)", r.FullName(), r.RacerNo)
}

// OnTrack reports whether the racer started and has not finished.
func (r Racer) OnTrack() bool {
	return r.StartTime.Set() && !r.FinishTime.Set()
}

// Paused reports whether the store holds an open pause for the racer.
func (r Racer) Paused() bool {
	return r.ActivePauseLogID.Set()
}

// FinalDisplay returns the server-computed final time, falling back to
// mm:ss derived from the start and finish timestamps.
func (r Racer) FinalDisplay() string {
	if strings.TrimSpace(string(r.FinalTime)) != "" {
		return string(r.FinalTime)
	}
	var diff time.Duration
	if r.StartTime.Set() && r.FinishTime.Set() {
		diff = r.FinishTime.Sub(r.StartTime.Time)
	}
	return FormatClock(diff)
}

// PauseLog mirrors a salezrace.pause.log record.
type PauseLog struct {
	ID           int64    `json:"id"`
	RacerID      Many2One `json:"racer_id"`
	CheckpointID Many2One `json:"checkpoint_id"`
	StartTime    Datetime `json:"start_time"`
	EndTime      Datetime `json:"end_time"`
}

// Duration returns the interval length when both endpoints are present.
func (p PauseLog) Duration() (time.Duration, bool) {
	if !p.StartTime.Set() || !p.EndTime.Set() {
		return 0, false
	}
	return p.EndTime.Sub(p.StartTime.Time), true
}

// PauseTotals sums closed pause intervals per racer. Open intervals are
// ignored; overlapping intervals are summed as-is.
func PauseTotals(logs []PauseLog) map[int64]time.Duration {
	totals := make(map[int64]time.Duration)
	for _, log := range logs {
		d, ok := log.Duration()
		if !ok {
			continue
		}
		totals[log.RacerID.ID] += d
	}
	return totals
}

// Checkpoint mirrors a salezrace.checkpoint record.
type Checkpoint struct {
	ID       int64 `json:"id"`
	Name     Text  `json:"name"`
	Sequence int   `json:"sequence"`
}

// FormatClock renders a duration as mm:ss, clamping negatives to zero.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// ParseTime parses the store layout (UTC) and RFC3339 variants.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	if t, err := time.ParseInLocation(storeTimestampLayout, value, time.UTC); err == nil {
		return t
	}
	return time.Time{}
}

func isUnset(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, jsonFalse) || bytes.Equal(trimmed, []byte("null"))
}
