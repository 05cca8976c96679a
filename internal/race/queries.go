package race

import (
	"context"
	"fmt"
)

// Remote actions on salezrace.racer.
const (
	ActionStart          = "action_start"
	ActionFinishNow      = "action_finish_now"
	ActionPauseStart     = "action_pause_start"
	ActionPauseEnd       = "action_pause_end"
	ActionInvalidateLogs = "action_invalidate_logs"
	ActionCustomTime     = "action_custom_time"
)

// Field sets requested per view.
var (
	pauseRacerFields  = []string{"id", "racer_no", "first_name", "last_name", "active_pause_log_id"}
	trackRacerFields  = []string{"id", "racer_no", "first_name", "last_name", "age", "gender", "start_time"}
	finishRacerFields = []string{"id", "racer_no", "first_name", "last_name", "age", "gender", "start_time", "finish_time", "final_time"}
	lookupRacerFields = []string{"id", "first_name", "last_name", "age", "gender", "category", "racer_no", "start_time"}
	listRacerFields   = []string{"id", "racer_no", "first_name", "last_name", "start_time"}
	boardRacerFields  = []string{"id", "age", "gender", "first_name", "last_name", "final_time", "category"}
	pauseLogFields    = []string{"racer_id", "start_time", "end_time"}
	checkpointFields  = []string{"id", "name"}
)

const listLimit = 10

func onTrackDomain() []Condition {
	return []Condition{Cond("start_time", "!=", false), Cond("finish_time", "=", false)}
}

// Checkpoints lists checkpoints in course order.
func Checkpoints(ctx context.Context, s Store) ([]Checkpoint, error) {
	var out []Checkpoint
	if err := s.Search(ctx, ModelCheckpoint, nil, checkpointFields, SearchOptions{Order: "sequence"}, &out); err != nil {
		return nil, fmt.Errorf("fetch checkpoints: %w", err)
	}
	return out, nil
}

// PauseCandidates lists on-track racers with their active pause reference.
func PauseCandidates(ctx context.Context, s Store) ([]Racer, error) {
	var out []Racer
	if err := s.Search(ctx, ModelRacer, onTrackDomain(), pauseRacerFields, SearchOptions{Order: "start_time asc, id asc"}, &out); err != nil {
		return nil, fmt.Errorf("fetch on-track racers: %w", err)
	}
	return out, nil
}

// OnTrack lists racers that started and have not finished.
func OnTrack(ctx context.Context, s Store) ([]Racer, error) {
	var out []Racer
	if err := s.Search(ctx, ModelRacer, onTrackDomain(), trackRacerFields, SearchOptions{Order: "start_time asc, id asc"}, &out); err != nil {
		return nil, fmt.Errorf("fetch on-track racers: %w", err)
	}
	return out, nil
}

// Finishers lists racers with a finish time, latest first.
func Finishers(ctx context.Context, s Store) ([]Racer, error) {
	domain := []Condition{Cond("start_time", "!=", false), Cond("finish_time", "!=", false)}
	var out []Racer
	if err := s.Search(ctx, ModelRacer, domain, finishRacerFields, SearchOptions{Order: "finish_time desc, id desc"}, &out); err != nil {
		return nil, fmt.Errorf("fetch finishers: %w", err)
	}
	return out, nil
}

// PauseLogs lists valid pause intervals of the given racers at a checkpoint.
func PauseLogs(ctx context.Context, s Store, racerIDs []int64, checkpointID int64) ([]PauseLog, error) {
	if racerIDs == nil {
		racerIDs = []int64{}
	}
	domain := []Condition{
		Cond("racer_id", "in", racerIDs),
		Cond("checkpoint_id", "=", checkpointID),
		Cond("is_invalid", "=", false),
	}
	var out []PauseLog
	if err := s.Search(ctx, ModelPauseLog, domain, pauseLogFields, SearchOptions{}, &out); err != nil {
		return nil, fmt.Errorf("fetch pause logs: %w", err)
	}
	return out, nil
}

// RacerByNumber finds the racer carrying a race number. It returns nil when
// none matches.
func RacerByNumber(ctx context.Context, s Store, racerNo int) (*Racer, error) {
	var out []Racer
	domain := []Condition{Cond("racer_no", "=", racerNo)}
	if err := s.Search(ctx, ModelRacer, domain, lookupRacerFields, SearchOptions{Limit: 1}, &out); err != nil {
		return nil, fmt.Errorf("fetch racer #%d: %w", racerNo, err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// RecentlyStarted lists the last racers sent off.
func RecentlyStarted(ctx context.Context, s Store) ([]Racer, error) {
	var out []Racer
	domain := []Condition{Cond("start_time", "!=", false)}
	if err := s.Search(ctx, ModelRacer, domain, listRacerFields, SearchOptions{Order: "start_time desc", Limit: listLimit}, &out); err != nil {
		return nil, fmt.Errorf("fetch started racers: %w", err)
	}
	return out, nil
}

// NextToStart lists waiting racers by race number.
func NextToStart(ctx context.Context, s Store) ([]Racer, error) {
	var out []Racer
	domain := []Condition{Cond("start_time", "=", false)}
	if err := s.Search(ctx, ModelRacer, domain, listRacerFields, SearchOptions{Order: "racer_no asc", Limit: listLimit}, &out); err != nil {
		return nil, fmt.Errorf("fetch waiting racers: %w", err)
	}
	return out, nil
}

// Classified lists finished racers with a final time, fastest first.
func Classified(ctx context.Context, s Store) ([]Racer, error) {
	domain := []Condition{Cond("finish_time", "!=", false), Cond("final_time", "!=", false)}
	var out []Racer
	if err := s.Search(ctx, ModelRacer, domain, boardRacerFields, SearchOptions{Order: "final_time asc"}, &out); err != nil {
		return nil, fmt.Errorf("fetch classification: %w", err)
	}
	return out, nil
}

// Start records the racer's start at server time.
func Start(ctx context.Context, s Store, racerID int64) error {
	return s.Invoke(ctx, ModelRacer, ActionStart, []int64{racerID})
}

// FinishNow records the racer's finish at server time.
func FinishNow(ctx context.Context, s Store, racerID int64) error {
	return s.Invoke(ctx, ModelRacer, ActionFinishNow, []int64{racerID})
}

// PauseStart opens a pause for the racer at a checkpoint.
func PauseStart(ctx context.Context, s Store, racerID, checkpointID int64) error {
	return s.Invoke(ctx, ModelRacer, ActionPauseStart, []int64{racerID}, checkpointID)
}

// PauseEnd closes the racer's open pause.
func PauseEnd(ctx context.Context, s Store, racerID int64) error {
	return s.Invoke(ctx, ModelRacer, ActionPauseEnd, []int64{racerID})
}

// InvalidatePauses marks the racer's pauses at a checkpoint invalid.
func InvalidatePauses(ctx context.Context, s Store, racerID, checkpointID int64) error {
	return s.Invoke(ctx, ModelRacer, ActionInvalidateLogs, []int64{racerID}, checkpointID)
}

// SetCustomPause replaces the racer's pause total at a checkpoint.
func SetCustomPause(ctx context.Context, s Store, racerID, checkpointID int64, seconds int) error {
	return s.Invoke(ctx, ModelRacer, ActionCustomTime, []int64{racerID}, checkpointID, seconds)
}

// RevertStart clears the racer's start time.
func RevertStart(ctx context.Context, s Store, racerID int64) error {
	return s.WriteFields(ctx, ModelRacer, []int64{racerID}, map[string]any{"start_time": false})
}

// RevertFinish clears the racer's finish and final time.
func RevertFinish(ctx context.Context, s Store, racerID int64) error {
	return s.WriteFields(ctx, ModelRacer, []int64{racerID}, map[string]any{"finish_time": false, "final_time": false})
}
