package race

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Model names on the remote store.
const (
	ModelRacer      = "salezrace.racer"
	ModelPauseLog   = "salezrace.pause.log"
	ModelCheckpoint = "salezrace.checkpoint"
)

// Store is the narrow contract the live views consume from the remote store.
// *Client implements it over HTTP; tests substitute in-memory fakes.
type Store interface {
	// Search reads records matching every condition and decodes them into
	// dest, which must be a pointer to a slice.
	Search(ctx context.Context, model string, domain []Condition, fields []string, opts SearchOptions, dest any) error
	// Invoke runs a named remote action on the given records.
	Invoke(ctx context.Context, model, method string, ids []int64, args ...any) error
	// WriteFields writes field values directly on the given records.
	WriteFields(ctx context.Context, model string, ids []int64, values map[string]any) error
}

// Condition is one (field, operator, value) term of a search domain. All
// conditions of a domain are combined with AND.
type Condition struct {
	Field    string
	Operator string
	Value    any
}

// Cond builds a Condition.
func Cond(field, operator string, value any) Condition {
	return Condition{Field: field, Operator: operator, Value: value}
}

// MarshalJSON encodes the condition as a [field, op, value] triple.
func (c Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Field, c.Operator, c.Value})
}

// SearchOptions controls ordering and size of a search result.
type SearchOptions struct {
	Order string // e.g. "start_time asc, id asc"
	Limit int    // zero means unbounded
}

// RemoteError reports any failed search, invoke or write: a transport fault
// or a rejection by the store's domain rules. Callers do not distinguish.
type RemoteError struct {
	Op      string
	Status  int // HTTP status; zero for transport failures
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s returned status %d", e.Op, e.Status)
	default:
		return e.Op + " failed"
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRemote reports whether err came from the remote store.
func IsRemote(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote)
}

// Message returns the store's own message for err when it carries one,
// otherwise fallback.
func Message(err error, fallback string) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	if err != nil && fallback == "" {
		return err.Error()
	}
	return fallback
}
