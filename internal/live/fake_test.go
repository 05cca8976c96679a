package live

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/five82/trackside/internal/race"
)

type storeCall struct {
	Kind   string // search, invoke, write
	Model  string
	Method string
	IDs    []int64
	Args   []any
	Values map[string]any
	Domain []race.Condition
}

// fakeStore answers searches from canned records keyed by a caller-supplied
// matcher and records every call.
type fakeStore struct {
	mu      sync.Mutex
	calls   []storeCall
	search  func(model string, domain []race.Condition, opts race.SearchOptions) (any, error)
	invoke  map[string]error // method -> result
	writeFn func(values map[string]any) error
}

func (f *fakeStore) Search(_ context.Context, model string, domain []race.Condition, _ []string, opts race.SearchOptions, dest any) error {
	f.mu.Lock()
	f.calls = append(f.calls, storeCall{Kind: "search", Model: model, Domain: domain})
	search := f.search
	f.mu.Unlock()

	var records any = []any{}
	if search != nil {
		got, err := search(model, domain, opts)
		if err != nil {
			return err
		}
		if got != nil {
			records = got
		}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeStore) Invoke(_ context.Context, model, method string, ids []int64, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, storeCall{Kind: "invoke", Model: model, Method: method, IDs: ids, Args: args})
	return f.invoke[method]
}

func (f *fakeStore) WriteFields(_ context.Context, model string, ids []int64, values map[string]any) error {
	f.mu.Lock()
	f.calls = append(f.calls, storeCall{Kind: "write", Model: model, IDs: ids, Values: values})
	fn := f.writeFn
	f.mu.Unlock()
	if fn != nil {
		return fn(values)
	}
	return nil
}

func (f *fakeStore) callsOf(kind string) []storeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storeCall
	for _, c := range f.calls {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeStore) searchCount(model string) int {
	n := 0
	for _, c := range f.callsOf("search") {
		if c.Model == model {
			n++
		}
	}
	return n
}

func hasCondition(domain []race.Condition, field, op string) (race.Condition, bool) {
	for _, c := range domain {
		if c.Field == field && c.Operator == op {
			return c, true
		}
	}
	return race.Condition{}, false
}

func remoteErr(msg string) error {
	return &race.RemoteError{Op: "call", Status: 200, Message: msg}
}
