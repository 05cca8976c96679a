package race

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultServer {
		t.Fatalf("host = %q, want %q", u.Host, defaultServer)
	}

	u, err = parseBaseURL("https://race.example.com:8443/web?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_SearchEncodesDomainAndDecodesRecords(t *testing.T) {
	t.Parallel()

	var got map[string]json.RawMessage
	var gotUserAgent, gotSession string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		gotUserAgent = r.Header.Get("User-Agent")
		gotSession = r.Header.Get(sessionHeader)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"records":[
			{"id":7,"racer_no":12,"first_name":"Ana","last_name":"Kos","start_time":"2025-06-01 09:00:00","finish_time":false,"active_pause_log_id":[31,"Pause 31"]},
			{"id":8,"racer_no":13,"first_name":"Ivo","last_name":false,"start_time":"2025-06-01 09:00:05","finish_time":false,"active_pause_log_id":false}
		]}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	racers, err := PauseCandidates(ctx, c)
	if err != nil {
		t.Fatalf("PauseCandidates returned error: %v", err)
	}
	if len(racers) != 2 {
		t.Fatalf("racers = %#v, want 2", racers)
	}
	if racers[0].ID != 7 || racers[0].ActivePauseLogID.ID != 31 || !racers[0].Paused() {
		t.Fatalf("racer[0] = %#v, want id 7 paused by log 31", racers[0])
	}
	if racers[1].LastName != "" || racers[1].Paused() {
		t.Fatalf("racer[1] = %#v, want empty last name and no pause", racers[1])
	}
	wantStart := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	if !racers[0].StartTime.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", racers[0].StartTime, wantStart)
	}

	if string(got["model"]) != `"salezrace.racer"` {
		t.Fatalf("model = %s, want salezrace.racer", got["model"])
	}
	if string(got["domain"]) != `[["start_time","!=",false],["finish_time","=",false]]` {
		t.Fatalf("domain = %s", got["domain"])
	}
	if string(got["order"]) != `"start_time asc, id asc"` {
		t.Fatalf("order = %s", got["order"])
	}
	if _, ok := got["limit"]; ok {
		t.Fatalf("limit should be omitted when zero, got %s", got["limit"])
	}
	if !strings.HasPrefix(gotUserAgent, "trackside/") {
		t.Fatalf("User-Agent = %q, want trackside/*", gotUserAgent)
	}
	if gotSession == "" || gotSession != c.SessionID() {
		t.Fatalf("session header = %q, want %q", gotSession, c.SessionID())
	}
}

func TestClient_InvokeAndWriteBodies(t *testing.T) {
	t.Parallel()

	bodies := map[string]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&raw)
		bodies[r.URL.Path] = string(raw)
		_, _ = w.Write([]byte(`{"result":true}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	if err := PauseStart(ctx, c, 7, 3); err != nil {
		t.Fatalf("PauseStart returned error: %v", err)
	}
	if got, want := bodies["/api/call"], `{"model":"salezrace.racer","method":"action_pause_start","ids":[7],"args":[3]}`; got != want {
		t.Fatalf("call body = %s, want %s", got, want)
	}

	if err := FinishNow(ctx, c, 9); err != nil {
		t.Fatalf("FinishNow returned error: %v", err)
	}
	if got, want := bodies["/api/call"], `{"model":"salezrace.racer","method":"action_finish_now","ids":[9],"args":[]}`; got != want {
		t.Fatalf("call body = %s, want %s", got, want)
	}

	if err := RevertFinish(ctx, c, 9); err != nil {
		t.Fatalf("RevertFinish returned error: %v", err)
	}
	if got, want := bodies["/api/write"], `{"model":"salezrace.racer","ids":[9],"values":{"final_time":false,"finish_time":false}}`; got != want {
		t.Fatalf("write body = %s, want %s", got, want)
	}
}

func TestClient_ErrorsAreRemoteErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/call":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Odoo Server Error","data":{"message":"This racer has already started."}}}`))
		case "/api/write":
			_, _ = w.Write([]byte(`{"error":{"message":"Access denied"}}`))
		case "/api/search":
			http.Error(w, "upstream down", http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	err = Start(ctx, c, 1)
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Start error = %v, want *RemoteError", err)
	}
	if remote.Status != http.StatusBadRequest || remote.Message != "This racer has already started." {
		t.Fatalf("RemoteError = %#v, want 400 with data message", remote)
	}

	err = RevertStart(ctx, c, 1)
	if Message(err, "") != "Access denied" {
		t.Fatalf("RevertStart error = %v, want Access denied", err)
	}

	_, err = Checkpoints(ctx, c)
	if !IsRemote(err) {
		t.Fatalf("Checkpoints error = %v, want remote error", err)
	}
	if !strings.Contains(err.Error(), "upstream down") {
		t.Fatalf("Checkpoints error = %q, want body text", err.Error())
	}
}

func TestClient_TransportFailureIsRemoteError(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	err = FinishNow(context.Background(), c, 1)
	if !IsRemote(err) {
		t.Fatalf("FinishNow error = %v, want remote error", err)
	}
	if got := Message(err, "Failed to finish racer."); got != "Failed to finish racer." {
		t.Fatalf("Message = %q, want fallback", got)
	}
}

func TestClient_RacerByNumberEmptyResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"records":[]}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	racer, err := RacerByNumber(context.Background(), c, 42)
	if err != nil {
		t.Fatalf("RacerByNumber returned error: %v", err)
	}
	if racer != nil {
		t.Fatalf("racer = %#v, want nil", racer)
	}
}
