package race

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Ensure Client implements Store at compile time.
var _ Store = (*Client)(nil)

// Client talks to the salezrace HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	sessionID string
}

const (
	defaultServer    = "127.0.0.1:8069"
	defaultUserAgent = "trackside/0.1"
	sessionHeader    = "X-Trackside-Session"
	requestTimeout   = 10 * time.Second
	maxErrorBody     = 64 * 1024
)

// NewClient builds a Client for the given host:port or URL.
func NewClient(server string) (*Client, error) {
	base, err := parseBaseURL(server)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		sessionID: uuid.NewString(),
	}, nil
}

// SessionID identifies this client instance to the store, which records it on
// pause logs it creates.
func (c *Client) SessionID() string {
	if c == nil {
		return ""
	}
	return c.sessionID
}

type searchRequest struct {
	Model  string      `json:"model"`
	Domain []Condition `json:"domain"`
	Fields []string    `json:"fields,omitempty"`
	Order  string      `json:"order,omitempty"`
	Limit  int         `json:"limit,omitempty"`
}

type callRequest struct {
	Model  string  `json:"model"`
	Method string  `json:"method"`
	IDs    []int64 `json:"ids"`
	Args   []any   `json:"args"`
}

type writeRequest struct {
	Model  string         `json:"model"`
	IDs    []int64        `json:"ids"`
	Values map[string]any `json:"values"`
}

// Search implements Store.
func (c *Client) Search(ctx context.Context, model string, domain []Condition, fields []string, opts SearchOptions, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if domain == nil {
		domain = []Condition{}
	}
	req := searchRequest{
		Model:  model,
		Domain: domain,
		Fields: fields,
		Order:  opts.Order,
		Limit:  opts.Limit,
	}
	var payload struct {
		Records json.RawMessage `json:"records"`
	}
	if err := c.post(ctx, "/api/search", req, &payload); err != nil {
		return err
	}
	if len(payload.Records) == 0 || dest == nil {
		return nil
	}
	if err := json.Unmarshal(payload.Records, dest); err != nil {
		return &RemoteError{Op: "search " + model, Err: fmt.Errorf("decode records: %w", err)}
	}
	return nil
}

// Invoke implements Store.
func (c *Client) Invoke(ctx context.Context, model, method string, ids []int64, args ...any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if args == nil {
		args = []any{}
	}
	return c.post(ctx, "/api/call", callRequest{Model: model, Method: method, IDs: ids, Args: args}, nil)
}

// WriteFields implements Store.
func (c *Client) WriteFields(ctx context.Context, model string, ids []int64, values map[string]any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.post(ctx, "/api/write", writeRequest{Model: model, IDs: ids, Values: values}, nil)
}

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	op := strings.TrimPrefix(path, "/api/")
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(sessionHeader, c.sessionID)

	resp, err := c.http.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody*16))
	if err != nil {
		return &RemoteError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode >= 400 {
		return &RemoteError{Op: op, Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	// A 200 response can still carry a rejected action.
	if e := gjson.GetBytes(raw, "error"); e.Exists() && e.Type != gjson.Null && e.Type != gjson.False {
		msg := errorMessage(raw)
		if msg == "" {
			msg = op + " rejected"
		}
		return &RemoteError{Op: op, Status: resp.StatusCode, Message: msg}
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &RemoteError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage digs the human-readable message out of an error body.
func errorMessage(raw []byte) string {
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	if gjson.ValidBytes(raw) {
		for _, path := range []string{"error.data.message", "error.message", "message", "error"} {
			if v := gjson.GetBytes(raw, path); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
				return strings.TrimSpace(v.String())
			}
		}
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func parseBaseURL(server string) (*url.URL, error) {
	trimmed := strings.TrimSpace(server)
	if trimmed == "" {
		trimmed = defaultServer
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server %q: %w", server, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
