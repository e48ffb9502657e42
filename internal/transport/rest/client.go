// Package rest is the HTTP side of the backend contract. Calls never
// panic and never surface transport failures as Go errors to callers:
// a network failure resolves to a Result with OK=false and Status 0,
// mirroring how the rest of the client treats connectivity problems as
// non-fatal.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HostCodeHeader carries the locally cached host credential. An absent
// header is not an error here; it simply yields 401/403 responses later.
const HostCodeHeader = "X-Host-Code"

const defaultTimeout = 30 * time.Second

// Client talks to the game backend's REST surface
type Client struct {
	baseURL    string
	wsBase     string
	http       *http.Client
	credential func() string
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides the default per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// WithCredential sets the host credential source, typically backed by the
// local store. It is consulted on every request.
func WithCredential(source func() string) Option {
	return func(c *Client) {
		c.credential = source
	}
}

// WithWSBase overrides the event channel origin. Without it the channel
// origin is derived from the API base URL.
func WithWSBase(base string) Option {
	return func(c *Client) {
		c.wsBase = strings.TrimSuffix(base, "/")
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the uniform outcome of a backend call. OK is true for 2xx
// responses; Status 0 with a non-empty Err means the request never got a
// response at all.
type Result struct {
	OK     bool
	Status int
	Data   json.RawMessage // JSON response body, when the backend sent one
	Body   string          // non-JSON response body
	Err    string          // transport-level failure message
}

// Decode unmarshals the JSON response body into v
func (r *Result) Decode(v any) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("no JSON body (status %d)", r.Status)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Gone reports a 404, which on session-scoped endpoints means the room no
// longer exists.
func (r *Result) Gone() bool {
	return r.Status == http.StatusNotFound
}

// Unauthorized reports a 401 or 403, the backend rejecting the host code
func (r *Result) Unauthorized() bool {
	return r.Status == http.StatusUnauthorized || r.Status == http.StatusForbidden
}

// Message extracts a human-readable failure string from the result
func (r *Result) Message() string {
	if r.Err != "" {
		return r.Err
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if len(r.Data) > 0 && json.Unmarshal(r.Data, &body) == nil {
		for _, msg := range []string{body.Error, body.Message, body.Detail} {
			if msg != "" {
				return msg
			}
		}
	}
	if r.Body != "" {
		return r.Body
	}
	return http.StatusText(r.Status)
}

func failure(err error) *Result {
	return &Result{OK: false, Status: 0, Err: err.Error()}
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, extra http.Header) *Result {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return failure(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.credential != nil {
		if code := c.credential(); code != "" {
			req.Header.Set(HostCodeHeader, code)
		}
	}
	for key, values := range extra {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return failure(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(err)
	}

	result := &Result{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		result.Data = raw
	} else {
		result.Body = string(raw)
	}

	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return result
}

func (c *Client) getJSON(ctx context.Context, path string) *Result {
	return c.do(ctx, http.MethodGet, path, "", nil, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) *Result {
	raw, err := json.Marshal(body)
	if err != nil {
		return failure(err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(raw), nil)
}

func (c *Client) delete(ctx context.Context, path string) *Result {
	return c.do(ctx, http.MethodDelete, path, "", nil, nil)
}

// WSURL derives the event channel URL for path from the configured
// backend origin, falling back on the API origin with its scheme flipped
// to ws/wss.
func (c *Client) WSURL(path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	base := c.wsBase
	if base == "" {
		base = c.baseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse backend origin: %w", err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String(), nil
}
