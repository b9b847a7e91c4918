// Package client talks to a running workclock server and keeps a locally
// interpolated view of its counters between syncs.
package client

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

	"github.com/blackwell-systems/workclock/internal/apperr"
	"github.com/blackwell-systems/workclock/internal/server"
	"github.com/blackwell-systems/workclock/internal/settings"
	"github.com/blackwell-systems/workclock/internal/store"
	"github.com/blackwell-systems/workclock/internal/tracker"
	"github.com/blackwell-systems/workclock/internal/usage"
)

// Client calls the workclock HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// BaseURL returns the server address the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Status fetches both session kinds with their projected totals.
func (c *Client) Status(ctx context.Context) (*tracker.Status, error) {
	var st tracker.Status
	if err := c.do(ctx, http.MethodGet, "/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

type sessionEnvelope struct {
	Session *store.Session `json:"session"`
}

// Start starts or resumes the manual session.
func (c *Client) Start(ctx context.Context) (*store.Session, error) {
	return c.sessionCall(ctx, "/start")
}

// Pause pauses the manual session.
func (c *Client) Pause(ctx context.Context) (*store.Session, error) {
	return c.sessionCall(ctx, "/pause")
}

// Stop completes the manual session.
func (c *Client) Stop(ctx context.Context) (*store.Session, error) {
	return c.sessionCall(ctx, "/stop")
}

func (c *Client) sessionCall(ctx context.Context, path string) (*store.Session, error) {
	var env sessionEnvelope
	if err := c.do(ctx, http.MethodPost, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Session, nil
}

// SendEvent posts a lock or unlock.
func (c *Client) SendEvent(ctx context.Context, event string) (*tracker.EventResult, error) {
	var res tracker.EventResult
	if err := c.do(ctx, http.MethodPost, "/event", server.EventRequest{Event: event}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Heartbeat reports foreground time for an application.
func (c *Client) Heartbeat(ctx context.Context, hb usage.Heartbeat) error {
	return c.do(ctx, http.MethodPost, "/heartbeat", hb, nil)
}

// AppUsage fetches today's per-app usage, largest first.
func (c *Client) AppUsage(ctx context.Context) ([]store.AppUsage, error) {
	var body struct {
		Usage []store.AppUsage `json:"usage"`
	}
	if err := c.do(ctx, http.MethodGet, "/app-usage", nil, &body); err != nil {
		return nil, err
	}
	return body.Usage, nil
}

// Categories fetches today's usage grouped by category.
func (c *Client) Categories(ctx context.Context) ([]usage.CategoryTotal, error) {
	var body struct {
		Categories []usage.CategoryTotal `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/app-usage-categories", nil, &body); err != nil {
		return nil, err
	}
	return body.Categories, nil
}

// TodayEvents fetches today's lock and unlock events for kind.
func (c *Client) TodayEvents(ctx context.Context, kind store.Kind) ([]store.LockEvent, error) {
	var body struct {
		Events []store.LockEvent `json:"events"`
	}
	path := "/today-events?type=" + url.QueryEscape(string(kind))
	if err := c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, err
	}
	return body.Events, nil
}

// Reports fetches the daily, weekly and monthly totals.
func (c *Client) Reports(ctx context.Context) (*server.Reports, error) {
	var r server.Reports
	if err := c.do(ctx, http.MethodGet, "/reports", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Settings fetches the goal settings.
func (c *Client) Settings(ctx context.Context) (*server.SettingsResponse, error) {
	var s server.SettingsResponse
	if err := c.do(ctx, http.MethodGet, "/settings", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSettings applies a partial settings update.
func (c *Client) UpdateSettings(ctx context.Context, p settings.Patch) error {
	return c.do(ctx, http.MethodPost, "/settings", p, nil)
}

// Healthy reports whether the server answers its health check.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthcheck", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// do sends body as JSON and decodes a 200 response into out. Error
// envelopes are mapped back onto the apperr taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var env server.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Error.Message == "" {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	switch env.Error.Code {
	case server.CodeNotFound:
		return fmt.Errorf("%s: %w", env.Error.Message, apperr.ErrNotFound)
	case server.CodeInvalidArgument:
		return fmt.Errorf("%s: %w", env.Error.Message, apperr.ErrInvalidArgument)
	default:
		return fmt.Errorf("server error: %s", env.Error.Message)
	}
}
