package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Transport is the fixed HTTP contract consumed by the control engine.
// It is implemented by *Client and can be faked in tests.
//
// Errors are only returned for transport-level failures (connection refused,
// timeouts, unreadable bodies). A response that is not JSON decodes as the
// zero value so that "no data" and "explicit failure" look the same.
type Transport interface {
	FetchStatus(ctx context.Context) (StatusResponse, error)
	FetchLogs(ctx context.Context) (LogsResponse, error)
	FetchEvents(ctx context.Context, limit int) (EventsResponse, error)
	Start(ctx context.Context) (CommandResult, error)
	Stop(ctx context.Context) (CommandResult, error)
	Clear(ctx context.Context) (CommandResult, error)
	Simulate(ctx context.Context) (CommandResult, error)
	PTZStart(ctx context.Context, cmd PTZCommand) (CommandResult, error)
	PTZStop(ctx context.Context, cmd PTZCommand) (CommandResult, error)
	SavePTZConfig(ctx context.Context, profile PTZProfile) (CommandResult, error)
}

// Ensure Client implements Transport at compile time.
var _ Transport = (*Client)(nil)

// Client talks to the device HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    zerolog.Logger
}

const (
	defaultDeviceURL = "127.0.0.1:8000"
	defaultUserAgent = "lookout/0.1"
	requestTimeout   = 4 * time.Second
	maxBodyBytes     = 4 << 20
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger routes request diagnostics to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for the device at deviceURL (host:port or full URL).
func NewClient(deviceURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(deviceURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised device address.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// FetchStatus retrieves the pipeline run state.
func (c *Client) FetchStatus(ctx context.Context) (StatusResponse, error) {
	return call[StatusResponse](ctx, c, http.MethodGet, &url.URL{Path: "/status"}, nil)
}

// FetchLogs retrieves the device's current log buffer.
func (c *Client) FetchLogs(ctx context.Context) (LogsResponse, error) {
	return call[LogsResponse](ctx, c, http.MethodGet, &url.URL{Path: "/logs"}, nil)
}

// FetchEvents retrieves at most limit recent detections.
func (c *Client) FetchEvents(ctx context.Context, limit int) (EventsResponse, error) {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	rel := &url.URL{Path: "/events", RawQuery: values.Encode()}
	return call[EventsResponse](ctx, c, http.MethodGet, rel, nil)
}

// Start asks the device to launch the pipeline.
func (c *Client) Start(ctx context.Context) (CommandResult, error) {
	return c.post(ctx, "/start", struct{}{})
}

// Stop asks the device to stop the pipeline.
func (c *Client) Stop(ctx context.Context) (CommandResult, error) {
	return c.post(ctx, "/stop", struct{}{})
}

// Clear drops the device's log and event buffers.
func (c *Client) Clear(ctx context.Context) (CommandResult, error) {
	return c.post(ctx, "/clear", nil)
}

// Simulate injects a synthetic detection on the device.
func (c *Client) Simulate(ctx context.Context) (CommandResult, error) {
	return c.post(ctx, "/simulate", struct{}{})
}

// PTZStart begins a continuous PTZ movement.
func (c *Client) PTZStart(ctx context.Context, cmd PTZCommand) (CommandResult, error) {
	if strings.TrimSpace(cmd.Code) == "" {
		return CommandResult{}, fmt.Errorf("ptz code required")
	}
	return c.post(ctx, "/ptz/start", cmd)
}

// PTZStop ends a PTZ movement. The speed is never sent.
func (c *Client) PTZStop(ctx context.Context, cmd PTZCommand) (CommandResult, error) {
	if strings.TrimSpace(cmd.Code) == "" {
		cmd.Code = PTZStop
	}
	return c.post(ctx, "/ptz/stop", PTZCommand{Code: cmd.Code})
}

// SavePTZConfig posts the camera connection profile.
func (c *Client) SavePTZConfig(ctx context.Context, profile PTZProfile) (CommandResult, error) {
	return c.post(ctx, "/ptz/config", profile)
}

func (c *Client) post(ctx context.Context, path string, body any) (CommandResult, error) {
	return call[CommandResult](ctx, c, http.MethodPost, &url.URL{Path: path}, body)
}

// call performs the exchange and decodes leniently into T.
func call[T any](ctx context.Context, c *Client, method string, rel *url.URL, body any) (T, error) {
	var payload T
	if c == nil {
		return payload, fmt.Errorf("client is nil")
	}
	raw, err := c.exchange(ctx, method, rel, body)
	if err != nil {
		return payload, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.logger.Debug().
			Str("endpoint", rel.Path).
			Err(err).
			Msg("device returned malformed body")
		var zero T
		return zero, nil
	}
	return payload, nil
}

func (c *Client) exchange(ctx context.Context, method string, rel *url.URL, body any) ([]byte, error) {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		c.logger.Debug().
			Str("endpoint", rel.String()).
			Str("request_id", requestID).
			Int("status", resp.StatusCode).
			Msg("device returned error status")
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return raw, nil
}

func parseBaseURL(deviceURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(deviceURL)
	if trimmed == "" {
		trimmed = defaultDeviceURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse device url %q: %w", deviceURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse device url %q: missing host", deviceURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
