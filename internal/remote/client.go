// Package remote calls the dashboard backend's pause and report endpoints.
//
// Both endpoints answer with JSON that the dashboard never inspects: a call
// succeeds when the status is 2xx and the body parses as JSON. A non-2xx
// status is a failure even when the body is valid JSON, so an error payload
// such as {"error": "..."} never flips the pause label.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"targetwatch/internal/metrics"
)

const (
	EndpointPause  = "pause"
	EndpointReport = "report"

	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 512
)

// ErrStatus is wrapped by errors for non-2xx responses.
var ErrStatus = errors.New("unexpected status")

// Client is a minimal backend client.
type Client struct {
	BaseURL *url.URL
	HTTP    *http.Client
}

// NewClient constructs a client for base with the given request timeout.
func NewClient(base string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: u,
		HTTP:    &http.Client{Timeout: timeout},
	}, nil
}

// Pause toggles the paused state of a target on the backend.
func (c *Client) Pause(ctx context.Context, instance, targetID string) error {
	return c.call(ctx, EndpointPause, instance, targetID)
}

// Report asks the backend to generate a report for a target.
func (c *Client) Report(ctx context.Context, instance, targetID string) error {
	return c.call(ctx, EndpointReport, instance, targetID)
}

// EndpointURL returns the request URL. Segments are interpolated verbatim;
// callers must pass path-safe values.
func (c *Client) EndpointURL(endpoint, instance, targetID string) string {
	base := strings.TrimRight(c.BaseURL.String(), "/")
	return fmt.Sprintf("%s/api/v0/%s/%s/%s", base, endpoint, instance, targetID)
}

func (c *Client) call(ctx context.Context, endpoint, instance, targetID string) (err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "failure"
		}
		metrics.RemoteRequestsTotal.WithLabelValues(endpoint, status).Inc()
		metrics.RemoteRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.EndpointURL(endpoint, instance, targetID), nil)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s request: %w %d: %s", endpoint, ErrStatus, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	// The payload is parsed, never inspected.
	var payload json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("%s response: decode json: %w", endpoint, err)
	}
	return nil
}
