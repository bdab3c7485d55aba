// Package http provides HTTP clients for the local indexing and search
// services, a webhook notifier, and the agent control API.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/recall"
)

// DefaultTimeout is the default timeout for requests to local services.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Option configures a client.
type Option func(*client)

// WithTimeout sets the request timeout. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.timeout = d
	}
}

// WithEndpoint overrides the service endpoint.
func WithEndpoint(url string) Option {
	return func(c *client) {
		c.endpoint = url
	}
}

// WithOrigin sets the Origin header sent with every request.
func WithOrigin(origin string) Option {
	return func(c *client) {
		c.origin = origin
	}
}

// WithHTTPClient replaces the underlying HTTP client. The timeout option
// is ignored when a client is supplied.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.http = hc
	}
}

// client holds the shared plumbing of the JSON service clients.
type client struct {
	http     *http.Client
	endpoint string
	origin   string
	timeout  time.Duration
}

func newClient(endpoint string, opts ...Option) client {
	c := client{
		endpoint: endpoint,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// postJSON sends in as JSON and returns the raw response body.
// Failed statuses and transport failures are classified into
// recall error codes.
func (c *client) postJSON(ctx context.Context, service string, in any) (int, []byte, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return 0, nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, recall.WrapError(recall.EINVALID, err, "building %s request", service)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0, nil, err
		}
		return 0, nil, recall.WrapError(recall.ETRANSPORT, err, "calling %s", service)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, recall.WrapError(recall.ETRANSPORT, err, "reading %s response", service)
	}

	if err := classifyStatus(service, resp.StatusCode); err != nil {
		return resp.StatusCode, body, err
	}
	return resp.StatusCode, body, nil
}

// classifyStatus maps a non-2xx status to a recall error.
func classifyStatus(service string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return &recall.Error{Code: recall.ENOTFOUND, Status: status, Message: service + " not found"}
	case status == http.StatusForbidden:
		return &recall.Error{Code: recall.EFORBIDDEN, Status: status, Message: "access to " + service + " is forbidden"}
	default:
		return &recall.Error{Code: recall.EHTTP, Status: status, Message: fmt.Sprintf("HTTP error! status: %d", status)}
	}
}

// decodeObject decodes a JSON object body into v. A body that is not a
// JSON object is reported as EHTTP carrying the status.
func decodeObject(service string, status int, body []byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return &recall.Error{Code: recall.EHTTP, Status: status, Message: service + " returned a non-JSON response"}
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return &recall.Error{Code: recall.EHTTP, Status: status, Message: service + " returned invalid JSON: " + err.Error(), Err: err}
	}
	return nil
}
