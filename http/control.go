package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fwojciec/recall"
)

// Ensure ControlClient implements the interfaces it proxies.
var (
	_ recall.Finder      = (*ControlClient)(nil)
	_ recall.TabExcluder = (*ControlClient)(nil)
)

// ControlClient talks to a running agent's control API.
type ControlClient struct {
	client
}

// NewControlClient creates a client for the agent at baseURL
// (e.g. "http://127.0.0.1:7777").
func NewControlClient(baseURL string, opts ...Option) *ControlClient {
	return &ControlClient{client: newClient(strings.TrimRight(baseURL, "/"), opts...)}
}

// Find runs a search through the agent.
func (c *ControlClient) Find(ctx context.Context, query string) (*recall.FindResult, error) {
	if err := recall.ValidateQuery(query); err != nil {
		return nil, err
	}
	var res recall.FindResult
	if err := c.do(ctx, http.MethodPost, "/search", SearchRequest{Query: query}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Tabs returns the agent's capture gate state.
func (c *ControlClient) Tabs(ctx context.Context) (*TabsResponse, error) {
	var res TabsResponse
	if err := c.do(ctx, http.MethodGet, "/tabs", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ExcludeTab adds a tab to the agent's exclusion set.
func (c *ControlClient) ExcludeTab(ctx context.Context, id recall.TabID) error {
	return c.do(ctx, http.MethodPost, "/tabs/"+url.PathEscape(string(id))+"/exclude", nil, nil)
}

// Exclude implements recall.TabExcluder. Errors are discarded; use
// ExcludeTab to observe them.
func (c *ControlClient) Exclude(id recall.TabID) {
	_ = c.ExcludeTab(context.Background(), id)
}

func (c *ControlClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = strings.NewReader(string(b))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return recall.WrapError(recall.ETRANSPORT, err, "calling agent")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Code == "" {
			return &recall.Error{Code: recall.EHTTP, Status: resp.StatusCode, Message: fmt.Sprintf("agent returned status %d", resp.StatusCode)}
		}
		return &recall.Error{Code: e.Code, Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding agent response: %w", err)
	}
	return nil
}
