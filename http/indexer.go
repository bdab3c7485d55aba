package http

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/recall"
)

// DefaultIndexEndpoint is the local indexing service endpoint.
const DefaultIndexEndpoint = "http://127.0.0.1:8080/index-website"

// Ensure IndexClient implements recall.Indexer at compile time.
var _ recall.Indexer = (*IndexClient)(nil)

// IndexClient submits captured pages to the indexing service.
type IndexClient struct {
	client
}

// NewIndexClient creates an IndexClient for DefaultIndexEndpoint unless
// WithEndpoint is given.
func NewIndexClient(opts ...Option) *IndexClient {
	return &IndexClient{client: newClient(DefaultIndexEndpoint, opts...)}
}

// Submit posts the page as {"url","body"} JSON. A submission succeeds only
// when the service answers 2xx with a JSON object.
func (c *IndexClient) Submit(ctx context.Context, page *recall.PageContent) (*recall.IndexAck, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	status, body, err := c.postJSON(ctx, "indexing service", page)
	if err != nil {
		return nil, err
	}

	var obj map[string]json.RawMessage
	if err := decodeObject("indexing service", status, body, &obj); err != nil {
		return nil, err
	}
	return &recall.IndexAck{Status: status, Response: json.RawMessage(body)}, nil
}
