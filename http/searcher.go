package http

import (
	"context"

	"github.com/fwojciec/recall"
)

// DefaultSearchEndpoint is the local search service endpoint.
const DefaultSearchEndpoint = "http://127.0.0.1:8081/search-agent"

// Ensure SearchClient implements recall.Searcher at compile time.
var _ recall.Searcher = (*SearchClient)(nil)

// SearchClient queries the search service.
type SearchClient struct {
	client
}

// NewSearchClient creates a SearchClient for DefaultSearchEndpoint unless
// WithEndpoint is given.
func NewSearchClient(opts ...Option) *SearchClient {
	return &SearchClient{client: newClient(DefaultSearchEndpoint, opts...)}
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	URL           string `json:"url"`
	HighlightText string `json:"highlight_text"`
}

// Search sends the query and returns the best match.
func (c *SearchClient) Search(ctx context.Context, query string) (*recall.SearchResult, error) {
	if err := recall.ValidateQuery(query); err != nil {
		return nil, err
	}

	status, body, err := c.postJSON(ctx, "search service", searchRequest{Query: query})
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := decodeObject("search service", status, body, &resp); err != nil {
		return nil, err
	}

	res := &recall.SearchResult{URL: resp.URL, HighlightText: resp.HighlightText}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}
