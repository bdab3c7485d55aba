package recall

import (
	"context"
	"strings"
)

// SearchResult is the search service's answer to a query: the page to open
// and the exact passage to highlight on it.
type SearchResult struct {
	URL           string `json:"url"`
	HighlightText string `json:"highlightText"`
}

// Validate returns an error if the result has no URL.
func (r *SearchResult) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "search result URL required")
	}
	return nil
}

// Searcher queries the search service.
type Searcher interface {
	// Search sends a free-text query and returns the best match.
	// Returns EINVALID for a blank query.
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// FindResult reports the outcome of opening and highlighting a search result.
type FindResult struct {
	URL           string     `json:"url"`
	HighlightText string     `json:"highlightText"`
	TabID         TabID      `json:"tabId"`
	Highlighted   bool       `json:"highlighted"`
	Match         *TextMatch `json:"match,omitempty"`
}

// Finder runs the whole search flow: query, open, locate, highlight.
type Finder interface {
	// Find searches for query, opens the result in a new tab that is
	// excluded from capture, and highlights the returned passage.
	// A passage that cannot be located is not an error; the result reports
	// Highlighted false.
	Find(ctx context.Context, query string) (*FindResult, error)
}

// ValidateQuery returns EINVALID if the query is blank.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return Errorf(EINVALID, "please enter text to search")
	}
	return nil
}
