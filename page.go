package recall

import (
	"context"
	"encoding/json"
)

// PageContent is the URL and serialized markup of a loaded page.
type PageContent struct {
	URL  string `json:"url"`
	Body string `json:"body"`
}

// Validate returns an error if the page content is missing fields.
func (p *PageContent) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	if p.Body == "" {
		return Errorf(EINVALID, "page body required")
	}
	return nil
}

// ContentExtractor reads the current URL and markup of a tab.
type ContentExtractor interface {
	// Extract runs a snippet in the tab's context and returns its location
	// and document markup.
	// Returns EEMPTY if the tab yields no content, which is expected on
	// pages where script injection is disallowed.
	Extract(ctx context.Context, id TabID) (*PageContent, error)
}

// IndexAck is the indexing service's response to a successful submission.
// The content is not interpreted beyond being a JSON object.
type IndexAck struct {
	Status   int             `json:"status"`
	Response json.RawMessage `json:"response"`
}

// Indexer submits pages to the indexing service.
type Indexer interface {
	// Submit posts the page to the indexing service.
	// Returns ENOTFOUND if the service answers 404, EFORBIDDEN on 403,
	// EHTTP for any other failed status or a non-JSON body, and ETRANSPORT
	// when the service cannot be reached.
	Submit(ctx context.Context, page *PageContent) (*IndexAck, error)
}
