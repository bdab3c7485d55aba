package mock

import (
	"context"

	"github.com/fwojciec/recall"
)

var (
	_ recall.ContentExtractor = (*ContentExtractor)(nil)
	_ recall.Indexer          = (*Indexer)(nil)
)

// ContentExtractor is a mock implementation of recall.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(ctx context.Context, id recall.TabID) (*recall.PageContent, error)
}

func (e *ContentExtractor) Extract(ctx context.Context, id recall.TabID) (*recall.PageContent, error) {
	return e.ExtractFn(ctx, id)
}

// Indexer is a mock implementation of recall.Indexer.
type Indexer struct {
	SubmitFn func(ctx context.Context, page *recall.PageContent) (*recall.IndexAck, error)
}

func (i *Indexer) Submit(ctx context.Context, page *recall.PageContent) (*recall.IndexAck, error) {
	return i.SubmitFn(ctx, page)
}
