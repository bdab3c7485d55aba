package mock

import (
	"context"

	"github.com/fwojciec/recall"
)

var (
	_ recall.Searcher = (*Searcher)(nil)
	_ recall.Finder   = (*Finder)(nil)
)

// Searcher is a mock implementation of recall.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string) (*recall.SearchResult, error)
}

func (s *Searcher) Search(ctx context.Context, query string) (*recall.SearchResult, error) {
	return s.SearchFn(ctx, query)
}

// Finder is a mock implementation of recall.Finder.
type Finder struct {
	FindFn func(ctx context.Context, query string) (*recall.FindResult, error)
}

func (f *Finder) Find(ctx context.Context, query string) (*recall.FindResult, error) {
	return f.FindFn(ctx, query)
}
