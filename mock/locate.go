package mock

import (
	"context"

	"github.com/fwojciec/recall"
)

var (
	_ recall.TextLocator = (*TextLocator)(nil)
	_ recall.Highlighter = (*Highlighter)(nil)
)

// TextLocator is a mock implementation of recall.TextLocator.
type TextLocator struct {
	LocateFn func(ctx context.Context, id recall.TabID, fragment string) (*recall.TextMatch, error)
}

func (l *TextLocator) Locate(ctx context.Context, id recall.TabID, fragment string) (*recall.TextMatch, error) {
	return l.LocateFn(ctx, id, fragment)
}

// Highlighter is a mock implementation of recall.Highlighter.
type Highlighter struct {
	HighlightFn func(ctx context.Context, id recall.TabID, match *recall.TextMatch) error
}

func (h *Highlighter) Highlight(ctx context.Context, id recall.TabID, match *recall.TextMatch) error {
	return h.HighlightFn(ctx, id, match)
}
