// Package lookup implements the search flow: query the search service,
// open the best match in a new tab that is never captured, and highlight
// the matching passage.
package lookup

import (
	"context"
	"log/slog"

	"github.com/fwojciec/recall"
)

var _ recall.Finder = (*Finder)(nil)

// Finder runs a query end to end.
type Finder struct {
	Searcher    recall.Searcher
	Tabs        recall.TabOpener
	Excluder    recall.TabExcluder
	Locator     recall.TextLocator
	Highlighter recall.Highlighter

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Find implements recall.Finder.
//
// The tab is excluded before navigation starts, so the capture gate can
// never see a navigation signal for it while it is still unexcluded.
func (f *Finder) Find(ctx context.Context, query string) (*recall.FindResult, error) {
	if err := recall.ValidateQuery(query); err != nil {
		return nil, err
	}

	res, err := f.Searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}

	logger := f.logger().With("url", res.URL)

	id, err := f.Tabs.OpenTab(ctx)
	if err != nil {
		return nil, err
	}
	f.Excluder.Exclude(id)

	if err := f.Tabs.Navigate(ctx, id, res.URL); err != nil {
		return nil, err
	}

	out := &recall.FindResult{
		URL:           res.URL,
		HighlightText: res.HighlightText,
		TabID:         id,
	}
	if res.HighlightText == "" {
		return out, nil
	}

	match, err := f.Locator.Locate(ctx, id, res.HighlightText)
	if err != nil {
		// The page is already open; a failed locate only costs the highlight.
		logger.Warn("locating passage failed", "tab", id, "err", err)
		return out, nil
	}
	if match == nil {
		logger.Info("passage not found on page", "tab", id)
		return out, nil
	}
	out.Match = match

	if err := f.Highlighter.Highlight(ctx, id, match); err != nil {
		logger.Warn("highlighting passage failed", "tab", id, "err", err)
		return out, nil
	}
	out.Highlighted = true
	return out, nil
}

func (f *Finder) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}
