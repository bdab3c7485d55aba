package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/recall"
)

// Ensure LoggingSearcher implements recall.Searcher.
var _ recall.Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a Searcher with logging.
type LoggingSearcher struct {
	next   recall.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next recall.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// Search delegates to the wrapped searcher and logs the query.
func (s *LoggingSearcher) Search(ctx context.Context, query string) (res *recall.SearchResult, err error) {
	defer func(begin time.Time) {
		var url string
		if res != nil {
			url = res.URL
		}
		s.logger.Info("search",
			"query", query,
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query)
}
