package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/recall"
)

// Ensure LoggingExtractor implements recall.ContentExtractor.
var _ recall.ContentExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a ContentExtractor with debug logging.
type LoggingExtractor struct {
	next   recall.ContentExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next recall.ContentExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the result.
// Empty extractions are expected and logged at debug level.
func (e *LoggingExtractor) Extract(ctx context.Context, id recall.TabID) (page *recall.PageContent, err error) {
	defer func(begin time.Time) {
		var url string
		var n int
		if page != nil {
			url, n = page.URL, len(page.Body)
		}
		level := slog.LevelDebug
		if err != nil && recall.ErrorCode(err) != recall.EEMPTY {
			level = slog.LevelWarn
		}
		e.logger.Log(ctx, level, "extract",
			"tab", id,
			"url", url,
			"bytes", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(ctx, id)
}
