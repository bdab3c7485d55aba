package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/recall"
)

// Ensure LoggingLocator implements recall.TextLocator.
var _ recall.TextLocator = (*LoggingLocator)(nil)

// LoggingLocator wraps a TextLocator with logging.
type LoggingLocator struct {
	next   recall.TextLocator
	logger *slog.Logger
}

// NewLoggingLocator creates a new LoggingLocator.
func NewLoggingLocator(next recall.TextLocator, logger *slog.Logger) *LoggingLocator {
	return &LoggingLocator{next: next, logger: logger}
}

// Locate delegates to the wrapped locator and logs whether the fragment
// was found.
func (l *LoggingLocator) Locate(ctx context.Context, id recall.TabID, fragment string) (match *recall.TextMatch, err error) {
	defer func(begin time.Time) {
		l.logger.Info("locate",
			"tab", id,
			"fragment", fragment,
			"found", match != nil,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.Locate(ctx, id, fragment)
}
