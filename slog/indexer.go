// Package slog provides logging decorators for the recall interfaces and a
// Notifier that writes notifications to the log.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/recall"
)

// Ensure LoggingIndexer implements recall.Indexer.
var _ recall.Indexer = (*LoggingIndexer)(nil)

// LoggingIndexer wraps an Indexer with logging.
type LoggingIndexer struct {
	next   recall.Indexer
	logger *slog.Logger
}

// NewLoggingIndexer creates a new LoggingIndexer.
func NewLoggingIndexer(next recall.Indexer, logger *slog.Logger) *LoggingIndexer {
	return &LoggingIndexer{next: next, logger: logger}
}

// Submit delegates to the wrapped indexer and logs the submission.
func (i *LoggingIndexer) Submit(ctx context.Context, page *recall.PageContent) (ack *recall.IndexAck, err error) {
	defer func(begin time.Time) {
		i.logger.Info("submit",
			"url", page.URL,
			"bytes", len(page.Body),
			"status", status(ack, err),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Submit(ctx, page)
}

func status(ack *recall.IndexAck, err error) int {
	if ack != nil {
		return ack.Status
	}
	return recall.ErrorStatus(err)
}
