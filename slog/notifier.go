package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/recall"
)

// Ensure Notifier implements recall.Notifier.
var _ recall.Notifier = (*Notifier)(nil)

// Notifier writes notifications to the log. It is the notification
// surface when no webhook is configured.
type Notifier struct {
	logger *slog.Logger
}

// NewNotifier creates a new Notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Notify logs the notification at warn level. It never fails.
func (n *Notifier) Notify(ctx context.Context, title, message string) error {
	n.logger.WarnContext(ctx, "notification", "title", title, "message", message)
	return nil
}
