package mock

import (
	"context"

	"github.com/fwojciec/recall"
)

var _ recall.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of recall.Notifier.
type Notifier struct {
	NotifyFn func(ctx context.Context, title, message string) error
}

func (n *Notifier) Notify(ctx context.Context, title, message string) error {
	return n.NotifyFn(ctx, title, message)
}
