package recall

import "context"

// Notifier surfaces messages to the user. Delivery is best-effort; callers
// log and discard returned errors.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}
