package capture

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/recall"
	"golang.org/x/time/rate"
)

var _ recall.Notifier = (*ThrottledNotifier)(nil)

// ThrottledNotifier drops repeated notifications. Each distinct
// title and message pair gets its own token bucket, so a service that
// stays down produces one notification per interval rather than one per
// page load.
type ThrottledNotifier struct {
	next recall.Notifier

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    time.Duration
}

// NewThrottledNotifier wraps next so identical notifications are
// delivered at most once per interval. A non-positive interval disables
// throttling.
func NewThrottledNotifier(next recall.Notifier, every time.Duration) *ThrottledNotifier {
	return &ThrottledNotifier{
		next:     next,
		limiters: make(map[string]*rate.Limiter),
		every:    every,
	}
}

// Notify forwards the notification unless an identical one was delivered
// within the interval. Dropped notifications return nil.
func (n *ThrottledNotifier) Notify(ctx context.Context, title, message string) error {
	if n.every > 0 && !n.allow(title+"\x00"+message) {
		return nil
	}
	return n.next.Notify(ctx, title, message)
}

func (n *ThrottledNotifier) allow(key string) bool {
	n.mu.Lock()
	limiter, ok := n.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(n.every), 1)
		n.limiters[key] = limiter
	}
	n.mu.Unlock()

	return limiter.Allow()
}
