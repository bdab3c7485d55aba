package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/recall"
)

// Ensure Notifier implements recall.Notifier at compile time.
var _ recall.Notifier = (*Notifier)(nil)

// Notifier posts notifications to an ntfy-style webhook. The message is
// sent as the plain-text body and the title in the Title header.
type Notifier struct {
	client
}

// NewNotifier creates a Notifier that posts to endpoint.
func NewNotifier(endpoint string, opts ...Option) *Notifier {
	return &Notifier{client: newClient(endpoint, opts...)}
}

// Notify sends the notification.
func (n *Notifier) Notify(ctx context.Context, title, message string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")
	if title != "" {
		req.Header.Set("Title", title)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification failed: status=%d", resp.StatusCode)
	}
	return nil
}
