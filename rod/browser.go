// Package rod drives a Chrome browser over the DevTools protocol using
// go-rod. It supplies the browser-facing collaborators of the capture and
// search flows: tab events, the foreground tab, page extraction, text
// location and highlighting.
package rod

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/recall"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultScrollOffset is the gap in CSS pixels kept above a highlighted
// passage when scrolling it into view.
const DefaultScrollOffset = 120

// DefaultEvalTimeout bounds each script evaluation in a page.
const DefaultEvalTimeout = 5 * time.Second

// Ensure Browser implements the browser-facing interfaces at compile time.
var (
	_ recall.EventSource       = (*Browser)(nil)
	_ recall.ActiveTabResolver = (*Browser)(nil)
	_ recall.TabOpener         = (*Browser)(nil)
	_ recall.ContentExtractor  = (*Browser)(nil)
	_ recall.TextLocator       = (*Browser)(nil)
	_ recall.Highlighter       = (*Browser)(nil)
)

// Browser adapts a rod browser to the recall interfaces. Tab IDs are
// DevTools target IDs.
//
// Browser is safe for concurrent use.
type Browser struct {
	browser      *rod.Browser
	scrollOffset float64
	evalTimeout  time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	handler recall.EventHandler
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithScrollOffset sets the gap kept above a highlighted passage.
// Defaults to DefaultScrollOffset.
func WithScrollOffset(px float64) BrowserOption {
	return func(b *Browser) {
		b.scrollOffset = px
	}
}

// WithEvalTimeout bounds each script evaluation.
// Defaults to DefaultEvalTimeout.
func WithEvalTimeout(d time.Duration) BrowserOption {
	return func(b *Browser) {
		b.evalTimeout = d
	}
}

// WithLogger sets the logger for event watching. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) BrowserOption {
	return func(b *Browser) {
		b.logger = logger
	}
}

// NewBrowser wraps a connected rod browser.
func NewBrowser(browser *rod.Browser, opts ...BrowserOption) *Browser {
	b := &Browser{
		browser:      browser,
		scrollOffset: DefaultScrollOffset,
		evalTimeout:  DefaultEvalTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// page returns the open page with the given target ID.
// Returns ENOTFOUND if no such page exists.
func (b *Browser) page(ctx context.Context, id recall.TabID) (*rod.Page, error) {
	pages, err := b.browser.Context(ctx).Pages()
	if err != nil {
		return nil, transportError(ctx, err, "listing tabs")
	}
	for _, p := range pages {
		if p.TargetID == proto.TargetTargetID(id) {
			return p.Context(ctx), nil
		}
	}
	return nil, recall.Errorf(recall.ENOTFOUND, "tab %s not found", id)
}

// eval runs js in the page with the evaluation timeout applied.
func (b *Browser) eval(ctx context.Context, page *rod.Page, js string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	ctx, cancel := context.WithTimeout(ctx, b.evalTimeout)
	defer cancel()
	return page.Context(ctx).Eval(js, args...)
}

type focusState struct {
	Visible bool `json:"visible"`
	Focused bool `json:"focused"`
}

// ActiveTab returns the focused tab, or the first visible one if no tab
// has input focus. Returns ENOTFOUND if no tab is visible.
func (b *Browser) ActiveTab(ctx context.Context) (recall.TabID, error) {
	pages, err := b.browser.Context(ctx).Pages()
	if err != nil {
		return "", transportError(ctx, err, "listing tabs")
	}

	var visible recall.TabID
	for _, p := range pages {
		res, err := b.eval(ctx, p, focusJS)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		var st focusState
		if err := res.Value.Unmarshal(&st); err != nil {
			continue
		}
		if st.Focused {
			return recall.TabID(p.TargetID), nil
		}
		if st.Visible && visible == "" {
			visible = recall.TabID(p.TargetID)
		}
	}
	if visible == "" {
		return "", recall.Errorf(recall.ENOTFOUND, "no foreground tab")
	}
	return visible, nil
}

// OpenTab opens a blank tab in the foreground. A running Watch reports it
// as opened by search before OpenTab returns.
func (b *Browser) OpenTab(ctx context.Context) (recall.TabID, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", transportError(ctx, err, "opening tab")
	}
	if _, err := page.Activate(); err != nil {
		b.logger.Debug("activating tab failed", "tab", page.TargetID, "err", err)
	}

	id := recall.TabID(page.TargetID)
	if fn := b.watcher(); fn != nil {
		fn(recall.Event{Type: recall.EventTabOpenedBySearch, TabID: id})
	}
	return id, nil
}

// Navigate loads url in the tab and waits for the load event.
func (b *Browser) Navigate(ctx context.Context, id recall.TabID, url string) error {
	page, err := b.page(ctx, id)
	if err != nil {
		return err
	}
	if err := page.Navigate(url); err != nil {
		return transportError(ctx, err, "navigating tab %s", id)
	}
	if err := page.WaitLoad(); err != nil {
		return transportError(ctx, err, "waiting for tab %s to load", id)
	}
	return nil
}

// Extract returns the tab's location and document markup. Pages that a
// browser extension could not script, such as about:, chrome: and
// devtools: pages, yield EEMPTY.
func (b *Browser) Extract(ctx context.Context, id recall.TabID) (*recall.PageContent, error) {
	page, err := b.page(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := b.eval(ctx, page, extractJS)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, recall.WrapError(recall.EEMPTY, err, "extracting tab %s", id)
	}
	if res.Value.Nil() {
		return nil, recall.Errorf(recall.EEMPTY, "tab %s returned no content", id)
	}

	var content recall.PageContent
	if err := res.Value.Unmarshal(&content); err != nil {
		return nil, recall.WrapError(recall.EEMPTY, err, "decoding tab %s content", id)
	}
	if !scriptable(content.URL) {
		return nil, recall.Errorf(recall.EEMPTY, "tab %s shows a restricted page: %s", id, content.URL)
	}
	if err := content.Validate(); err != nil {
		return nil, recall.WrapError(recall.EEMPTY, err, "tab %s", id)
	}
	return &content, nil
}

// Locate finds the fragment in the tab's live DOM.
func (b *Browser) Locate(ctx context.Context, id recall.TabID, fragment string) (*recall.TextMatch, error) {
	if fragment == "" {
		return nil, nil
	}
	page, err := b.page(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := b.eval(ctx, page, locateJS, fragment)
	if err != nil {
		return nil, transportError(ctx, err, "locating text in tab %s", id)
	}
	if res.Value.Nil() {
		return nil, nil
	}

	var match recall.TextMatch
	if err := res.Value.Unmarshal(&match); err != nil {
		return nil, recall.WrapError(recall.EINTERNAL, err, "decoding match in tab %s", id)
	}
	return &match, nil
}

// Highlight overlays the match and scrolls it into view.
func (b *Browser) Highlight(ctx context.Context, id recall.TabID, match *recall.TextMatch) error {
	if match == nil {
		return recall.Errorf(recall.EINVALID, "match required")
	}
	page, err := b.page(ctx, id)
	if err != nil {
		return err
	}
	if _, err := b.eval(ctx, page, highlightJS, match, b.scrollOffset); err != nil {
		return transportError(ctx, err, "highlighting text in tab %s", id)
	}
	return nil
}

// scriptable returns true for locations a content script may run on.
func scriptable(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "file":
		return true
	default:
		return false
	}
}

// transportError wraps a DevTools failure. Context errors pass through
// unchanged.
func transportError(ctx context.Context, err error, format string, args ...interface{}) error {
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return ctx.Err()
	}
	return recall.WrapError(recall.ETRANSPORT, err, format, args...)
}

func (b *Browser) watcher() recall.EventHandler {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handler
}
