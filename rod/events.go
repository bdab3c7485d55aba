package rod

import (
	"context"
	"sync"

	"github.com/fwojciec/recall"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Watch implements recall.EventSource. It follows every page target:
// pages open at start and pages created later. A load event in a page is
// reported as a completed navigation carrying the page's current URL;
// target destruction is reported as a closed tab. Events for one tab are
// delivered in order.
//
// Only one Watch may run at a time.
func (b *Browser) Watch(ctx context.Context, fn recall.EventHandler) error {
	b.mu.Lock()
	if b.handler != nil {
		b.mu.Unlock()
		return recall.Errorf(recall.EINVALID, "browser is already being watched")
	}
	b.handler = fn
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.handler = nil
		b.mu.Unlock()
	}()

	w := &pageWatcher{
		browser: b,
		fn:      fn,
		cancels: make(map[proto.TargetTargetID]context.CancelFunc),
	}
	defer w.wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Subscribe before listing pages so no target created in between is
	// missed. follow ignores targets it already tracks.
	wait := b.browser.Context(ctx).EachEvent(
		func(e *proto.TargetTargetCreated) {
			if e.TargetInfo.Type != proto.TargetTargetInfoTypePage || e.TargetInfo.Subtype == "prerender" {
				return
			}
			w.spawn(func() { w.attach(ctx, e.TargetInfo.TargetID) })
		},
		func(e *proto.TargetTargetDestroyed) {
			if w.unfollow(e.TargetID) {
				fn(recall.Event{Type: recall.EventTabClosed, TabID: recall.TabID(e.TargetID)})
			}
		},
	)

	pages, err := b.browser.Context(ctx).Pages()
	if err != nil {
		return transportError(ctx, err, "listing tabs")
	}
	for _, p := range pages {
		w.follow(ctx, p)
	}

	wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	return recall.Errorf(recall.ETRANSPORT, "browser connection lost")
}

// pageWatcher tracks the per-page event loops of one Watch call.
type pageWatcher struct {
	browser *Browser
	fn      recall.EventHandler
	wg      sync.WaitGroup

	mu      sync.Mutex
	cancels map[proto.TargetTargetID]context.CancelFunc
}

func (w *pageWatcher) spawn(f func()) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		f()
	}()
}

func (w *pageWatcher) wait() {
	w.mu.Lock()
	for _, cancel := range w.cancels {
		cancel()
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// attach resolves a newly created target and follows it.
func (w *pageWatcher) attach(ctx context.Context, id proto.TargetTargetID) {
	page, err := w.browser.browser.Context(ctx).PageFromTarget(id)
	if err != nil {
		w.browser.logger.Debug("attaching to tab failed", "tab", id, "err", err)
		return
	}
	w.follow(ctx, page)
}

// follow starts delivering load events for the page.
func (w *pageWatcher) follow(ctx context.Context, page *rod.Page) {
	w.mu.Lock()
	if _, ok := w.cancels[page.TargetID]; ok {
		w.mu.Unlock()
		return
	}
	pageCtx, cancel := context.WithCancel(ctx)
	w.cancels[page.TargetID] = cancel
	w.mu.Unlock()

	id := page.TargetID
	wait := page.Context(pageCtx).EachEvent(func(e *proto.PageLoadEventFired) {
		info, err := page.Context(pageCtx).Info()
		if err != nil {
			w.browser.logger.Debug("reading tab location failed", "tab", id, "err", err)
			return
		}
		w.fn(recall.Event{
			Type:  recall.EventNavigationCompleted,
			TabID: recall.TabID(id),
			URL:   info.URL,
		})
	})
	w.spawn(wait)
}

// unfollow stops the page's event loop. Returns false if the target was
// never followed.
func (w *pageWatcher) unfollow(id proto.TargetTargetID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	cancel, ok := w.cancels[id]
	if !ok {
		return false
	}
	cancel()
	delete(w.cancels, id)
	return true
}
