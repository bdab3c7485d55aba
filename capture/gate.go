// Package capture provides the page-capture pipeline. It decides, per tab,
// whether a navigation should be captured, extracts the page, submits it to
// the indexing service, and remembers what was submitted.
package capture

import (
	"context"
	"sort"
	"sync"

	"github.com/fwojciec/recall"
	"golang.org/x/sync/semaphore"
)

// Ensure Gate implements recall.TabState at compile time.
var _ recall.TabState = (*Gate)(nil)

// SkipReason explains why the gate declined a navigation.
type SkipReason string

// Reasons reported by Gate.Evaluate.
const (
	SkipNone       SkipReason = ""
	SkipExcluded   SkipReason = "excluded"
	SkipBackground SkipReason = "background"
	SkipDuplicate  SkipReason = "duplicate"
)

// Decision is the result of evaluating a navigation signal.
type Decision struct {
	Capture bool
	Reason  SkipReason
}

// Gate owns the capture deduplication state: the last submitted URL per tab
// and the set of tabs excluded from capture. The state lives for the
// lifetime of the process and is reset on restart.
//
// Gate is safe for concurrent use.
type Gate struct {
	tabs recall.ActiveTabResolver

	mu       sync.Mutex
	records  map[recall.TabID]string
	excluded map[recall.TabID]struct{}
	locks    map[recall.TabID]*tabLock
}

// tabLock serializes pipelines for one tab. refs counts holders and
// waiters so the entry can be dropped once nobody uses it. closed is set
// when the tab is forgotten while runs are still in flight.
type tabLock struct {
	sem    *semaphore.Weighted
	refs   int
	closed bool
}

// NewGate creates a Gate that resolves the foreground tab through tabs.
func NewGate(tabs recall.ActiveTabResolver) *Gate {
	return &Gate{
		tabs:     tabs,
		records:  make(map[recall.TabID]string),
		excluded: make(map[recall.TabID]struct{}),
		locks:    make(map[recall.TabID]*tabLock),
	}
}

// Evaluate decides whether the signal should trigger a capture.
// Rules are applied in order: excluded tabs, background tabs, and URLs
// already submitted for the tab are skipped.
// Returns an error only if the foreground tab cannot be resolved.
func (g *Gate) Evaluate(ctx context.Context, sig recall.NavigationSignal) (Decision, error) {
	if g.Excluded(sig.TabID) {
		return Decision{Reason: SkipExcluded}, nil
	}

	active, err := g.tabs.ActiveTab(ctx)
	if err != nil {
		if recall.ErrorCode(err) == recall.ENOTFOUND {
			return Decision{Reason: SkipBackground}, nil
		}
		return Decision{}, err
	}
	if active != sig.TabID {
		return Decision{Reason: SkipBackground}, nil
	}

	if rec, ok := g.Record(sig.TabID); ok && rec.LastSubmittedURL == sig.URL {
		return Decision{Reason: SkipDuplicate}, nil
	}

	return Decision{Capture: true}, nil
}

// Exclude adds the tab to the exclusion set. Excluded tabs are never
// captured until they are forgotten.
func (g *Gate) Exclude(id recall.TabID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.excluded[id] = struct{}{}
}

// Excluded returns true if the tab is in the exclusion set.
func (g *Gate) Excluded(id recall.TabID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.excluded[id]
	return ok
}

// Exclusions returns the excluded tabs in sorted order.
func (g *Gate) Exclusions() []recall.TabID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]recall.TabID, 0, len(g.excluded))
	for id := range g.excluded {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Commit records url as the last URL submitted for the tab.
// Call only after the indexing service confirmed the submission.
// Commits from runs that outlive the tab are ignored.
func (g *Gate) Commit(id recall.TabID, url string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if l, ok := g.locks[id]; ok && l.closed {
		return
	}
	g.records[id] = url
}

// Record returns the tab's record. The bool is false if nothing was
// ever submitted for the tab.
func (g *Gate) Record(id recall.TabID) (recall.TabRecord, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	url, ok := g.records[id]
	if !ok {
		return recall.TabRecord{}, false
	}
	return recall.TabRecord{TabID: id, LastSubmittedURL: url}, true
}

// Records returns all tab records sorted by tab ID.
func (g *Gate) Records() []recall.TabRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	recs := make([]recall.TabRecord, 0, len(g.records))
	for id, url := range g.records {
		recs = append(recs, recall.TabRecord{TabID: id, LastSubmittedURL: url})
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].TabID < recs[j].TabID })
	return recs
}

// Forget drops all state for a closed tab. Runs still in flight for the
// tab can no longer commit.
func (g *Gate) Forget(id recall.TabID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.records, id)
	delete(g.excluded, id)
	if l, ok := g.locks[id]; ok {
		l.closed = true
	}
}

// Lock acquires the tab's exclusive pipeline lock. It blocks until the
// lock is free or ctx is canceled. The returned function releases the lock
// and must be called exactly once.
func (g *Gate) Lock(ctx context.Context, id recall.TabID) (unlock func(), err error) {
	g.mu.Lock()
	l, ok := g.locks[id]
	if !ok {
		l = &tabLock{sem: semaphore.NewWeighted(1)}
		g.locks[id] = l
	}
	l.refs++
	g.mu.Unlock()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		g.release(id, l)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.sem.Release(1)
			g.release(id, l)
		})
	}, nil
}

// release drops a reference to the tab lock, deleting it when unused.
func (g *Gate) release(id recall.TabID, l *tabLock) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l.refs--
	if l.refs == 0 && g.locks[id] == l {
		delete(g.locks, id)
	}
}

// lockCount returns the number of live tab locks. Used by tests.
func (g *Gate) lockCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}
