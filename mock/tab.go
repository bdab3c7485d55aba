package mock

import (
	"context"

	"github.com/fwojciec/recall"
)

var (
	_ recall.EventSource       = (*EventSource)(nil)
	_ recall.ActiveTabResolver = (*ActiveTabResolver)(nil)
	_ recall.TabOpener         = (*TabOpener)(nil)
	_ recall.TabExcluder       = (*TabExcluder)(nil)
	_ recall.TabState          = (*TabState)(nil)
)

// EventSource is a mock implementation of recall.EventSource.
type EventSource struct {
	WatchFn func(ctx context.Context, fn recall.EventHandler) error
}

func (s *EventSource) Watch(ctx context.Context, fn recall.EventHandler) error {
	return s.WatchFn(ctx, fn)
}

// ActiveTabResolver is a mock implementation of recall.ActiveTabResolver.
type ActiveTabResolver struct {
	ActiveTabFn func(ctx context.Context) (recall.TabID, error)
}

func (r *ActiveTabResolver) ActiveTab(ctx context.Context) (recall.TabID, error) {
	return r.ActiveTabFn(ctx)
}

// TabOpener is a mock implementation of recall.TabOpener.
type TabOpener struct {
	OpenTabFn  func(ctx context.Context) (recall.TabID, error)
	NavigateFn func(ctx context.Context, id recall.TabID, url string) error
}

func (o *TabOpener) OpenTab(ctx context.Context) (recall.TabID, error) {
	return o.OpenTabFn(ctx)
}

func (o *TabOpener) Navigate(ctx context.Context, id recall.TabID, url string) error {
	return o.NavigateFn(ctx, id, url)
}

// TabExcluder is a mock implementation of recall.TabExcluder.
type TabExcluder struct {
	ExcludeFn func(id recall.TabID)
}

func (e *TabExcluder) Exclude(id recall.TabID) {
	e.ExcludeFn(id)
}

// TabState is a mock implementation of recall.TabState.
type TabState struct {
	ExcludeFn    func(id recall.TabID)
	RecordsFn    func() []recall.TabRecord
	ExclusionsFn func() []recall.TabID
}

func (s *TabState) Exclude(id recall.TabID) {
	s.ExcludeFn(id)
}

func (s *TabState) Records() []recall.TabRecord {
	return s.RecordsFn()
}

func (s *TabState) Exclusions() []recall.TabID {
	return s.ExclusionsFn()
}
