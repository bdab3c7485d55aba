package lookup_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/lookup"
	"github.com/fwojciec/recall/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// finderFixture records the order of collaborator calls.
type finderFixture struct {
	finder *lookup.Finder
	calls  []string
}

func newFinderFixture(match *recall.TextMatch) *finderFixture {
	f := &finderFixture{}
	f.finder = &lookup.Finder{
		Searcher: &mock.Searcher{
			SearchFn: func(_ context.Context, query string) (*recall.SearchResult, error) {
				f.calls = append(f.calls, "search:"+query)
				return &recall.SearchResult{
					URL:           "https://example.com/report",
					HighlightText: "Q3 revenue grew 12%",
				}, nil
			},
		},
		Tabs: &mock.TabOpener{
			OpenTabFn: func(_ context.Context) (recall.TabID, error) {
				f.calls = append(f.calls, "open")
				return "42", nil
			},
			NavigateFn: func(_ context.Context, id recall.TabID, url string) error {
				f.calls = append(f.calls, "navigate:"+string(id)+":"+url)
				return nil
			},
		},
		Excluder: &mock.TabExcluder{
			ExcludeFn: func(id recall.TabID) {
				f.calls = append(f.calls, "exclude:"+string(id))
			},
		},
		Locator: &mock.TextLocator{
			LocateFn: func(_ context.Context, id recall.TabID, fragment string) (*recall.TextMatch, error) {
				f.calls = append(f.calls, "locate:"+fragment)
				return match, nil
			},
		},
		Highlighter: &mock.Highlighter{
			HighlightFn: func(_ context.Context, id recall.TabID, m *recall.TextMatch) error {
				f.calls = append(f.calls, "highlight:"+m.Path)
				return nil
			},
		},
	}
	return f
}

func TestFinder_Find(t *testing.T) {
	t.Parallel()

	t.Run("opens excluded tab and highlights the passage", func(t *testing.T) {
		t.Parallel()

		match := &recall.TextMatch{
			Path:        "html > body > p:nth-of-type(2)",
			Text:        "In Q3 revenue grew 12% year over year.",
			StartOffset: 3,
			EndOffset:   22,
			Rect:        recall.Rect{X: 10, Y: 300, Width: 150, Height: 18},
		}
		f := newFinderFixture(match)

		res, err := f.finder.Find(context.Background(), "quarterly revenue")

		require.NoError(t, err)
		assert.Equal(t, []string{
			"search:quarterly revenue",
			"open",
			"exclude:42",
			"navigate:42:https://example.com/report",
			"locate:Q3 revenue grew 12%",
			"highlight:html > body > p:nth-of-type(2)",
		}, f.calls)
		assert.Equal(t, recall.TabID("42"), res.TabID)
		assert.True(t, res.Highlighted)
		assert.Equal(t, match, res.Match)
	})

	t.Run("does not highlight when the passage is missing", func(t *testing.T) {
		t.Parallel()

		f := newFinderFixture(nil)

		res, err := f.finder.Find(context.Background(), "quarterly revenue")

		require.NoError(t, err)
		assert.False(t, res.Highlighted)
		assert.Nil(t, res.Match)
		assert.NotContains(t, f.calls, "highlight:")
		assert.Equal(t, "locate:Q3 revenue grew 12%", f.calls[len(f.calls)-1])
	})

	t.Run("rejects blank query without searching", func(t *testing.T) {
		t.Parallel()

		f := newFinderFixture(nil)

		_, err := f.finder.Find(context.Background(), "   ")

		assert.Equal(t, recall.EINVALID, recall.ErrorCode(err))
		assert.Empty(t, f.calls)
	})

	t.Run("returns search errors without opening a tab", func(t *testing.T) {
		t.Parallel()

		f := newFinderFixture(nil)
		f.finder.Searcher = &mock.Searcher{
			SearchFn: func(_ context.Context, _ string) (*recall.SearchResult, error) {
				return nil, recall.Errorf(recall.ETRANSPORT, "connection refused")
			},
		}

		_, err := f.finder.Find(context.Background(), "anything")

		assert.Equal(t, recall.ETRANSPORT, recall.ErrorCode(err))
		assert.Empty(t, f.calls)
	})

	t.Run("skips locate when no passage is returned", func(t *testing.T) {
		t.Parallel()

		f := newFinderFixture(nil)
		f.finder.Searcher = &mock.Searcher{
			SearchFn: func(_ context.Context, _ string) (*recall.SearchResult, error) {
				return &recall.SearchResult{URL: "https://example.com/"}, nil
			},
		}

		res, err := f.finder.Find(context.Background(), "anything")

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/", res.URL)
		assert.Equal(t, []string{"open", "exclude:42", "navigate:42:https://example.com/"}, f.calls)
	})

	t.Run("locate failure still returns the opened tab", func(t *testing.T) {
		t.Parallel()

		f := newFinderFixture(nil)
		f.finder.Locator = &mock.TextLocator{
			LocateFn: func(_ context.Context, _ recall.TabID, _ string) (*recall.TextMatch, error) {
				return nil, errors.New("execution context destroyed")
			},
		}

		res, err := f.finder.Find(context.Background(), "quarterly revenue")

		require.NoError(t, err)
		assert.Equal(t, recall.TabID("42"), res.TabID)
		assert.False(t, res.Highlighted)
	})

	t.Run("returns navigation errors", func(t *testing.T) {
		t.Parallel()

		f := newFinderFixture(nil)
		f.finder.Tabs.(*mock.TabOpener).NavigateFn = func(_ context.Context, _ recall.TabID, _ string) error {
			return recall.Errorf(recall.ENOTFOUND, "tab closed")
		}

		_, err := f.finder.Find(context.Background(), "quarterly revenue")

		assert.Equal(t, recall.ENOTFOUND, recall.ErrorCode(err))
	})
}
