package capture_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/capture"
	"github.com/fwojciec/recall/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// activeTab returns a resolver reporting id as the foreground tab.
func activeTab(id recall.TabID) *mock.ActiveTabResolver {
	return &mock.ActiveTabResolver{
		ActiveTabFn: func(_ context.Context) (recall.TabID, error) {
			return id, nil
		},
	}
}

func TestGate_Evaluate(t *testing.T) {
	t.Parallel()

	t.Run("captures foreground tab with no record", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("7"))

		d, err := g.Evaluate(context.Background(), recall.NavigationSignal{TabID: "7", URL: "https://a.test/x"})

		require.NoError(t, err)
		assert.True(t, d.Capture)
		assert.Equal(t, capture.SkipNone, d.Reason)
	})

	t.Run("skips excluded tab without resolving foreground", func(t *testing.T) {
		t.Parallel()

		resolver := &mock.ActiveTabResolver{
			ActiveTabFn: func(_ context.Context) (recall.TabID, error) {
				t.Fatal("ActiveTab should not be called for excluded tabs")
				return "", nil
			},
		}
		g := capture.NewGate(resolver)
		g.Exclude("9")

		d, err := g.Evaluate(context.Background(), recall.NavigationSignal{TabID: "9", URL: "https://r.test/"})

		require.NoError(t, err)
		assert.False(t, d.Capture)
		assert.Equal(t, capture.SkipExcluded, d.Reason)
	})

	t.Run("skips background tab", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("4"))

		d, err := g.Evaluate(context.Background(), recall.NavigationSignal{TabID: "3", URL: "https://b.test/"})

		require.NoError(t, err)
		assert.False(t, d.Capture)
		assert.Equal(t, capture.SkipBackground, d.Reason)
	})

	t.Run("treats missing foreground tab as background", func(t *testing.T) {
		t.Parallel()

		resolver := &mock.ActiveTabResolver{
			ActiveTabFn: func(_ context.Context) (recall.TabID, error) {
				return "", recall.Errorf(recall.ENOTFOUND, "no foreground tab")
			},
		}
		g := capture.NewGate(resolver)

		d, err := g.Evaluate(context.Background(), recall.NavigationSignal{TabID: "3", URL: "https://b.test/"})

		require.NoError(t, err)
		assert.Equal(t, capture.SkipBackground, d.Reason)
	})

	t.Run("returns resolver errors", func(t *testing.T) {
		t.Parallel()

		resolver := &mock.ActiveTabResolver{
			ActiveTabFn: func(_ context.Context) (recall.TabID, error) {
				return "", errors.New("connection lost")
			},
		}
		g := capture.NewGate(resolver)

		_, err := g.Evaluate(context.Background(), recall.NavigationSignal{TabID: "3", URL: "https://b.test/"})

		require.Error(t, err)
	})

	t.Run("skips duplicate URL", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("7"))
		g.Commit("7", "https://a.test/x")

		d, err := g.Evaluate(context.Background(), recall.NavigationSignal{TabID: "7", URL: "https://a.test/x"})

		require.NoError(t, err)
		assert.Equal(t, capture.SkipDuplicate, d.Reason)
	})

	t.Run("compares URLs exactly", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("7"))
		g.Commit("7", "https://a.test/x")

		d, err := g.Evaluate(context.Background(), recall.NavigationSignal{TabID: "7", URL: "https://a.test/x#top"})

		require.NoError(t, err)
		assert.True(t, d.Capture)
	})

	t.Run("records are per tab", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("8"))
		g.Commit("7", "https://a.test/x")

		d, err := g.Evaluate(context.Background(), recall.NavigationSignal{TabID: "8", URL: "https://a.test/x"})

		require.NoError(t, err)
		assert.True(t, d.Capture)
	})
}

func TestGate_State(t *testing.T) {
	t.Parallel()

	t.Run("exclusion is idempotent", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("1"))
		g.Exclude("5")
		g.Exclude("5")

		assert.Equal(t, []recall.TabID{"5"}, g.Exclusions())
		assert.True(t, g.Excluded("5"))
		assert.False(t, g.Excluded("6"))
	})

	t.Run("records and exclusions are sorted snapshots", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("1"))
		g.Commit("2", "https://b.test/")
		g.Commit("1", "https://a.test/")
		g.Exclude("9")
		g.Exclude("3")

		assert.Equal(t, []recall.TabRecord{
			{TabID: "1", LastSubmittedURL: "https://a.test/"},
			{TabID: "2", LastSubmittedURL: "https://b.test/"},
		}, g.Records())
		assert.Equal(t, []recall.TabID{"3", "9"}, g.Exclusions())
	})

	t.Run("commit overwrites the record", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("1"))
		g.Commit("1", "https://a.test/")
		g.Commit("1", "https://a.test/next")

		rec, ok := g.Record("1")
		require.True(t, ok)
		assert.Equal(t, "https://a.test/next", rec.LastSubmittedURL)
	})

	t.Run("forget drops record and exclusion", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("1"))
		g.Commit("1", "https://a.test/")
		g.Exclude("1")

		g.Forget("1")

		_, ok := g.Record("1")
		assert.False(t, ok)
		assert.False(t, g.Excluded("1"))
	})
	t.Run("commit from a run that outlives the tab is ignored", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("1"))
		unlock, err := g.Lock(context.Background(), "1")
		require.NoError(t, err)

		g.Forget("1")
		g.Commit("1", "https://a.test/")
		unlock()

		assert.Empty(t, g.Records())
		assert.Equal(t, 0, g.LockCount())
	})

	t.Run("tab state is fresh once in-flight runs finish", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("1"))
		unlock, err := g.Lock(context.Background(), "1")
		require.NoError(t, err)
		g.Forget("1")
		unlock()

		unlock, err = g.Lock(context.Background(), "1")
		require.NoError(t, err)
		g.Commit("1", "https://b.test/")
		unlock()

		rec, ok := g.Record("1")
		require.True(t, ok)
		assert.Equal(t, "https://b.test/", rec.LastSubmittedURL)
	})
}

func TestGate_Lock(t *testing.T) {
	t.Parallel()

	t.Run("serializes holders of the same tab", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("1"))
		ctx := context.Background()

		unlock, err := g.Lock(ctx, "1")
		require.NoError(t, err)

		acquired := make(chan struct{})
		go func() {
			u, err := g.Lock(ctx, "1")
			if err == nil {
				close(acquired)
				u()
			}
		}()

		select {
		case <-acquired:
			t.Fatal("second lock acquired while first is held")
		case <-time.After(50 * time.Millisecond):
		}

		unlock()

		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("second lock not acquired after release")
		}
	})

	t.Run("different tabs do not block each other", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("1"))
		ctx := context.Background()

		u1, err := g.Lock(ctx, "1")
		require.NoError(t, err)
		defer u1()

		ctx2, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		u2, err := g.Lock(ctx2, "2")
		require.NoError(t, err)
		u2()
	})

	t.Run("returns context error while waiting", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("1"))

		unlock, err := g.Lock(context.Background(), "1")
		require.NoError(t, err)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = g.Lock(ctx, "1")

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("drops unused locks", func(t *testing.T) {
		t.Parallel()

		g := capture.NewGate(activeTab("1"))
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := g.Lock(ctx, "1")
				if err != nil {
					return
				}
				unlock()
				unlock() // second call is a no-op
			}()
		}
		wg.Wait()

		assert.Equal(t, 0, g.LockCount())
	})
}
