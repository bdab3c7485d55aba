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

// replay returns an event source that delivers events in order and then
// returns err.
func replay(err error, events ...recall.Event) *mock.EventSource {
	return &mock.EventSource{
		WatchFn: func(_ context.Context, fn recall.EventHandler) error {
			for _, e := range events {
				fn(e)
			}
			return err
		},
	}
}

func TestAgent_Run(t *testing.T) {
	t.Parallel()

	t.Run("dispatches navigation events to the pipeline", func(t *testing.T) {
		t.Parallel()

		f := newPipelineFixture("1")
		var mu sync.Mutex
		var outcomes []capture.Outcome
		agent := &capture.Agent{
			Events: replay(nil,
				recall.Event{Type: recall.EventNavigationCompleted, TabID: "1", URL: "https://example.com/a"},
			),
			Gate:     f.gate,
			Pipeline: f.pipeline,
			OnOutcome: func(o capture.Outcome) {
				mu.Lock()
				defer mu.Unlock()
				outcomes = append(outcomes, o)
			},
		}

		err := agent.Run(context.Background())

		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.True(t, outcomes[0].Submitted)
		assert.Equal(t, int32(1), f.submits.Load())
	})

	t.Run("search-opened tab is excluded before its navigation", func(t *testing.T) {
		t.Parallel()

		f := newPipelineFixture("5")
		agent := &capture.Agent{
			Events: replay(nil,
				recall.Event{Type: recall.EventTabOpenedBySearch, TabID: "5"},
				recall.Event{Type: recall.EventNavigationCompleted, TabID: "5", URL: "https://example.com/report"},
			),
			Gate:     f.gate,
			Pipeline: f.pipeline,
		}

		err := agent.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int32(0), f.submits.Load())
		assert.Equal(t, []recall.TabID{"5"}, f.gate.Exclusions())
	})

	t.Run("closed tab is forgotten", func(t *testing.T) {
		t.Parallel()

		f := newPipelineFixture("1")
		f.gate.Commit("3", "https://example.com/a")
		f.gate.Exclude("3")
		agent := &capture.Agent{
			Events:   replay(nil, recall.Event{Type: recall.EventTabClosed, TabID: "3"}),
			Gate:     f.gate,
			Pipeline: f.pipeline,
		}

		err := agent.Run(context.Background())

		require.NoError(t, err)
		assert.Empty(t, f.gate.Records())
		assert.Empty(t, f.gate.Exclusions())
	})

	t.Run("cancellation is not an error", func(t *testing.T) {
		t.Parallel()

		f := newPipelineFixture("1")
		agent := &capture.Agent{
			Events: &mock.EventSource{
				WatchFn: func(ctx context.Context, _ recall.EventHandler) error {
					<-ctx.Done()
					return ctx.Err()
				},
			},
			Gate:     f.gate,
			Pipeline: f.pipeline,
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := agent.Run(ctx)

		assert.NoError(t, err)
	})

	t.Run("busy tab does not hold up other tabs", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		active := recall.TabID("A")
		gate := capture.NewGate(&mock.ActiveTabResolver{
			ActiveTabFn: func(_ context.Context) (recall.TabID, error) {
				mu.Lock()
				defer mu.Unlock()
				return active, nil
			},
		})

		aSubmitting := make(chan struct{})
		release := make(chan struct{})
		bSubmitted := make(chan struct{})
		pipeline := &capture.Pipeline{
			Gate: gate,
			Extractor: &mock.ContentExtractor{
				ExtractFn: func(_ context.Context, id recall.TabID) (*recall.PageContent, error) {
					return &recall.PageContent{URL: "https://example.com/" + string(id), Body: "<html></html>"}, nil
				},
			},
			Indexer: &mock.Indexer{
				SubmitFn: func(_ context.Context, page *recall.PageContent) (*recall.IndexAck, error) {
					if page.URL == "https://example.com/B" {
						close(bSubmitted)
						return &recall.IndexAck{Status: 200}, nil
					}
					close(aSubmitting)
					<-release
					return &recall.IndexAck{Status: 200}, nil
				},
			},
			Notifier: &mock.Notifier{},
		}

		var bFinished bool
		agent := &capture.Agent{
			Events: &mock.EventSource{
				WatchFn: func(_ context.Context, fn recall.EventHandler) error {
					defer close(release)
					fn(recall.Event{Type: recall.EventNavigationCompleted, TabID: "A", URL: "https://example.com/A"})
					<-aSubmitting
					fn(recall.Event{Type: recall.EventNavigationCompleted, TabID: "A", URL: "https://example.com/A2"})

					mu.Lock()
					active = "B"
					mu.Unlock()
					fn(recall.Event{Type: recall.EventNavigationCompleted, TabID: "B", URL: "https://example.com/B"})

					select {
					case <-bSubmitted:
						bFinished = true
					case <-time.After(time.Second):
					}
					return nil
				},
			},
			Gate:        gate,
			Pipeline:    pipeline,
			Concurrency: 2,
		}

		err := agent.Run(context.Background())

		require.NoError(t, err)
		assert.True(t, bFinished, "tab B waited for tab A's submission")
		rec, ok := gate.Record("B")
		require.True(t, ok)
		assert.Equal(t, "https://example.com/B", rec.LastSubmittedURL)
	})

	t.Run("returns event source failure", func(t *testing.T) {
		t.Parallel()

		f := newPipelineFixture("1")
		agent := &capture.Agent{
			Events:   replay(errors.New("websocket closed")),
			Gate:     f.gate,
			Pipeline: f.pipeline,
		}

		err := agent.Run(context.Background())

		assert.EqualError(t, err, "websocket closed")
	})
}
