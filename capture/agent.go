package capture

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fwojciec/recall"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of pipelines run in parallel.
const DefaultConcurrency = 8

// Agent connects an event source to the capture pipeline. Navigation
// events start a pipeline run; tab lifecycle events update the gate
// immediately, in delivery order.
type Agent struct {
	Events   recall.EventSource
	Gate     *Gate
	Pipeline *Pipeline

	// Concurrency caps pipeline runs in progress across all tabs. Runs
	// waiting for their tab's lock do not count against it.
	// Defaults to DefaultConcurrency.
	Concurrency int

	// OnOutcome, if set, is called after every pipeline run.
	OnOutcome func(Outcome)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Run watches for events until ctx is canceled or the event source fails.
// Event delivery never waits for a pipeline run.
// It waits for in-flight pipeline runs before returning. A canceled
// context is not reported as an error.
func (a *Agent) Run(ctx context.Context) error {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := a.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var g errgroup.Group
	slots := semaphore.NewWeighted(int64(limit))

	err := a.Events.Watch(ctx, func(e recall.Event) {
		switch e.Type {
		case recall.EventNavigationCompleted:
			sig := e.Signal()
			g.Go(func() error {
				out := a.Pipeline.handle(ctx, sig, slots)
				if a.OnOutcome != nil {
					a.OnOutcome(out)
				}
				return nil
			})
		case recall.EventTabClosed:
			logger.Debug("tab closed", "tab", e.TabID)
			a.Gate.Forget(e.TabID)
		case recall.EventTabOpenedBySearch:
			logger.Debug("tab excluded", "tab", e.TabID)
			a.Gate.Exclude(e.TabID)
		default:
			logger.Debug("ignoring event", "type", e.Type, "tab", e.TabID)
		}
	})
	_ = g.Wait()

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}
