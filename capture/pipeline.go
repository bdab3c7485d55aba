package capture

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/recall"
	"golang.org/x/sync/semaphore"
)

// State is a capture pipeline state.
type State int

// Pipeline states. A run starts in StateIdle and always ends in
// StateIdle; a failed run passes through StateErrored on the way.
const (
	StateIdle State = iota
	StateEvaluating
	StateExtracting
	StateSubmitting
	StateErrored
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEvaluating:
		return "evaluating"
	case StateExtracting:
		return "extracting"
	case StateSubmitting:
		return "submitting"
	case StateErrored:
		return "errored"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// NotificationTitle is the title of submission failure notifications.
const NotificationTitle = "Error"

// Outcome reports how a single pipeline run ended.
type Outcome struct {
	Signal recall.NavigationSignal

	// Path lists every state the run entered, ending with StateIdle.
	Path []State

	// Reason is set when the gate declined the signal.
	Reason SkipReason

	// Submitted is true when the indexing service acknowledged the page.
	Submitted bool

	// Err is the error that sent the run through StateErrored, or the
	// extraction error for a silently aborted run.
	Err error
}

// Final returns the state the run ended in.
func (o *Outcome) Final() State {
	if len(o.Path) == 0 {
		return StateIdle
	}
	return o.Path[len(o.Path)-1]
}

// Result returns StateErrored for a failed run and the final state
// otherwise.
func (o *Outcome) Result() State {
	if o.Visited(StateErrored) {
		return StateErrored
	}
	return o.Final()
}

// Visited returns true if the run entered state s.
func (o *Outcome) Visited(s State) bool {
	for _, p := range o.Path {
		if p == s {
			return true
		}
	}
	return false
}

func (o *Outcome) enter(s State) {
	o.Path = append(o.Path, s)
}

// Pipeline runs the Evaluate → Extract → Submit sequence for one
// navigation signal at a time per tab.
type Pipeline struct {
	Gate      *Gate
	Extractor recall.ContentExtractor
	Indexer   recall.Indexer
	Notifier  recall.Notifier

	// History is optional; when set every submission attempt is recorded.
	History recall.CaptureLog

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Handle runs the pipeline for sig. It holds the tab's lock from the start
// of evaluation until submission completes or fails, so signals for the
// same tab never interleave. Handle never returns an error; failures are
// reported through the notifier and the returned Outcome.
func (p *Pipeline) Handle(ctx context.Context, sig recall.NavigationSignal) Outcome {
	return p.handle(ctx, sig, nil)
}

// handle runs the pipeline. If slots is not nil, a slot is acquired once
// the tab lock is held and kept until the run ends, so runs queued behind
// a busy tab never hold a slot.
func (p *Pipeline) handle(ctx context.Context, sig recall.NavigationSignal, slots *semaphore.Weighted) Outcome {
	out := Outcome{Signal: sig}
	logger := p.logger().With("tab", sig.TabID, "url", sig.URL)

	unlock, err := p.Gate.Lock(ctx, sig.TabID)
	if err != nil {
		// Canceled while waiting for another run on this tab.
		out.Err = err
		out.enter(StateIdle)
		return out
	}
	defer unlock()

	if slots != nil {
		if err := slots.Acquire(ctx, 1); err != nil {
			out.Err = err
			out.enter(StateIdle)
			return out
		}
		defer slots.Release(1)
	}

	out.enter(StateEvaluating)
	decision, err := p.Gate.Evaluate(ctx, sig)
	if err != nil {
		logger.Warn("capture evaluation failed", "err", err)
		out.Err = err
		out.enter(StateIdle)
		return out
	}
	if !decision.Capture {
		logger.Debug("capture skipped", "reason", decision.Reason)
		out.Reason = decision.Reason
		out.enter(StateIdle)
		return out
	}

	out.enter(StateExtracting)
	page, err := p.Extractor.Extract(ctx, sig.TabID)
	if err == nil {
		if page == nil {
			err = recall.Errorf(recall.EEMPTY, "tab %s returned no content", sig.TabID)
		} else if verr := page.Validate(); verr != nil {
			err = recall.WrapError(recall.EEMPTY, verr, "tab %s returned no content", sig.TabID)
		}
	}
	if err != nil {
		out.Err = err
		if recall.ErrorCode(err) == recall.EEMPTY {
			logger.Debug("capture aborted: no content", "err", err)
			out.enter(StateIdle)
			return out
		}
		logger.Error("content extraction failed", "err", err)
		out.enter(StateErrored)
		out.enter(StateIdle)
		return out
	}

	out.enter(StateSubmitting)
	_, err = p.Indexer.Submit(ctx, page)
	if err != nil && ctx.Err() != nil {
		// Shutdown interrupted the submission; there is nothing to report.
		logger.Debug("submission canceled", "err", err)
		out.Err = err
		out.enter(StateErrored)
		out.enter(StateIdle)
		return out
	}
	p.record(ctx, logger, sig, page, err)
	if err != nil {
		logger.Error("error calling web service", "err", err)
		p.notify(ctx, logger, err)
		out.Err = err
		out.enter(StateErrored)
		out.enter(StateIdle)
		return out
	}

	// The navigation URL, not the extracted location, is what the next
	// duplicate signal will carry.
	p.Gate.Commit(sig.TabID, sig.URL)
	out.Submitted = true
	out.enter(StateIdle)
	return out
}

// notify surfaces a submission failure. Notifier errors are logged and
// discarded.
func (p *Pipeline) notify(ctx context.Context, logger *slog.Logger, cause error) {
	if err := p.Notifier.Notify(ctx, NotificationTitle, FailureMessage(cause)); err != nil {
		logger.Debug("notification failed", "err", err)
	}
}

// record appends the submission attempt to the history, if configured.
func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, sig recall.NavigationSignal, page *recall.PageContent, submitErr error) {
	if p.History == nil {
		return
	}
	rec := &recall.CaptureRecord{
		TabID:     sig.TabID,
		URL:       sig.URL,
		Bytes:     len(page.Body),
		BodyHash:  fmt.Sprintf("%016x", xxhash.Sum64String(page.Body)),
		Code:      recall.ErrorCode(submitErr),
		Status:    recall.ErrorStatus(submitErr),
		Message:   recall.ErrorMessage(submitErr),
		CreatedAt: p.now(),
	}
	if err := p.History.RecordCapture(ctx, rec); err != nil {
		logger.Warn("recording capture failed", "err", err)
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

// FailureMessage returns the user-facing text for a submission failure.
func FailureMessage(err error) string {
	const prefix = "Failed to connect to service:\n"
	switch recall.ErrorCode(err) {
	case recall.ENOTFOUND:
		return prefix + "Indexing service not found. Is the server running?"
	case recall.EFORBIDDEN:
		return prefix + "Access to indexing service is forbidden. Check CORS settings."
	case recall.EHTTP:
		return prefix + fmt.Sprintf("HTTP error! status: %d", recall.ErrorStatus(err))
	default:
		return prefix + recall.ErrorMessage(err)
	}
}
