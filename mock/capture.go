package mock

import (
	"context"

	"github.com/fwojciec/recall"
)

var _ recall.CaptureLog = (*CaptureLog)(nil)

// CaptureLog is a mock implementation of recall.CaptureLog.
type CaptureLog struct {
	RecordCaptureFn   func(ctx context.Context, rec *recall.CaptureRecord) error
	FindCaptureByIDFn func(ctx context.Context, id string) (*recall.CaptureRecord, error)
	FindCapturesFn    func(ctx context.Context, filter recall.CaptureFilter) ([]*recall.CaptureRecord, error)
}

func (l *CaptureLog) RecordCapture(ctx context.Context, rec *recall.CaptureRecord) error {
	return l.RecordCaptureFn(ctx, rec)
}

func (l *CaptureLog) FindCaptureByID(ctx context.Context, id string) (*recall.CaptureRecord, error) {
	return l.FindCaptureByIDFn(ctx, id)
}

func (l *CaptureLog) FindCaptures(ctx context.Context, filter recall.CaptureFilter) ([]*recall.CaptureRecord, error) {
	return l.FindCapturesFn(ctx, filter)
}
