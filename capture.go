package recall

import (
	"context"
	"time"
)

// CaptureRecord is one entry in the capture history. Every submission
// attempt is recorded, successful or not.
type CaptureRecord struct {
	ID        string    `json:"id"`
	TabID     TabID     `json:"tabId"`
	URL       string    `json:"url"`
	Bytes     int       `json:"bytes"`
	BodyHash  string    `json:"bodyHash"`
	Code      string    `json:"code"` // empty on success
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Succeeded returns true if the submission was acknowledged.
func (r *CaptureRecord) Succeeded() bool {
	return r.Code == ""
}

// Validate returns an error if the record contains invalid fields.
func (r *CaptureRecord) Validate() error {
	if r.TabID == "" {
		return Errorf(EINVALID, "capture tab ID required")
	}
	if r.URL == "" {
		return Errorf(EINVALID, "capture URL required")
	}
	return nil
}

// CaptureLog persists the capture history. The history is an audit trail
// only; deduplication never consults it.
type CaptureLog interface {
	// RecordCapture appends a record, assigning its ID. CreatedAt is set
	// to the current time if zero.
	RecordCapture(ctx context.Context, rec *CaptureRecord) error

	// FindCaptureByID retrieves a record by ID.
	// Returns ENOTFOUND if the record does not exist.
	FindCaptureByID(ctx context.Context, id string) (*CaptureRecord, error)

	// FindCaptures returns records matching the filter, newest first.
	FindCaptures(ctx context.Context, filter CaptureFilter) ([]*CaptureRecord, error)
}

// CaptureFilter represents a filter for FindCaptures.
type CaptureFilter struct {
	TabID  *TabID  `json:"tabId"`
	URL    *string `json:"url"`
	Failed bool    `json:"failed"` // only failed attempts

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
