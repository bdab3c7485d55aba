package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/recall"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ recall.CaptureLog = (*CaptureLog)(nil)

// CaptureLog implements recall.CaptureLog using SQLite.
type CaptureLog struct {
	db *DB
}

// NewCaptureLog creates a new CaptureLog.
func NewCaptureLog(db *DB) *CaptureLog {
	return &CaptureLog{db: db}
}

// RecordCapture appends a capture record. The ID is always generated;
// CreatedAt is set to now if zero.
func (s *CaptureLog) RecordCapture(ctx context.Context, rec *recall.CaptureRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	rec.ID = uuid.New().String()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO captures (id, tab_id, url, bytes, body_hash, code, status, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, string(rec.TabID), rec.URL, rec.Bytes, rec.BodyHash, rec.Code, rec.Status, rec.Message,
		formatTime(rec.CreatedAt))

	return err
}

// FindCaptureByID retrieves a capture record by ID.
func (s *CaptureLog) FindCaptureByID(ctx context.Context, id string) (*recall.CaptureRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tab_id, url, bytes, body_hash, code, status, message, created_at
		FROM captures
		WHERE id = ?
	`, id)

	rec, err := scanCapture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recall.Errorf(recall.ENOTFOUND, "capture not found")
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// FindCaptures retrieves capture records matching the filter, newest first.
func (s *CaptureLog) FindCaptures(ctx context.Context, filter recall.CaptureFilter) ([]*recall.CaptureRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, tab_id, url, bytes, body_hash, code, status, message, created_at FROM captures WHERE 1=1")

	if filter.TabID != nil {
		query.WriteString(" AND tab_id = ?")
		args = append(args, string(*filter.TabID))
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Failed {
		query.WriteString(" AND code != ''")
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*recall.CaptureRecord
	for rows.Next() {
		rec, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCapture(row scanner) (*recall.CaptureRecord, error) {
	var rec recall.CaptureRecord
	var tabID, createdAt string

	if err := row.Scan(&rec.ID, &tabID, &rec.URL, &rec.Bytes, &rec.BodyHash, &rec.Code, &rec.Status,
		&rec.Message, &createdAt); err != nil {
		return nil, err
	}
	rec.TabID = recall.TabID(tabID)

	var err error
	rec.CreatedAt, err = parseTime(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
