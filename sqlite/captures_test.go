package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

// seed records captures with increasing timestamps.
func seed(t *testing.T, log *sqlite.CaptureLog, recs ...*recall.CaptureRecord) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, rec := range recs {
		rec.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, log.RecordCapture(context.Background(), rec))
	}
}

func TestCaptureLog_RecordCapture(t *testing.T) {
	t.Parallel()

	t.Run("assigns ID and timestamp", func(t *testing.T) {
		t.Parallel()

		log := sqlite.NewCaptureLog(setupTestDB(t))
		rec := &recall.CaptureRecord{TabID: "7", URL: "https://example.com/a", Bytes: 15, BodyHash: "00ff"}

		err := log.RecordCapture(context.Background(), rec)

		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.False(t, rec.CreatedAt.IsZero())
	})

	t.Run("round trips all fields", func(t *testing.T) {
		t.Parallel()

		log := sqlite.NewCaptureLog(setupTestDB(t))
		created := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
		rec := &recall.CaptureRecord{
			TabID:     "7",
			URL:       "https://example.com/a",
			Bytes:     15,
			BodyHash:  "00ff",
			Code:      recall.EHTTP,
			Status:    500,
			Message:   "HTTP error! status: 500",
			CreatedAt: created,
		}
		require.NoError(t, log.RecordCapture(context.Background(), rec))

		got, err := log.FindCaptureByID(context.Background(), rec.ID)

		require.NoError(t, err)
		assert.Equal(t, rec, got)
	})

	t.Run("rejects invalid record", func(t *testing.T) {
		t.Parallel()

		log := sqlite.NewCaptureLog(setupTestDB(t))

		err := log.RecordCapture(context.Background(), &recall.CaptureRecord{TabID: "7"})

		assert.Equal(t, recall.EINVALID, recall.ErrorCode(err))
	})
}

func TestCaptureLog_FindCaptureByID(t *testing.T) {
	t.Parallel()

	log := sqlite.NewCaptureLog(setupTestDB(t))

	_, err := log.FindCaptureByID(context.Background(), "missing")

	assert.Equal(t, recall.ENOTFOUND, recall.ErrorCode(err))
}

func TestCaptureLog_FindCaptures(t *testing.T) {
	t.Parallel()

	log := sqlite.NewCaptureLog(setupTestDB(t))
	seed(t, log,
		&recall.CaptureRecord{TabID: "1", URL: "https://example.com/a"},
		&recall.CaptureRecord{TabID: "1", URL: "https://example.com/b", Code: recall.EFORBIDDEN, Status: 403},
		&recall.CaptureRecord{TabID: "2", URL: "https://example.com/a"},
		&recall.CaptureRecord{TabID: "2", URL: "https://example.com/c", Code: recall.ETRANSPORT},
	)
	ctx := context.Background()

	urls := func(recs []*recall.CaptureRecord) []string {
		out := make([]string, len(recs))
		for i, r := range recs {
			out[i] = string(r.TabID) + " " + r.URL
		}
		return out
	}

	t.Run("returns newest first", func(t *testing.T) {
		t.Parallel()

		recs, err := log.FindCaptures(ctx, recall.CaptureFilter{})

		require.NoError(t, err)
		assert.Equal(t, []string{
			"2 https://example.com/c",
			"2 https://example.com/a",
			"1 https://example.com/b",
			"1 https://example.com/a",
		}, urls(recs))
	})

	t.Run("filters by tab", func(t *testing.T) {
		t.Parallel()

		tab := recall.TabID("1")
		recs, err := log.FindCaptures(ctx, recall.CaptureFilter{TabID: &tab})

		require.NoError(t, err)
		assert.Equal(t, []string{"1 https://example.com/b", "1 https://example.com/a"}, urls(recs))
	})

	t.Run("filters by URL", func(t *testing.T) {
		t.Parallel()

		u := "https://example.com/a"
		recs, err := log.FindCaptures(ctx, recall.CaptureFilter{URL: &u})

		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})

	t.Run("filters failed attempts", func(t *testing.T) {
		t.Parallel()

		recs, err := log.FindCaptures(ctx, recall.CaptureFilter{Failed: true})

		require.NoError(t, err)
		assert.Equal(t, []string{"2 https://example.com/c", "1 https://example.com/b"}, urls(recs))
		for _, r := range recs {
			assert.False(t, r.Succeeded())
		}
	})

	t.Run("paginates", func(t *testing.T) {
		t.Parallel()

		recs, err := log.FindCaptures(ctx, recall.CaptureFilter{Limit: 2, Offset: 1})

		require.NoError(t, err)
		assert.Equal(t, []string{"2 https://example.com/a", "1 https://example.com/b"}, urls(recs))
	})

	t.Run("offset without limit", func(t *testing.T) {
		t.Parallel()

		recs, err := log.FindCaptures(ctx, recall.CaptureFilter{Offset: 3})

		require.NoError(t, err)
		assert.Equal(t, []string{"1 https://example.com/a"}, urls(recs))
	})
}
