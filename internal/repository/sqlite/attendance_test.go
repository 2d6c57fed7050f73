package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wakatta-dev/workbot/internal/domain/attendance"
	"github.com/wakatta-dev/workbot/internal/pkg/database"
	"github.com/wakatta-dev/workbot/internal/pkg/timeutil"
)

func newTestStore(t *testing.T) attendance.RecordStore {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "workbot_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRecordStore(db, timeutil.NewNormalizer(timeutil.DefaultTimezone))
}

func testRecord(t *testing.T) attendance.Record {
	t.Helper()
	checkIn, err := time.Parse(time.RFC3339, "2024-02-13T09:00:00+09:00")
	require.NoError(t, err)
	return attendance.Record{
		ID:      "rec-1",
		UserID:  "200000000000000001",
		Date:    "2024-02-13",
		CheckIn: &checkIn,
		Status:  attendance.StatusPresent,
	}
}

func TestRecordStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.CreateRecord(ctx, testRecord(t))
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.GetRecord(ctx, created.UserID, created.Date)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, attendance.StatusPresent, got.Status)
	require.NotNil(t, got.CheckIn)
	// Stored as an ISO string, read back as the same instant
	assert.True(t, got.CheckIn.Equal(*testRecord(t).CheckIn))
	assert.Nil(t, got.CheckOut)
	assert.Nil(t, got.BreakStart)
	assert.Nil(t, got.BreakEnd)
}

func TestRecordStore_GetMissingIsNil(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	got, err := store.GetRecord(ctx, "200000000000000001", "2024-02-13")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordStore_DuplicateCreate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := testRecord(t)
	_, err := store.CreateRecord(ctx, rec)
	require.NoError(t, err)

	rec.ID = "rec-2"
	_, err = store.CreateRecord(ctx, rec)
	assert.ErrorIs(t, err, attendance.ErrDuplicateRecord)
}

func TestRecordStore_UpdateGuardedByExpectedState(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := testRecord(t)
	_, err := store.CreateRecord(ctx, rec)
	require.NoError(t, err)

	checkOut := rec.CheckIn.Add(9 * time.Hour)
	rec.CheckOut = &checkOut
	rec.WorkHours = 9.0
	rec.OvertimeHours = 1.0
	rec.Status = attendance.StatusLeft

	// The row is present, not on break: this expectation fails
	err = store.UpdateRecord(ctx, rec, attendance.StatusOnBreak)
	assert.ErrorIs(t, err, attendance.ErrStateConflict)

	require.NoError(t, store.UpdateRecord(ctx, rec, attendance.StatusPresent))

	got, err := store.GetRecord(ctx, rec.UserID, rec.Date)
	require.NoError(t, err)
	require.NotNil(t, got.CheckOut)
	assert.Equal(t, attendance.StatusLeft, got.Status)
	assert.InDelta(t, 9.0, got.WorkHours, 1e-9)

	// Finalized rows reject further guarded updates
	err = store.UpdateRecord(ctx, rec, attendance.StatusPresent)
	assert.ErrorIs(t, err, attendance.ErrStateConflict)
}

func TestRecordStore_UpdateCanClearBreakEnd(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := testRecord(t)
	breakStart := rec.CheckIn.Add(1 * time.Hour)
	breakEnd := rec.CheckIn.Add(90 * time.Minute)
	rec.BreakStart = &breakStart
	rec.BreakEnd = &breakEnd
	_, err := store.CreateRecord(ctx, rec)
	require.NoError(t, err)

	// Starting a new break replaces the completed span and clears its end
	newStart := rec.CheckIn.Add(6 * time.Hour)
	rec.BreakStart = &newStart
	rec.BreakEnd = nil
	rec.Status = attendance.StatusOnBreak
	require.NoError(t, store.UpdateRecord(ctx, rec, attendance.StatusPresent))

	got, err := store.GetRecord(ctx, rec.UserID, rec.Date)
	require.NoError(t, err)
	require.NotNil(t, got.BreakStart)
	assert.True(t, got.BreakStart.Equal(newStart))
	assert.Nil(t, got.BreakEnd)
}

func TestRecordStore_ListRecordsRangeAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	userID := "200000000000000001"
	for i, date := range []string{"2024-02-15", "2024-02-12", "2024-02-13", "2024-02-20"} {
		checkIn, err := time.Parse(time.RFC3339, date+"T09:00:00+09:00")
		require.NoError(t, err)
		_, err = store.CreateRecord(ctx, attendance.Record{
			ID:      "rec-" + string(rune('a'+i)),
			UserID:  userID,
			Date:    date,
			CheckIn: &checkIn,
			Status:  attendance.StatusPresent,
		})
		require.NoError(t, err)
	}
	// Another user's record must not leak into the range
	_, err := store.CreateRecord(ctx, attendance.Record{
		ID:     "rec-other",
		UserID: "200000000000000002",
		Date:   "2024-02-13",
		Status: attendance.StatusAbsent,
	})
	require.NoError(t, err)

	records, err := store.ListRecords(ctx, userID, "2024-02-12", "2024-02-18")
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "2024-02-12", records[0].Date)
	assert.Equal(t, "2024-02-13", records[1].Date)
	assert.Equal(t, "2024-02-15", records[2].Date)
}
