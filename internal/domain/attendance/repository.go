package attendance

import (
	"context"
)

// RecordStore defines data access for attendance records. At most one record
// exists per (user_id, date); both backends enforce this with a unique
// constraint.
type RecordStore interface {
	// GetRecord retrieves the record for a user on a civil date.
	// Returns (nil, nil) when no record exists.
	GetRecord(ctx context.Context, userID, date string) (*Record, error)

	// CreateRecord inserts a new record for (user_id, date).
	// Returns ErrDuplicateRecord when a record already exists, so a
	// concurrent duplicate check-in surfaces as a business rejection.
	CreateRecord(ctx context.Context, rec Record) (Record, error)

	// UpdateRecord writes the mutable fields of rec, guarded by the expected
	// current status: the row is only updated if its populated timestamps
	// still derive to expect. Returns ErrStateConflict when the guard fails,
	// which means a concurrent operation already applied a transition.
	UpdateRecord(ctx context.Context, rec Record, expect Status) error

	// ListRecords retrieves records for a user within the inclusive civil
	// date range [startDate, endDate], ordered by date ascending.
	ListRecords(ctx context.Context, userID, startDate, endDate string) ([]Record, error)
}
