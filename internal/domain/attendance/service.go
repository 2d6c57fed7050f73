package attendance

import (
	"context"
)

// Service defines the attendance engine consumed by the command-handling
// layer. State-machine operations return a Result; a Result with
// Success=false is a business-rule rejection, while a non-nil error always
// means an infrastructure failure.
type Service interface {
	// CheckIn records the start of a work day; creates today's record.
	CheckIn(ctx context.Context, req OperationRequest) (Result, error)

	// CheckOut ends the work day and finalizes work and overtime hours.
	CheckOut(ctx context.Context, req OperationRequest) (Result, error)

	// StartBreak begins a break; only valid while present.
	StartBreak(ctx context.Context, req OperationRequest) (Result, error)

	// EndBreak ends the active break; only valid while on break.
	EndBreak(ctx context.Context, req OperationRequest) (Result, error)

	// CurrentStatus reports today's state without mutating it.
	CurrentStatus(ctx context.Context, userID string) (StatusResponse, error)

	// DailyRecord retrieves the record for a specific date.
	// Returns ErrRecordNotFound when the user has no record on that date.
	DailyRecord(ctx context.Context, userID, date string) (*RecordResponse, error)

	// RangeRecords retrieves records in an inclusive date range, ordered by date.
	RangeRecords(ctx context.Context, userID, startDate, endDate string) ([]RecordResponse, error)

	// WeeklySummary aggregates the 7 days starting at weekStart.
	WeeklySummary(ctx context.Context, userID, weekStart string) (WeeklySummary, error)

	// MonthlySummary aggregates a calendar month, including its working-day count.
	MonthlySummary(ctx context.Context, userID string, year, month int) (MonthlySummary, error)
}
