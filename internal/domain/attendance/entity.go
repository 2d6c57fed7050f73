package attendance

import (
	"time"
)

// Record is one attendance row per (user, civil date). Timestamp fields are
// canonical in-memory times; whichever backend stored them, the repository
// runs them through the datetime normalizer before they reach this struct.
type Record struct {
	ID            string
	UserID        string
	Date          string // YYYY-MM-DD in the civil timezone
	CheckIn       *time.Time
	CheckOut      *time.Time
	BreakStart    *time.Time
	BreakEnd      *time.Time
	WorkHours     float64
	OvertimeHours float64
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
