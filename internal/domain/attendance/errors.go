package attendance

import "errors"

// Attendance domain errors
var (
	// Business-rule rejections (returned to the caller as Result messages,
	// never propagated as Go errors out of the service)
	ErrAlreadyCheckedIn      = errors.New("you are already checked in for today")
	ErrNotCheckedIn          = errors.New("you are not checked in for today")
	ErrAlreadyCheckedOut     = errors.New("you have already checked out for today")
	ErrAlreadyOnBreak        = errors.New("you are already on break")
	ErrNotOnBreak            = errors.New("you are not on break")
	ErrCheckOutOnBreak       = errors.New("you must end your break before checking out")
	ErrBreakEndBeforeStart   = errors.New("break end time must not be before break start time")
	ErrCheckOutBeforeCheckIn = errors.New("check-out time must not be before check-in time")

	// Store-level errors
	ErrRecordNotFound  = errors.New("attendance record not found")
	ErrDuplicateRecord = errors.New("attendance record already exists for this user and date")
	ErrStateConflict   = errors.New("attendance record changed concurrently")
)
