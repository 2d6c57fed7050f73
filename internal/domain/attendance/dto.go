package attendance

import (
	"github.com/wakatta-dev/workbot/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// OperationRequest is the payload for every state-machine operation
// (check-in, check-out, break start/end). At is an optional explicit
// timestamp override used for testing and backfill; empty means "now".
type OperationRequest struct {
	UserID string `json:"user_id"`
	At     string `json:"at,omitempty"`
}

func (r *OperationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	} else if !validator.IsValidSnowflake(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id must be a valid Discord user ID",
		})
	}

	if r.At != "" && !validator.IsValidDateTime(r.At) {
		errs = append(errs, validator.ValidationError{
			Field:   "at",
			Message: "at must be an ISO8601 timestamp",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Result is the outcome of a state-machine operation. Business-rule
// rejections come back as Success=false with a human-readable Message;
// Go errors are reserved for infrastructure failures.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type CheckInData struct {
	CheckInTime string `json:"check_in_time"`
	IsLate      bool   `json:"is_late"`
}

type CheckOutData struct {
	CheckOutTime     string  `json:"check_out_time"`
	WorkHours        float64 `json:"work_hours"`
	OvertimeHours    float64 `json:"overtime_hours"`
	IsEarlyDeparture bool    `json:"is_early_departure"`
}

type BreakStartData struct {
	BreakStartTime string `json:"break_start_time"`
}

type BreakEndData struct {
	BreakEndTime  string  `json:"break_end_time"`
	BreakDuration float64 `json:"break_duration"`
}

// StatusResponse is the answer to a current-status query. WorkHoursSoFar is
// computed with the current time as a provisional check-out while the user
// is still present or on break.
type StatusResponse struct {
	UserID         string  `json:"user_id"`
	Date           string  `json:"date"`
	Status         string  `json:"status"`
	CheckIn        *string `json:"check_in,omitempty"`
	CheckOut       *string `json:"check_out,omitempty"`
	BreakStart     *string `json:"break_start,omitempty"`
	BreakEnd       *string `json:"break_end,omitempty"`
	WorkHoursSoFar float64 `json:"work_hours_so_far"`
}

type RecordResponse struct {
	UserID        string  `json:"user_id"`
	Date          string  `json:"date"`
	CheckIn       *string `json:"check_in,omitempty"`
	CheckOut      *string `json:"check_out,omitempty"`
	BreakStart    *string `json:"break_start,omitempty"`
	BreakEnd      *string `json:"break_end,omitempty"`
	WorkHours     float64 `json:"work_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	Status        string  `json:"status"`
}

type WeeklySummary struct {
	WeekStart          string           `json:"week_start"`
	WeekEnd            string           `json:"week_end"`
	TotalWorkHours     float64          `json:"total_work_hours"`
	TotalOvertimeHours float64          `json:"total_overtime_hours"`
	AverageWorkHours   float64          `json:"average_work_hours"`
	DaysPresent        int              `json:"days_present"`
	DaysAbsent         int              `json:"days_absent"`
	Records            []RecordResponse `json:"records"`
}

type MonthlySummary struct {
	Year               int              `json:"year"`
	Month              int              `json:"month"`
	TotalWorkHours     float64          `json:"total_work_hours"`
	TotalOvertimeHours float64          `json:"total_overtime_hours"`
	AverageWorkHours   float64          `json:"average_work_hours"`
	DaysPresent        int              `json:"days_present"`
	DaysAbsent         int              `json:"days_absent"`
	WorkingDays        int              `json:"working_days"`
	Records            []RecordResponse `json:"records"`
}
