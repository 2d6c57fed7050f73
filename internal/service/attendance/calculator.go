package attendance

import (
	"time"

	"github.com/wakatta-dev/workbot/internal/config"
)

// Calculator holds the work policy and derives hour metrics from normalized
// timestamps. All methods are pure; outputs are exact (unrounded) so they
// compose — the service rounds once at its boundary.
type Calculator struct {
	standardHours float64
	startSeconds  int // scheduled start, seconds since midnight
	endSeconds    int // scheduled end, seconds since midnight
	graceSeconds  int
}

func NewCalculator(cfg config.WorkConfig) *Calculator {
	return &Calculator{
		standardHours: cfg.StandardHours,
		startSeconds:  parseClockSeconds(cfg.StartTime, 9*3600),
		endSeconds:    parseClockSeconds(cfg.EndTime, 18*3600),
		graceSeconds:  cfg.GraceMinutes * 60,
	}
}

// WorkHours calculates elapsed hours between check-in and check-out minus
// the break span. A missing check-out means the day is still in progress and
// yields 0; callers wanting "hours so far" pass the current time as a
// provisional check-out.
func (c *Calculator) WorkHours(checkIn time.Time, checkOut, breakStart, breakEnd *time.Time) float64 {
	if checkIn.IsZero() || checkOut == nil {
		return 0.0
	}

	workHours := checkOut.Sub(checkIn).Hours()
	workHours -= c.BreakDuration(breakStart, breakEnd)

	if workHours < 0 {
		return 0.0
	}
	return workHours
}

// BreakDuration calculates the break span in hours; 0 when either endpoint
// is missing or the span is not positive.
func (c *Calculator) BreakDuration(breakStart, breakEnd *time.Time) float64 {
	if breakStart == nil || breakEnd == nil {
		return 0.0
	}
	if !breakEnd.After(*breakStart) {
		return 0.0
	}
	return breakEnd.Sub(*breakStart).Hours()
}

// Overtime is the portion of workHours exceeding the standard daily hours.
func (c *Calculator) Overtime(workHours float64) float64 {
	if workHours <= c.standardHours {
		return 0.0
	}
	return workHours - c.standardHours
}

// IsLate reports whether the check-in time of day exceeds the scheduled
// start plus the grace period.
func (c *Calculator) IsLate(checkIn time.Time) bool {
	return secondsOfDay(checkIn) > c.startSeconds+c.graceSeconds
}

// IsEarlyDeparture reports whether the check-out time of day precedes the
// scheduled end of the working day.
func (c *Calculator) IsEarlyDeparture(checkOut time.Time) bool {
	return secondsOfDay(checkOut) < c.endSeconds
}

func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

func parseClockSeconds(clock string, fallback int) int {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return fallback
	}
	return secondsOfDay(t)
}
