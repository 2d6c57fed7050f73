package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wakatta-dev/workbot/internal/config"
)

func testCalculator() *Calculator {
	return NewCalculator(config.WorkConfig{
		StandardHours: 8.0,
		StartTime:     "09:00",
		EndTime:       "18:00",
		GraceMinutes:  5,
	})
}

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	assert.NoError(t, err)
	return parsed
}

func tsPtr(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed := ts(t, value)
	return &parsed
}

func TestCalculator_WorkHours_FullDayWithoutBreak(t *testing.T) {
	calc := testCalculator()

	checkIn := ts(t, "2024-02-13T09:00:00+09:00")
	checkOut := tsPtr(t, "2024-02-13T18:30:00+09:00")

	workHours := calc.WorkHours(checkIn, checkOut, nil, nil)

	assert.InDelta(t, 9.5, workHours, 1e-9)
	assert.InDelta(t, 1.5, calc.Overtime(workHours), 1e-9)
}

func TestCalculator_WorkHours_BreakSubtracted(t *testing.T) {
	calc := testCalculator()

	checkIn := ts(t, "2024-02-13T09:00:00+09:00")
	checkOut := tsPtr(t, "2024-02-13T18:00:00+09:00")
	breakStart := tsPtr(t, "2024-02-13T12:00:00+09:00")
	breakEnd := tsPtr(t, "2024-02-13T12:45:00+09:00")

	workHours := calc.WorkHours(checkIn, checkOut, breakStart, breakEnd)

	assert.InDelta(t, 8.25, workHours, 1e-9)
	assert.InDelta(t, 0.25, calc.Overtime(workHours), 1e-9)
}

func TestCalculator_WorkHours_NoCheckOutIsZero(t *testing.T) {
	calc := testCalculator()

	workHours := calc.WorkHours(ts(t, "2024-02-13T09:00:00+09:00"), nil, nil, nil)

	assert.Zero(t, workHours)
}

func TestCalculator_WorkHours_IncompleteBreakIgnored(t *testing.T) {
	calc := testCalculator()

	checkIn := ts(t, "2024-02-13T09:00:00+09:00")
	checkOut := tsPtr(t, "2024-02-13T17:00:00+09:00")
	breakStart := tsPtr(t, "2024-02-13T12:00:00+09:00")

	workHours := calc.WorkHours(checkIn, checkOut, breakStart, nil)

	assert.InDelta(t, 8.0, workHours, 1e-9)
}

func TestCalculator_WorkHours_NeverNegative(t *testing.T) {
	calc := testCalculator()

	checkIn := ts(t, "2024-02-13T09:00:00+09:00")
	checkOut := tsPtr(t, "2024-02-13T09:30:00+09:00")
	breakStart := tsPtr(t, "2024-02-13T09:00:00+09:00")
	breakEnd := tsPtr(t, "2024-02-13T10:00:00+09:00")

	workHours := calc.WorkHours(checkIn, checkOut, breakStart, breakEnd)

	assert.Zero(t, workHours)
}

func TestCalculator_BreakDuration_NonPositiveSpanIsZero(t *testing.T) {
	calc := testCalculator()

	at := tsPtr(t, "2024-02-13T12:00:00+09:00")

	assert.Zero(t, calc.BreakDuration(at, at))
	assert.Zero(t, calc.BreakDuration(nil, at))
	assert.Zero(t, calc.BreakDuration(at, nil))
}

func TestCalculator_Overtime_AtOrBelowStandardIsZero(t *testing.T) {
	calc := testCalculator()

	assert.Zero(t, calc.Overtime(8.0))
	assert.Zero(t, calc.Overtime(7.0))
	assert.InDelta(t, 1.5, calc.Overtime(9.5), 1e-9)
}

func TestCalculator_IsLate_GracePeriod(t *testing.T) {
	calc := testCalculator()

	assert.False(t, calc.IsLate(ts(t, "2024-02-13T09:00:00+09:00")))
	assert.False(t, calc.IsLate(ts(t, "2024-02-13T09:03:00+09:00")))
	assert.False(t, calc.IsLate(ts(t, "2024-02-13T09:05:00+09:00")))
	assert.True(t, calc.IsLate(ts(t, "2024-02-13T09:05:01+09:00")))
	assert.True(t, calc.IsLate(ts(t, "2024-02-13T09:30:00+09:00")))
}

func TestCalculator_IsEarlyDeparture(t *testing.T) {
	calc := testCalculator()

	assert.True(t, calc.IsEarlyDeparture(ts(t, "2024-02-13T17:59:59+09:00")))
	assert.False(t, calc.IsEarlyDeparture(ts(t, "2024-02-13T18:00:00+09:00")))
	assert.False(t, calc.IsEarlyDeparture(ts(t, "2024-02-13T19:00:00+09:00")))
}

func TestCalculator_FallbackSchedule(t *testing.T) {
	// Unparseable clock strings fall back to the 09:00-18:00 default.
	calc := NewCalculator(config.WorkConfig{
		StandardHours: 8.0,
		StartTime:     "not-a-clock",
		EndTime:       "",
		GraceMinutes:  0,
	})

	assert.True(t, calc.IsLate(ts(t, "2024-02-13T09:00:01+09:00")))
	assert.True(t, calc.IsEarlyDeparture(ts(t, "2024-02-13T17:59:59+09:00")))
}
