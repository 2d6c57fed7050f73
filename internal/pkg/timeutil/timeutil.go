package timeutil

import (
	"time"
)

// DefaultTimezone is the civil timezone all business-hour comparisons assume.
const DefaultTimezone = "Asia/Tokyo"

// Normalizer converts the heterogeneous timestamp representations stored by
// the supported database backends (native time.Time from PostgreSQL,
// ISO-8601 strings from SQLite) into a single canonical in-memory time.Time
// in the configured civil timezone. It is the only place in the engine where
// the representational difference between backends is absorbed.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer creates a Normalizer for the given timezone name.
// Falls back to UTC+9 when the tz database is unavailable.
func NewNormalizer(timezone string) *Normalizer {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	return &Normalizer{loc: loc}
}

// Location returns the civil timezone used for normalization.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Now returns the current time in the civil timezone.
func (n *Normalizer) Now() time.Time {
	return time.Now().In(n.loc)
}

// Normalize converts a stored timestamp value into the canonical
// representation. Accepted inputs are time.Time, *time.Time, string and nil.
// Malformed strings and nil values degrade to ok=false; Normalize never
// returns an error so that status queries over dirty data cannot fail.
func (n *Normalizer) Normalize(value any) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v.In(n.loc), true
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return v.In(n.loc), true
	case string:
		return n.parse(v)
	case *string:
		if v == nil {
			return time.Time{}, false
		}
		return n.parse(*v)
	default:
		return time.Time{}, false
	}
}

// storedTimeLayouts covers the ISO-8601 variants the backends are known to
// produce: RFC3339 with and without fractional seconds, and the naive
// "T"-separated and space-separated forms SQLite persists.
var storedTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (n *Normalizer) parse(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range storedTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, n.loc); err == nil {
			return t.In(n.loc), true
		}
	}
	return time.Time{}, false
}

// DateString formats a timestamp as a YYYY-MM-DD civil date.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD civil date.
func ParseDate(date string) (time.Time, error) {
	return time.Parse("2006-01-02", date)
}

// WeekRange returns the inclusive [start, end] civil dates of the 7-day week
// beginning at weekStart.
func WeekRange(weekStart string) (string, string, error) {
	start, err := ParseDate(weekStart)
	if err != nil {
		return "", "", err
	}
	return weekStart, DateString(start.AddDate(0, 0, 6)), nil
}

// MonthRange returns the inclusive [start, end] civil dates of the given
// calendar month.
func MonthRange(year int, month time.Month) (string, string) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return DateString(start), DateString(end)
}

// WorkingDays counts the Monday-to-Friday days in the given calendar month.
func WorkingDays(year int, month time.Month) int {
	day := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	count := 0
	for day.Month() == month {
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
		day = day.AddDate(0, 0, 1)
	}
	return count
}
