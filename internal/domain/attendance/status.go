package attendance

// Status is the daily attendance state. It is derived from which timestamps
// are populated; the persisted column exists only for fast querying.
type Status string

const (
	StatusAbsent  Status = "absent"
	StatusPresent Status = "present"
	StatusOnBreak Status = "on_break"
	StatusLeft    Status = "left"
)

// DeriveStatus computes the state from the populated timestamps:
// absent -> present -> on_break -> present (repeatable) -> left.
// A missing record, or a record whose check-in failed to normalize, counts
// as absent.
func DeriveStatus(r *Record) Status {
	if r == nil || r.CheckIn == nil {
		return StatusAbsent
	}
	if r.CheckOut != nil {
		return StatusLeft
	}
	if r.BreakStart != nil && r.BreakEnd == nil {
		return StatusOnBreak
	}
	return StatusPresent
}
