package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wakatta-dev/workbot/internal/domain/attendance"
	"github.com/wakatta-dev/workbot/internal/pkg/timeutil"
	"github.com/wakatta-dev/workbot/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	store attendance.RecordStore
	calc  *Calculator
	norm  *timeutil.Normalizer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAttendanceService(store attendance.RecordStore, calc *Calculator, norm *timeutil.Normalizer) attendance.Service {
	return &AttendanceServiceImpl{
		store: store,
		calc:  calc,
		norm:  norm,
		locks: map[string]*sync.Mutex{},
	}
}

// userLock serializes read-modify-write per user. Operations for different
// users stay fully independent; the stores' status guards back this up when
// several processes share one database.
func (a *AttendanceServiceImpl) userLock(userID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[userID] = lock
	}
	return lock
}

// resolveAt returns the explicit override timestamp, or the current time in
// the civil timezone when none was supplied.
func (a *AttendanceServiceImpl) resolveAt(req attendance.OperationRequest) (time.Time, error) {
	if req.At == "" {
		return a.norm.Now(), nil
	}
	at, ok := a.norm.Normalize(req.At)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{
			Field:   "at",
			Message: "at must be an ISO8601 timestamp",
		}}
	}
	return at, nil
}

// normalizeRecord runs every persisted timestamp through the normalizer.
// Malformed values degrade to nil, which makes the record look like the
// corresponding event never happened instead of crashing the query.
func (a *AttendanceServiceImpl) normalizeRecord(rec *attendance.Record) {
	if rec == nil {
		return
	}
	rec.CheckIn = a.normTime(rec.CheckIn)
	rec.CheckOut = a.normTime(rec.CheckOut)
	rec.BreakStart = a.normTime(rec.BreakStart)
	rec.BreakEnd = a.normTime(rec.BreakEnd)
}

func (a *AttendanceServiceImpl) normTime(p *time.Time) *time.Time {
	t, ok := a.norm.Normalize(p)
	if !ok {
		return nil
	}
	return &t
}

func reject(err error) attendance.Result {
	return attendance.Result{Success: false, Message: err.Error()}
}

// CheckIn implements attendance.Service.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.OperationRequest) (attendance.Result, error) {
	if err := req.Validate(); err != nil {
		return attendance.Result{}, err
	}
	at, err := a.resolveAt(req)
	if err != nil {
		return attendance.Result{}, err
	}

	lock := a.userLock(req.UserID)
	lock.Lock()
	defer lock.Unlock()

	date := timeutil.DateString(at)

	rec, err := a.store.GetRecord(ctx, req.UserID, date)
	if err != nil {
		return attendance.Result{}, fmt.Errorf("failed to read attendance record: %w", err)
	}
	a.normalizeRecord(rec)

	if rec != nil && rec.CheckIn != nil {
		slog.Info("check-in rejected", "user_id", req.UserID, "date", date, "reason", "already checked in")
		return reject(attendance.ErrAlreadyCheckedIn), nil
	}

	if rec == nil {
		newRec := attendance.Record{
			ID:      uuid.NewString(),
			UserID:  req.UserID,
			Date:    date,
			CheckIn: &at,
			Status:  attendance.StatusPresent,
		}
		if _, err := a.store.CreateRecord(ctx, newRec); err != nil {
			if errors.Is(err, attendance.ErrDuplicateRecord) {
				// A concurrent check-in won the insert.
				return reject(attendance.ErrAlreadyCheckedIn), nil
			}
			return attendance.Result{}, fmt.Errorf("failed to create attendance record: %w", err)
		}
	} else {
		// Record exists but its check-in failed to normalize; repopulate it.
		rec.CheckIn = &at
		rec.Status = attendance.StatusPresent
		if err := a.store.UpdateRecord(ctx, *rec, attendance.StatusAbsent); err != nil {
			if errors.Is(err, attendance.ErrStateConflict) {
				return reject(attendance.ErrAlreadyCheckedIn), nil
			}
			return attendance.Result{}, fmt.Errorf("failed to update attendance record: %w", err)
		}
	}

	isLate := a.calc.IsLate(at)
	lateMessage := ""
	if isLate {
		lateMessage = " (Late arrival)"
	}

	slog.Info("check-in recorded", "user_id", req.UserID, "date", date, "check_in", at.Format(time.RFC3339), "is_late", isLate)

	return attendance.Result{
		Success: true,
		Message: fmt.Sprintf("Successfully checked in at %s%s", at.Format("15:04"), lateMessage),
		Data: attendance.CheckInData{
			CheckInTime: at.Format(time.RFC3339),
			IsLate:      isLate,
		},
	}, nil
}

// CheckOut implements attendance.Service.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.OperationRequest) (attendance.Result, error) {
	if err := req.Validate(); err != nil {
		return attendance.Result{}, err
	}
	at, err := a.resolveAt(req)
	if err != nil {
		return attendance.Result{}, err
	}

	lock := a.userLock(req.UserID)
	lock.Lock()
	defer lock.Unlock()

	date := timeutil.DateString(at)

	rec, err := a.store.GetRecord(ctx, req.UserID, date)
	if err != nil {
		return attendance.Result{}, fmt.Errorf("failed to read attendance record: %w", err)
	}
	a.normalizeRecord(rec)

	if r, rejected := rejectCheckOut(rec); rejected {
		slog.Info("check-out rejected", "user_id", req.UserID, "date", date, "reason", r.Message)
		return r, nil
	}

	if at.Before(*rec.CheckIn) {
		return reject(attendance.ErrCheckOutBeforeCheckIn), nil
	}

	workHours := a.calc.WorkHours(*rec.CheckIn, &at, rec.BreakStart, rec.BreakEnd)
	overtimeHours := a.calc.Overtime(workHours)

	rec.CheckOut = &at
	rec.WorkHours = round2(workHours)
	rec.OvertimeHours = round2(overtimeHours)
	rec.Status = attendance.StatusLeft

	if err := a.store.UpdateRecord(ctx, *rec, attendance.StatusPresent); err != nil {
		if errors.Is(err, attendance.ErrStateConflict) {
			return a.rejectAfterConflict(ctx, req.UserID, date, rejectCheckOut)
		}
		return attendance.Result{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	isEarly := a.calc.IsEarlyDeparture(at)
	earlyMessage := ""
	if isEarly {
		earlyMessage = " (Early departure)"
	}

	slog.Info("check-out recorded", "user_id", req.UserID, "date", date,
		"check_out", at.Format(time.RFC3339), "work_hours", rec.WorkHours, "overtime_hours", rec.OvertimeHours)

	return attendance.Result{
		Success: true,
		Message: fmt.Sprintf("Successfully checked out at %s%s. Work hours: %.1fh", at.Format("15:04"), earlyMessage, rec.WorkHours),
		Data: attendance.CheckOutData{
			CheckOutTime:     at.Format(time.RFC3339),
			WorkHours:        rec.WorkHours,
			OvertimeHours:    rec.OvertimeHours,
			IsEarlyDeparture: isEarly,
		},
	}, nil
}

// StartBreak implements attendance.Service.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.OperationRequest) (attendance.Result, error) {
	if err := req.Validate(); err != nil {
		return attendance.Result{}, err
	}
	at, err := a.resolveAt(req)
	if err != nil {
		return attendance.Result{}, err
	}

	lock := a.userLock(req.UserID)
	lock.Lock()
	defer lock.Unlock()

	date := timeutil.DateString(at)

	rec, err := a.store.GetRecord(ctx, req.UserID, date)
	if err != nil {
		return attendance.Result{}, fmt.Errorf("failed to read attendance record: %w", err)
	}
	a.normalizeRecord(rec)

	if r, rejected := rejectStartBreak(rec); rejected {
		slog.Info("break-start rejected", "user_id", req.UserID, "date", date, "reason", r.Message)
		return r, nil
	}

	// Single break span per day: a new break replaces the previous one.
	rec.BreakStart = &at
	rec.BreakEnd = nil
	rec.Status = attendance.StatusOnBreak

	if err := a.store.UpdateRecord(ctx, *rec, attendance.StatusPresent); err != nil {
		if errors.Is(err, attendance.ErrStateConflict) {
			return a.rejectAfterConflict(ctx, req.UserID, date, rejectStartBreak)
		}
		return attendance.Result{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	slog.Info("break started", "user_id", req.UserID, "date", date, "break_start", at.Format(time.RFC3339))

	return attendance.Result{
		Success: true,
		Message: fmt.Sprintf("Break started at %s", at.Format("15:04")),
		Data: attendance.BreakStartData{
			BreakStartTime: at.Format(time.RFC3339),
		},
	}, nil
}

// EndBreak implements attendance.Service.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context, req attendance.OperationRequest) (attendance.Result, error) {
	if err := req.Validate(); err != nil {
		return attendance.Result{}, err
	}
	at, err := a.resolveAt(req)
	if err != nil {
		return attendance.Result{}, err
	}

	lock := a.userLock(req.UserID)
	lock.Lock()
	defer lock.Unlock()

	date := timeutil.DateString(at)

	rec, err := a.store.GetRecord(ctx, req.UserID, date)
	if err != nil {
		return attendance.Result{}, fmt.Errorf("failed to read attendance record: %w", err)
	}
	a.normalizeRecord(rec)

	if r, rejected := rejectEndBreak(rec); rejected {
		slog.Info("break-end rejected", "user_id", req.UserID, "date", date, "reason", r.Message)
		return r, nil
	}

	if at.Before(*rec.BreakStart) {
		return reject(attendance.ErrBreakEndBeforeStart), nil
	}

	rec.BreakEnd = &at
	rec.Status = attendance.StatusPresent
	breakDuration := round2(a.calc.BreakDuration(rec.BreakStart, rec.BreakEnd))

	if err := a.store.UpdateRecord(ctx, *rec, attendance.StatusOnBreak); err != nil {
		if errors.Is(err, attendance.ErrStateConflict) {
			return a.rejectAfterConflict(ctx, req.UserID, date, rejectEndBreak)
		}
		return attendance.Result{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	slog.Info("break ended", "user_id", req.UserID, "date", date,
		"break_end", at.Format(time.RFC3339), "break_duration", breakDuration)

	return attendance.Result{
		Success: true,
		Message: fmt.Sprintf("Break ended at %s. Duration: %.1fh", at.Format("15:04"), breakDuration),
		Data: attendance.BreakEndData{
			BreakEndTime:  at.Format(time.RFC3339),
			BreakDuration: breakDuration,
		},
	}, nil
}

// rejectCheckOut returns the business rejection for a check-out attempted in
// the given state, if any.
func rejectCheckOut(rec *attendance.Record) (attendance.Result, bool) {
	switch attendance.DeriveStatus(rec) {
	case attendance.StatusAbsent:
		return reject(attendance.ErrNotCheckedIn), true
	case attendance.StatusLeft:
		return reject(attendance.ErrAlreadyCheckedOut), true
	case attendance.StatusOnBreak:
		return reject(attendance.ErrCheckOutOnBreak), true
	}
	return attendance.Result{}, false
}

func rejectStartBreak(rec *attendance.Record) (attendance.Result, bool) {
	switch attendance.DeriveStatus(rec) {
	case attendance.StatusAbsent:
		return reject(attendance.ErrNotCheckedIn), true
	case attendance.StatusLeft:
		return reject(attendance.ErrAlreadyCheckedOut), true
	case attendance.StatusOnBreak:
		return reject(attendance.ErrAlreadyOnBreak), true
	}
	return attendance.Result{}, false
}

func rejectEndBreak(rec *attendance.Record) (attendance.Result, bool) {
	switch attendance.DeriveStatus(rec) {
	case attendance.StatusAbsent:
		return reject(attendance.ErrNotCheckedIn), true
	case attendance.StatusLeft:
		return reject(attendance.ErrAlreadyCheckedOut), true
	case attendance.StatusPresent:
		return reject(attendance.ErrNotOnBreak), true
	}
	return attendance.Result{}, false
}

// rejectAfterConflict re-reads the record after a guarded update failed and
// reports the rejection matching the state the concurrent writer left
// behind. The losing operation never overwrites the applied one.
func (a *AttendanceServiceImpl) rejectAfterConflict(
	ctx context.Context,
	userID, date string,
	rejectFn func(*attendance.Record) (attendance.Result, bool),
) (attendance.Result, error) {
	rec, err := a.store.GetRecord(ctx, userID, date)
	if err != nil {
		return attendance.Result{}, fmt.Errorf("failed to re-read attendance record: %w", err)
	}
	a.normalizeRecord(rec)
	if r, rejected := rejectFn(rec); rejected {
		return r, nil
	}
	return reject(attendance.ErrStateConflict), nil
}

// CurrentStatus implements attendance.Service. Read-only; repeated calls
// never mutate the record.
func (a *AttendanceServiceImpl) CurrentStatus(ctx context.Context, userID string) (attendance.StatusResponse, error) {
	if errs := validateUserID(userID); errs != nil {
		return attendance.StatusResponse{}, errs
	}

	now := a.norm.Now()
	date := timeutil.DateString(now)

	rec, err := a.store.GetRecord(ctx, userID, date)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to read attendance record: %w", err)
	}
	a.normalizeRecord(rec)

	status := attendance.DeriveStatus(rec)
	resp := attendance.StatusResponse{
		UserID: userID,
		Date:   date,
		Status: string(status),
	}
	if rec == nil {
		return resp, nil
	}

	resp.CheckIn = timePtrToString(rec.CheckIn)
	resp.CheckOut = timePtrToString(rec.CheckOut)
	resp.BreakStart = timePtrToString(rec.BreakStart)
	resp.BreakEnd = timePtrToString(rec.BreakEnd)

	switch status {
	case attendance.StatusLeft:
		resp.WorkHoursSoFar = rec.WorkHours
	case attendance.StatusPresent, attendance.StatusOnBreak:
		// Hours so far: the current time stands in for the missing
		// check-out (and break-end, while on break).
		provisionalOut := &now
		breakEnd := rec.BreakEnd
		if status == attendance.StatusOnBreak {
			breakEnd = &now
		}
		resp.WorkHoursSoFar = round2(a.calc.WorkHours(*rec.CheckIn, provisionalOut, rec.BreakStart, breakEnd))
	}

	return resp, nil
}

// DailyRecord implements attendance.Service.
func (a *AttendanceServiceImpl) DailyRecord(ctx context.Context, userID, date string) (*attendance.RecordResponse, error) {
	if err := validateUserAndDates(userID, date); err != nil {
		return nil, err
	}

	rec, err := a.store.GetRecord(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance record: %w", err)
	}
	if rec == nil {
		return nil, attendance.ErrRecordNotFound
	}
	a.normalizeRecord(rec)

	resp := a.mapRecordToResponse(*rec)
	return &resp, nil
}

// RangeRecords implements attendance.Service.
func (a *AttendanceServiceImpl) RangeRecords(ctx context.Context, userID, startDate, endDate string) ([]attendance.RecordResponse, error) {
	if err := validateUserAndDates(userID, startDate, endDate); err != nil {
		return nil, err
	}
	if startDate > endDate {
		return nil, validator.ValidationErrors{{
			Field:   "end_date",
			Message: "end_date must not precede start_date",
		}}
	}

	records, err := a.store.ListRecords(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		a.normalizeRecord(&rec)
		responses = append(responses, a.mapRecordToResponse(rec))
	}
	return responses, nil
}

// WeeklySummary implements attendance.Service.
func (a *AttendanceServiceImpl) WeeklySummary(ctx context.Context, userID, weekStart string) (attendance.WeeklySummary, error) {
	if err := validateUserAndDates(userID, weekStart); err != nil {
		return attendance.WeeklySummary{}, err
	}

	start, end, err := timeutil.WeekRange(weekStart)
	if err != nil {
		return attendance.WeeklySummary{}, validator.ValidationErrors{{
			Field:   "week_start",
			Message: "week_start must be a YYYY-MM-DD date",
		}}
	}

	records, err := a.store.ListRecords(ctx, userID, start, end)
	if err != nil {
		return attendance.WeeklySummary{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	summary := attendance.WeeklySummary{
		WeekStart: start,
		WeekEnd:   end,
		Records:   make([]attendance.RecordResponse, 0, len(records)),
	}
	totals := a.aggregate(records, &summary.Records)
	summary.TotalWorkHours = totals.workHours
	summary.TotalOvertimeHours = totals.overtimeHours
	summary.DaysPresent = totals.daysPresent
	summary.DaysAbsent = 7 - totals.daysPresent
	summary.AverageWorkHours = totals.average()

	return summary, nil
}

// MonthlySummary implements attendance.Service.
func (a *AttendanceServiceImpl) MonthlySummary(ctx context.Context, userID string, year, month int) (attendance.MonthlySummary, error) {
	errs := validateUserID(userID)
	if year < 1970 || year > 9999 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year is out of range"})
	}
	if month < 1 || month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
	}
	if len(errs) > 0 {
		return attendance.MonthlySummary{}, errs
	}

	start, end := timeutil.MonthRange(year, time.Month(month))

	records, err := a.store.ListRecords(ctx, userID, start, end)
	if err != nil {
		return attendance.MonthlySummary{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	summary := attendance.MonthlySummary{
		Year:        year,
		Month:       month,
		WorkingDays: timeutil.WorkingDays(year, time.Month(month)),
		Records:     make([]attendance.RecordResponse, 0, len(records)),
	}
	totals := a.aggregate(records, &summary.Records)
	summary.TotalWorkHours = totals.workHours
	summary.TotalOvertimeHours = totals.overtimeHours
	summary.DaysPresent = totals.daysPresent
	summary.DaysAbsent = summary.WorkingDays - totals.daysPresent
	if summary.DaysAbsent < 0 {
		summary.DaysAbsent = 0
	}
	summary.AverageWorkHours = totals.average()

	return summary, nil
}

type summaryTotals struct {
	workHours     float64
	overtimeHours float64
	daysPresent   int
}

func (t summaryTotals) average() float64 {
	days := t.daysPresent
	if days == 0 {
		days = 1
	}
	return round2(t.workHours / float64(days))
}

func (a *AttendanceServiceImpl) aggregate(records []attendance.Record, out *[]attendance.RecordResponse) summaryTotals {
	var totals summaryTotals
	for _, rec := range records {
		a.normalizeRecord(&rec)
		totals.workHours += rec.WorkHours
		totals.overtimeHours += rec.OvertimeHours
		// A day counts as worked once it has positive finalized hours; a
		// check-in without a check-out contributes nothing yet.
		if rec.WorkHours > 0 {
			totals.daysPresent++
		}
		*out = append(*out, a.mapRecordToResponse(rec))
	}
	totals.workHours = round2(totals.workHours)
	totals.overtimeHours = round2(totals.overtimeHours)
	return totals
}

func (a *AttendanceServiceImpl) mapRecordToResponse(rec attendance.Record) attendance.RecordResponse {
	return attendance.RecordResponse{
		UserID:        rec.UserID,
		Date:          rec.Date,
		CheckIn:       timePtrToString(rec.CheckIn),
		CheckOut:      timePtrToString(rec.CheckOut),
		BreakStart:    timePtrToString(rec.BreakStart),
		BreakEnd:      timePtrToString(rec.BreakEnd),
		WorkHours:     rec.WorkHours,
		OvertimeHours: rec.OvertimeHours,
		Status:        string(attendance.DeriveStatus(&rec)),
	}
}

func validateUserID(userID string) validator.ValidationErrors {
	if validator.IsEmpty(userID) {
		return validator.ValidationErrors{{Field: "user_id", Message: "user_id is required"}}
	}
	if !validator.IsValidSnowflake(userID) {
		return validator.ValidationErrors{{Field: "user_id", Message: "user_id must be a valid Discord user ID"}}
	}
	return nil
}

func validateUserAndDates(userID string, dates ...string) error {
	errs := validateUserID(userID)
	for _, d := range dates {
		if _, ok := validator.IsValidDate(d); !ok {
			errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be a YYYY-MM-DD date"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// timePtrToString safely converts a *time.Time to an RFC3339 string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

// round2 rounds to the engine's presentation precision. Applied once at the
// service boundary; the calculator stays exact.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
