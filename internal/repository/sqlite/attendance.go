package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wakatta-dev/workbot/internal/domain/attendance"
	"github.com/wakatta-dev/workbot/internal/pkg/timeutil"
)

// recordStore persists attendance records as ISO-8601 strings in SQLite.
// Reads hand every stored timestamp to the normalizer, which is where the
// string-vs-native representational difference between backends is absorbed.
type recordStore struct {
	db   *sql.DB
	norm *timeutil.Normalizer
}

func NewRecordStore(db *sql.DB, norm *timeutil.Normalizer) attendance.RecordStore {
	return &recordStore{db: db, norm: norm}
}

const recordColumns = `id, user_id, date,
	check_in, check_out, break_start, break_end,
	work_hours, overtime_hours, status,
	created_at, updated_at`

// GetRecord implements attendance.RecordStore.
func (r *recordStore) GetRecord(ctx context.Context, userID, date string) (*attendance.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance WHERE user_id = ? AND date = ?`, recordColumns)

	rec, err := r.scanRecord(r.db.QueryRowContext(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return rec, nil
}

// CreateRecord implements attendance.RecordStore.
func (r *recordStore) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	now := r.norm.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	query := `
		INSERT INTO attendance (
			id, user_id, date,
			check_in, check_out, break_start, break_end,
			work_hours, overtime_hours, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.Date,
		storedTime(rec.CheckIn), storedTime(rec.CheckOut),
		storedTime(rec.BreakStart), storedTime(rec.BreakEnd),
		rec.WorkHours, rec.OvertimeHours, rec.Status,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrDuplicateRecord
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// UpdateRecord implements attendance.RecordStore. The WHERE clause repeats
// the state expectation the caller observed; a concurrent writer that moved
// the record out of that state leaves zero affected rows.
func (r *recordStore) UpdateRecord(ctx context.Context, rec attendance.Record, expect attendance.Status) error {
	guard, err := statusGuard(expect)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE attendance
		SET check_in = ?, check_out = ?, break_start = ?, break_end = ?,
			work_hours = ?, overtime_hours = ?, status = ?,
			updated_at = ?
		WHERE user_id = ? AND date = ? AND %s
	`, guard)

	res, err := r.db.ExecContext(ctx, query,
		storedTime(rec.CheckIn), storedTime(rec.CheckOut),
		storedTime(rec.BreakStart), storedTime(rec.BreakEnd),
		rec.WorkHours, rec.OvertimeHours, rec.Status,
		r.norm.Now().Format(time.RFC3339),
		rec.UserID, rec.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return attendance.ErrStateConflict
	}

	return nil
}

// ListRecords implements attendance.RecordStore.
func (r *recordStore) ListRecords(ctx context.Context, userID, startDate, endDate string) ([]attendance.Record, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM attendance
		WHERE user_id = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC
	`, recordColumns)

	rows, err := r.db.QueryContext(ctx, query, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *recordStore) scanRecord(row rowScanner) (*attendance.Record, error) {
	var (
		rec                                   attendance.Record
		checkIn, checkOut, breakStart, brkEnd sql.NullString
		createdAt, updatedAt                  sql.NullString
	)

	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Date,
		&checkIn, &checkOut, &breakStart, &brkEnd,
		&rec.WorkHours, &rec.OvertimeHours, &rec.Status,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	rec.CheckIn = r.normalized(checkIn)
	rec.CheckOut = r.normalized(checkOut)
	rec.BreakStart = r.normalized(breakStart)
	rec.BreakEnd = r.normalized(brkEnd)
	if t := r.normalized(createdAt); t != nil {
		rec.CreatedAt = *t
	}
	if t := r.normalized(updatedAt); t != nil {
		rec.UpdatedAt = *t
	}

	return &rec, nil
}

// normalized converts a stored string timestamp into the canonical form.
// Malformed values degrade to nil rather than failing the query.
func (r *recordStore) normalized(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, ok := r.norm.Normalize(v.String)
	if !ok {
		slog.Warn("malformed stored timestamp ignored", "value", v.String)
		return nil
	}
	return &t
}

// storedTime renders a timestamp the way this backend persists it. Nil stays
// NULL.
func storedTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func statusGuard(expect attendance.Status) (string, error) {
	switch expect {
	case attendance.StatusAbsent:
		return "check_in IS NULL", nil
	case attendance.StatusPresent:
		return "check_in IS NOT NULL AND check_out IS NULL AND (break_start IS NULL OR break_end IS NOT NULL)", nil
	case attendance.StatusOnBreak:
		return "check_out IS NULL AND break_start IS NOT NULL AND break_end IS NULL", nil
	default:
		return "", fmt.Errorf("unsupported expected status: %s", expect)
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
