package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wakatta-dev/workbot/internal/domain/attendance"
	"github.com/wakatta-dev/workbot/internal/pkg/database"
)

type recordStore struct {
	db *database.DB
}

func NewRecordStore(db *database.DB) attendance.RecordStore {
	return &recordStore{db: db}
}

// GetRecord implements attendance.RecordStore.
func (r *recordStore) GetRecord(ctx context.Context, userID, date string) (*attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, date::text,
			   check_in, check_out, break_start, break_end,
			   work_hours, overtime_hours, status,
			   created_at, updated_at
		FROM attendance
		WHERE user_id = $1 AND date = $2
	`

	var rec attendance.Record
	err := q.QueryRow(ctx, query, userID, date).Scan(
		&rec.ID, &rec.UserID, &rec.Date,
		&rec.CheckIn, &rec.CheckOut, &rec.BreakStart, &rec.BreakEnd,
		&rec.WorkHours, &rec.OvertimeHours, &rec.Status,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return &rec, nil
}

// CreateRecord implements attendance.RecordStore.
func (r *recordStore) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance (
			id, user_id, date,
			check_in, check_out, break_start, break_end,
			work_hours, overtime_hours, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.ID, rec.UserID, rec.Date,
		rec.CheckIn, rec.CheckOut, rec.BreakStart, rec.BreakEnd,
		rec.WorkHours, rec.OvertimeHours, rec.Status,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrDuplicateRecord
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// UpdateRecord implements attendance.RecordStore. The WHERE clause repeats
// the state expectation the caller observed, so a concurrent writer that
// already moved the record out of that state leaves this update with zero
// rows and the caller with ErrStateConflict.
func (r *recordStore) UpdateRecord(ctx context.Context, rec attendance.Record, expect attendance.Status) error {
	q := GetQuerier(ctx, r.db)

	guard, err := statusGuard(expect)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE attendance
		SET check_in = $1, check_out = $2, break_start = $3, break_end = $4,
			work_hours = $5, overtime_hours = $6, status = $7,
			updated_at = now()
		WHERE user_id = $8 AND date = $9 AND %s
	`, guard)

	tag, err := q.Exec(ctx, query,
		rec.CheckIn, rec.CheckOut, rec.BreakStart, rec.BreakEnd,
		rec.WorkHours, rec.OvertimeHours, rec.Status,
		rec.UserID, rec.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrStateConflict
	}

	return nil
}

// ListRecords implements attendance.RecordStore.
func (r *recordStore) ListRecords(ctx context.Context, userID, startDate, endDate string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, date::text,
			   check_in, check_out, break_start, break_end,
			   work_hours, overtime_hours, status,
			   created_at, updated_at
		FROM attendance
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Date,
			&rec.CheckIn, &rec.CheckOut, &rec.BreakStart, &rec.BreakEnd,
			&rec.WorkHours, &rec.OvertimeHours, &rec.Status,
			&rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, nil
}

// statusGuard renders the SQL predicate a row must satisfy to still be in
// the expected state. Status is derived from the timestamp columns rather
// than trusted from the status column.
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
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
