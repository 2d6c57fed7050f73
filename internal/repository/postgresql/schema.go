package postgresql

import (
	"context"
	"fmt"

	"github.com/wakatta-dev/workbot/internal/pkg/database"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS attendance (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		date           DATE NOT NULL,
		check_in       TIMESTAMPTZ,
		check_out      TIMESTAMPTZ,
		break_start    TIMESTAMPTZ,
		break_end      TIMESTAMPTZ,
		work_hours     DOUBLE PRECISION NOT NULL DEFAULT 0.0,
		overtime_hours DOUBLE PRECISION NOT NULL DEFAULT 0.0,
		status         TEXT NOT NULL DEFAULT 'absent',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_user_id ON attendance (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance (date)`,
}

// EnsureSchema creates the attendance table and its indexes if they do not
// exist yet. Runs inside a single transaction so a partially applied schema
// never survives a failed startup.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	return WithTransaction(ctx, db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, db)
		for _, stmt := range schemaStatements {
			if _, err := q.Exec(txCtx, stmt); err != nil {
				return fmt.Errorf("failed to apply attendance schema: %w", err)
			}
		}
		return nil
	})
}
