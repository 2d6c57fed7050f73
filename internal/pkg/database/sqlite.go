package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// NewSQLiteDB opens (and creates if needed) the local SQLite database and
// bootstraps the attendance schema. Timestamps are stored as ISO-8601
// strings; the datetime normalizer absorbs that on the way out.
func NewSQLiteDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func initSQLiteSchema(db *sql.DB) error {
	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL, -- YYYY-MM-DD
		check_in TEXT,
		check_out TEXT,
		break_start TEXT,
		break_end TEXT,
		work_hours REAL NOT NULL DEFAULT 0.0,
		overtime_hours REAL NOT NULL DEFAULT 0.0,
		status TEXT NOT NULL DEFAULT 'absent',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(user_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_user_id ON attendance(user_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(date);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
