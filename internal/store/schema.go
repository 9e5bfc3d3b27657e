package store

import (
	"context"
	"database/sql"
	"log"
)

// Migrate creates the schema when it does not exist yet. Statements are
// idempotent so the server can run them on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	log.Println("running database migrations...")

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schools (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL,
			address    TEXT NOT NULL DEFAULT '',
			is_active  BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS classrooms (
			id         UUID PRIMARY KEY,
			school_id  UUID NOT NULL REFERENCES schools(id) ON DELETE CASCADE,
			name       TEXT NOT NULL,
			is_active  BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (school_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS students (
			id                  UUID PRIMARY KEY,
			id_number           CHAR(11) NOT NULL UNIQUE,
			first_name          TEXT NOT NULL,
			last_name           TEXT NOT NULL,
			phone_number        TEXT NOT NULL DEFAULT '',
			school_id           UUID NOT NULL REFERENCES schools(id) ON DELETE CASCADE,
			classroom_id        UUID NOT NULL REFERENCES classrooms(id) ON DELETE CASCADE,
			parent_first_name   TEXT NOT NULL,
			parent_last_name    TEXT NOT NULL,
			parent_phone_number TEXT NOT NULL DEFAULT '',
			is_active           BOOLEAN NOT NULL DEFAULT TRUE,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (school_id, classroom_id, id_number)
		)`,
		`CREATE TABLE IF NOT EXISTS attendance_records (
			id          UUID PRIMARY KEY,
			student_id  UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
			entry_type  TEXT NOT NULL CHECK (entry_type IN ('entry', 'exit')),
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			record_date DATE NOT NULL DEFAULT CURRENT_DATE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_student_time
			ON attendance_records (student_id, recorded_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_student_date
			ON attendance_records (student_id, record_date)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	log.Println("database migrations completed")
	return nil
}
