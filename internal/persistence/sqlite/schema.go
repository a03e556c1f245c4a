package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order; each entry runs at most once, tracked in
// schema_migrations by version number.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS buildings (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS departments (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS programs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL,
		code          TEXT NOT NULL UNIQUE,
		department_id INTEGER NOT NULL REFERENCES departments(id)
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		course_code TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL,
		program_id  INTEGER NOT NULL REFERENCES programs(id)
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		room_number   TEXT NOT NULL,
		building_id   INTEGER NOT NULL REFERENCES buildings(id),
		capacity      INTEGER NOT NULL CHECK (capacity > 0),
		has_projector INTEGER NOT NULL DEFAULT 0,
		has_computers INTEGER NOT NULL DEFAULT 0,
		UNIQUE (building_id, room_number)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL CHECK (role IN ('ADMIN', 'FACULTY'))
	)`,
	`CREATE TABLE IF NOT EXISTS schedules (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id          INTEGER NOT NULL REFERENCES rooms(id),
		user_id          INTEGER NOT NULL REFERENCES users(id),
		course_id        INTEGER NOT NULL REFERENCES courses(id),
		date             TEXT NOT NULL,
		start_time       INTEGER NOT NULL CHECK (start_time >= 0 AND start_time < 1440),
		end_time         INTEGER NOT NULL CHECK (end_time > 0 AND end_time <= 1440),
		status           TEXT NOT NULL CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
		creation_date    TEXT NOT NULL,
		last_updated     TEXT NOT NULL,
		created_by_email TEXT NOT NULL DEFAULT '',
		updated_by_email TEXT NOT NULL DEFAULT '',
		CHECK (start_time < end_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_room_date ON schedules (room_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_user ON schedules (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_date ON schedules (date)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		user_id    INTEGER NOT NULL REFERENCES users(id),
		token_hash TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at)`,
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	return s.WithTransaction(ctx, func(tx *sql.Tx) error {
		var current int
		err := tx.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		for i := current; i < len(migrations); i++ {
			if _, err := tx.Exec(migrations[i]); err != nil {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
			if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, i+1); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", i+1, err)
			}
		}
		return nil
	})
}
