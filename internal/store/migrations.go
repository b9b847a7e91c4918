package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	// Create the schema_version table if it does not exist.
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			kind              TEXT NOT NULL CHECK (kind IN ('manual', 'automatic')),
			date              TEXT NOT NULL,
			status            TEXT NOT NULL DEFAULT 'active'
			                  CHECK (status IN ('active', 'paused', 'completed')),
			total_seconds     INTEGER NOT NULL DEFAULT 0 CHECK (total_seconds >= 0),
			last_tick         TEXT NOT NULL,
			notified          BOOLEAN NOT NULL DEFAULT false,
			last_break_notify INTEGER NOT NULL DEFAULT 0,
			start_time        TEXT NOT NULL,
			end_time          TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS lock_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id  INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			event_type  TEXT NOT NULL CHECK (event_type IN ('lock', 'unlock')),
			timestamp   TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS app_usage (
			date          TEXT NOT NULL,
			app_name      TEXT NOT NULL,
			total_seconds INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (date, app_name)
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_sessions_kind_status ON sessions(kind, status)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_automatic_date ON sessions(date) WHERE kind = 'automatic'`,
		`CREATE INDEX IF NOT EXISTS idx_lock_events_session ON lock_events(session_id)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	// Set schema version.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
