package store

import "fmt"

// migrations are applied in order. The database's user_version records how
// many have run; append new steps, never edit old ones.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	// One row per run of the frame pipeline
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME
	)`,

	`CREATE TABLE IF NOT EXISTS driver_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		body_id INTEGER NOT NULL,
		change TEXT NOT NULL CHECK(change IN ('acquired', 'lost')),
		created_at DATETIME NOT NULL
	)`,

	// Accepted command tokens only
	`CREATE TABLE IF NOT EXISTS voice_commands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		command TEXT NOT NULL,
		text TEXT NOT NULL,
		confidence REAL NOT NULL,
		changed INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_driver_events_session_id ON driver_events(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_voice_commands_session_id ON voice_commands(session_id)`,
}

// SchemaVersion is the user_version of a fully migrated database.
var SchemaVersion = len(migrations)

// runMigrations applies the migrations the database has not seen yet.
func (s *Store) runMigrations() error {
	version, err := s.schemaVersion()
	if err != nil {
		return err
	}
	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not take bind parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) schemaVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
