package db

import (
	"database/sql"
	"fmt"
)

// All contains the ordered list of migrations to apply.
var All = []string{
	`CREATE TABLE runs (
		id            INTEGER PRIMARY KEY,
		run_id        TEXT UNIQUE NOT NULL,
		robot_version TEXT NOT NULL,
		files_checked INTEGER NOT NULL DEFAULT 0,
		started_at    DATETIME NOT NULL DEFAULT (datetime('now')),
		finished_at   DATETIME
	)`,
	`CREATE TABLE files (
		id         INTEGER PRIMARY KEY,
		file_path  TEXT UNIQUE NOT NULL,
		created_at DATETIME NOT NULL DEFAULT (datetime('now')),
		updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE markers (
		id           INTEGER PRIMARY KEY,
		run_id       INTEGER NOT NULL REFERENCES runs(id),
		file_id      INTEGER NOT NULL REFERENCES files(id),
		code         TEXT NOT NULL,
		severity     TEXT NOT NULL,
		message      TEXT NOT NULL,
		line         INTEGER NOT NULL,
		col          INTEGER NOT NULL,
		start_offset INTEGER NOT NULL,
		end_offset   INTEGER NOT NULL
	)`,
	`CREATE INDEX markers_by_file ON markers (file_id, run_id)`,
}

// Migrate brings the schema up to len(All), one transaction per step.
func Migrate(db *sql.DB) error {
	current, err := schemaVersion(db)
	if err != nil {
		return err
	}
	for i := current; i < len(All); i++ {
		if err := apply(db, i+1, All[i]); err != nil {
			return err
		}
	}
	return nil
}

func schemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return 0, fmt.Errorf("creating schema_version table: %w", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&count); err != nil {
		return 0, fmt.Errorf("checking schema_version: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return 0, fmt.Errorf("initializing schema version: %w", err)
		}
	}

	var current int
	if err := db.QueryRow(`SELECT version FROM schema_version`).Scan(&current); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return current, nil
}

func apply(db *sql.DB, version int, stmt string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration %d: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("migration %d failed: %w", version, err)
	}
	if _, err := tx.Exec(`UPDATE schema_version SET version = ?`, version); err != nil {
		return fmt.Errorf("updating schema version to %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %d: %w", version, err)
	}
	return nil
}
