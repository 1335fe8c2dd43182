// Package storage persists serialized task-tree snapshots so work can be
// resumed on a later attempt with prior state restored. The engine itself
// persists nothing; hosts call this store with the records produced by
// Task.ToTaskLike.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path and runs migrations.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id         TEXT PRIMARY KEY,
		task_name  TEXT NOT NULL,
		state_name TEXT NOT NULL,
		state_kind TEXT NOT NULL,
		finalised  INTEGER NOT NULL DEFAULT 0,
		data       TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_task ON snapshots(task_name, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at DESC);

	CREATE TABLE IF NOT EXISTS run_logs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		snapshot_id TEXT NOT NULL,
		timestamp   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		level       TEXT NOT NULL DEFAULT 'info',
		message     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_logs_snapshot ON run_logs(snapshot_id, id);
	`

	_, err := d.db.Exec(schema)
	return err
}
