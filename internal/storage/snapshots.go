package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gantrydev/gantry/task"
)

// Snapshot is a stored serialized task tree.
type Snapshot struct {
	ID        string        `json:"id"`
	TaskName  string        `json:"task_name"`
	StateName string        `json:"state_name"`
	StateKind string        `json:"state_kind"`
	Finalised bool          `json:"finalised"`
	Root      task.TaskLike `json:"root"`
	CreatedAt time.Time     `json:"created_at"`
}

// SaveSnapshot stores a serialized task tree and returns its id. The full
// tree is stored as JSON in the data column; the root name, state, and
// finalised flag are lifted out for listing and filtering.
func (d *DB) SaveSnapshot(root task.TaskLike, finalised bool) (string, error) {
	data, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	id := uuid.NewString()
	_, err = d.db.Exec(
		`INSERT INTO snapshots (id, task_name, state_name, state_kind, finalised, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, root.Name, root.State.Name, string(root.State.Kind), finalised, string(data),
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("save snapshot for task %s: %w", root.Name, err)
	}
	return id, nil
}

// GetSnapshot retrieves a snapshot by its id. Returns nil when not found.
func (d *DB) GetSnapshot(id string) (*Snapshot, error) {
	row := d.db.QueryRow(
		`SELECT id, task_name, state_name, state_kind, finalised, data, created_at
		 FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return snap, nil
}

// ListSnapshots returns all snapshots ordered by creation time descending.
func (d *DB) ListSnapshots() ([]Snapshot, error) {
	rows, err := d.db.Query(
		`SELECT id, task_name, state_name, state_kind, finalised, data, created_at
		 FROM snapshots ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

// LatestSnapshotForTask returns the most recent snapshot with the given
// root task name, or nil when none exists. Hosts use this to restore
// prior state before a retry attempt.
func (d *DB) LatestSnapshotForTask(taskName string) (*Snapshot, error) {
	row := d.db.QueryRow(
		`SELECT id, task_name, state_name, state_kind, finalised, data, created_at
		 FROM snapshots WHERE task_name = ? ORDER BY created_at DESC, id LIMIT 1`, taskName)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot for task %s: %w", taskName, err)
	}
	return snap, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var snap Snapshot
	var data string
	if err := row.Scan(&snap.ID, &snap.TaskName, &snap.StateName, &snap.StateKind,
		&snap.Finalised, &data, &snap.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &snap.Root); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", snap.ID, err)
	}
	return &snap, nil
}
