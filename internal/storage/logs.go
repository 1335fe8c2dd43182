package storage

import (
	"fmt"
	"time"
)

// RunLog is a single log line recorded against a snapshot.
type RunLog struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// AddRunLog appends a log line for the given snapshot.
func (d *DB) AddRunLog(snapshotID, level, message string) error {
	if level == "" {
		level = "info"
	}
	_, err := d.db.Exec(
		`INSERT INTO run_logs (snapshot_id, timestamp, level, message) VALUES (?, ?, ?, ?)`,
		snapshotID, time.Now().UTC(), level, message,
	)
	if err != nil {
		return fmt.Errorf("add run log for %s: %w", snapshotID, err)
	}
	return nil
}

// GetRunLogs returns the log lines for a snapshot in insertion order.
func (d *DB) GetRunLogs(snapshotID string) ([]RunLog, error) {
	rows, err := d.db.Query(
		`SELECT id, timestamp, level, message FROM run_logs WHERE snapshot_id = ? ORDER BY id`,
		snapshotID,
	)
	if err != nil {
		return nil, fmt.Errorf("get run logs for %s: %w", snapshotID, err)
	}
	defer rows.Close()

	var logs []RunLog
	for rows.Next() {
		var l RunLog
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Level, &l.Message); err != nil {
			return nil, fmt.Errorf("scan run log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
