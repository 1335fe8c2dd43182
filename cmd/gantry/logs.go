package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gantrydev/gantry/internal/storage"
)

var logsCmd = &cobra.Command{
	Use:   "logs <snapshot-id>",
	Short: "Show run logs for a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(dbPathFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		snapshotID := args[0]
		snap, err := db.GetSnapshot(snapshotID)
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}
		if snap == nil {
			return fmt.Errorf("snapshot %s not found", snapshotID)
		}

		logs, err := db.GetRunLogs(snapshotID)
		if err != nil {
			return fmt.Errorf("get run logs: %w", err)
		}
		if len(logs) == 0 {
			fmt.Println("No logs recorded.")
			return nil
		}

		for _, l := range logs {
			fmt.Printf("%s [%s] %s\n", l.Timestamp.Format("2006-01-02 15:04:05"), l.Level, l.Message)
		}
		return nil
	},
}
