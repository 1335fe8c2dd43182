package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gantrydev/gantry/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List stored task snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(dbPathFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		snaps, err := db.ListSnapshots()
		if err != nil {
			return fmt.Errorf("list snapshots: %w", err)
		}

		if len(snaps) == 0 {
			fmt.Println("No snapshots found.")
			return nil
		}

		fmt.Fprintf(os.Stdout, "%-38s %-20s %-14s %-10s %-10s %s\n",
			"SNAPSHOT ID", "TASK", "STATE", "KIND", "FINALISED", "CREATED")
		fmt.Println("--------------------------------------------------------------------------------------------------------")

		for _, s := range snaps {
			fmt.Fprintf(os.Stdout, "%-38s %-20s %-14s %-10s %-10v %s\n",
				s.ID,
				truncate(s.TaskName, 18),
				truncate(s.StateName, 12),
				s.StateKind,
				s.Finalised,
				s.CreatedAt.Format("2006-01-02 15:04"),
			)
		}

		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-2] + ".."
}
