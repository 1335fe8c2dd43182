package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gantrydev/gantry/internal/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "gantry",
	Short: "Gantry — task execution and state-tracking engine",
	Long:  "Gantry wraps execute functions into managed tasks and tracks their lifecycle, outcomes, and snapshots across attempts",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gantry version %s\n", version)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			return fmt.Errorf("--config flag is required")
		}

		_, err := config.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Config validation failed: %v\n", err)
			return err
		}

		fmt.Printf("Config validation passed: %s\n", configPath)
		return nil
	},
}

func defaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".gantry", "snapshots.db")
}

// dbPathFromFlags resolves the snapshot store path: --db flag, then
// config file, then the default under the user's home directory.
func dbPathFromFlags(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		return path
	}
	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		if cfg, err := config.LoadConfig(configPath); err == nil && cfg.Storage.Path != "" {
			return cfg.Storage.Path
		}
	}
	return defaultDBPath()
}

func main() {
	// Register flags.
	validateCmd.Flags().StringP("config", "c", "", "Path to config file")
	_ = validateCmd.MarkFlagRequired("config")

	statusCmd.Flags().String("db", "", "Path to snapshot database")
	statusCmd.Flags().StringP("config", "c", "", "Path to config file")

	logsCmd.Flags().String("db", "", "Path to snapshot database")
	logsCmd.Flags().StringP("config", "c", "", "Path to config file")

	serveCmd.Flags().StringP("config", "c", "", "Path to config file")
	serveCmd.Flags().String("db", "", "Path to snapshot database")
	serveCmd.Flags().IntP("port", "p", 0, "Override server port")

	// Register all commands.
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
