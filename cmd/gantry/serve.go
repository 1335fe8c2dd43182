package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gantrydev/gantry/internal/config"
	"github.com/gantrydev/gantry/internal/storage"
	"github.com/gantrydev/gantry/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the snapshot inspection server",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		port, _ := cmd.Flags().GetInt("port")

		serverCfg := config.ServerConfig{}
		if configPath != "" {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			serverCfg = cfg.Server
		}
		if port > 0 {
			serverCfg.Port = port
		}

		db, err := storage.Open(dbPathFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		srv := web.NewServer(serverCfg, web.NewHandler(db))
		return srv.ListenAndServe(context.Background())
	},
}
