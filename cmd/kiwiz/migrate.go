package main

import (
	"github.com/spf13/cobra"

	"github.com/kiwiz-app/kiwiz-backend/internal/app"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			log, err := app.NewLogger(cfg.Log.Mode)
			if err != nil {
				return err
			}
			defer log.Sync()

			svc, err := app.OpenDB(log, cfg, true)
			if err != nil {
				return err
			}
			log.Info("migration complete")
			return svc.Close()
		},
	}
}
