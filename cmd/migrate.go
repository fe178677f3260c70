package cmd

import (
	"log/slog"

	"tokoshop/internal/config"
	"tokoshop/internal/database"
	"tokoshop/internal/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the relational schema up to date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Service = "migrate"
			logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Service)

			ctx := cmd.Context()
			db, err := database.Open(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db, cfg.DB.Driver); err != nil {
				return err
			}
			slog.Info("migrations applied", "driver", cfg.DB.Driver)
			return nil
		},
	}
}
