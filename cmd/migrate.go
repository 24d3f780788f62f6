package cmd

import (
	"fmt"

	"shelf/internal/core/config"
	"shelf/internal/core/logger"
	"shelf/internal/database"
	"shelf/internal/database/migration"

	"github.com/spf13/cobra"
)

func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations.",
		Long:  `Applies every embedded migration that has not run yet. serve does the same on startup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logger.NewLogger(cfg.Env)
			defer func() { _ = log.Sync() }()

			if err := migration.Migrate(database.MigrationURL(cfg.DatabaseDriver, cfg.DatabaseURL), true, log); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}

			return nil
		},
	}
}
