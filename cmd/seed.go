package cmd

import (
	"fmt"
	"os"

	"shelf/internal/core/config"
	"shelf/internal/core/logger"
	"shelf/internal/database"
	"shelf/internal/inventory/assets"
	"shelf/internal/inventory/category"
	"shelf/internal/locations"
	"shelf/internal/repository"
	"shelf/internal/seed"
	"shelf/internal/users"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewSeedCmd() *cobra.Command {
	var organizationID, file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create locations, categories, team members and assets from a YAML file.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logger.NewLogger(cfg.Env)
			defer func() { _ = log.Sync() }()

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			data, err := seed.Load(f)
			if err != nil {
				return err
			}

			db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := repository.NewRepository(db, database.Dialect(cfg.DatabaseDriver))
			seeder := seed.NewSeeder(
				locations.NewLocationRepository(repo),
				category.NewRepository(repo),
				users.NewRepository(repo),
				assets.NewRepository(repo),
			)

			summary, err := seeder.Apply(cmd.Context(), organizationID, data)
			if err != nil {
				return fmt.Errorf("seed organization %s: %w", organizationID, err)
			}

			log.Info("Seed applied",
				zap.String("organization_id", organizationID),
				zap.Int("categories", summary.Categories),
				zap.Int("team_members", summary.TeamMembers),
				zap.Int("locations", summary.Locations),
				zap.Int("assets", summary.Assets),
			)

			return nil
		},
	}

	cmd.Flags().StringVar(&organizationID, "org-id", "", "Organization id")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed file")
	_ = cmd.MarkFlagRequired("org-id")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
