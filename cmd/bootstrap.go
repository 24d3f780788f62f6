package cmd

import (
	"fmt"

	"shelf/internal/core/config"
	"shelf/internal/core/logger"
	"shelf/internal/database"
	"shelf/internal/repository"
	"shelf/internal/users"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

func NewBootstrapCmd() *cobra.Command {
	var organization, username, password string

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create an organization with its owner account.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(password) < minPasswordLength {
				return fmt.Errorf("password must be at least %d characters", minPasswordLength)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logger.NewLogger(cfg.Env)
			defer func() { _ = log.Sync() }()

			db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			repo := repository.NewRepository(db, database.Dialect(cfg.DatabaseDriver))
			org, user, err := users.Bootstrap(cmd.Context(), repo, organization, username, hash)
			if err != nil {
				return fmt.Errorf("bootstrap organization: %w", err)
			}

			log.Info("Organization created",
				zap.String("organization_id", org.ID),
				zap.String("organization", org.Name),
				zap.String("owner_id", user.ID),
				zap.String("owner", user.Username),
			)

			return nil
		},
	}

	cmd.Flags().StringVar(&organization, "org", "", "Organization name")
	cmd.Flags().StringVar(&username, "username", "", "Owner username")
	cmd.Flags().StringVar(&password, "password", "", "Owner password")
	for _, name := range []string{"org", "username", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
