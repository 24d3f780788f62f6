package cmd

import (
	"context"
	"fmt"
	"os"

	"shelf/internal/core/config"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X shelf/cmd.Version=...".
var Version = "dev"

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shelf",
		Short:         "Shelf asset tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return config.LoadEnvFile(envFile)
		},
	}
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional dotenv file loaded before reading the environment")

	rootCmd.AddCommand(NewServeCmd(), NewMigrateCmd(), NewBootstrapCmd(), NewSeedCmd())

	return rootCmd
}

func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
