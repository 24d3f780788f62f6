package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shelf/internal/core/config"
	"shelf/internal/core/container"
	"shelf/internal/core/logger"
	"shelf/internal/core/routes"
	"shelf/internal/database"
	"shelf/internal/database/migration"
	"shelf/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func NewServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logger.NewLogger(cfg.Env)
			defer func() { _ = log.Sync() }()

			if cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}
			security.Configure(cfg.JWTSecret, cfg.JWTTTL)

			if !skipMigrations {
				if err := migration.Migrate(database.MigrationURL(cfg.DatabaseDriver, cfg.DatabaseURL), false, log); err != nil {
					return fmt.Errorf("migrate database: %w", err)
				}
			}

			db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			log.Info("Connected to the database", zap.String("driver", cfg.DatabaseDriver))

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				collectors.NewDBStatsCollector(db, "shelf"),
			)

			c, err := container.NewAppContainer(cmd.Context(), db, cfg, log, reg, Version)
			if err != nil {
				return fmt.Errorf("build container: %w", err)
			}
			defer c.Close()

			server := &http.Server{
				Addr:              cfg.AppHost,
				Handler:           routes.NewRouter(c, log, reg, cfg.RequestTimeout),
				ReadHeaderTimeout: 10 * time.Second,
			}

			return run(cmd.Context(), server, log)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply migrations on startup")

	return cmd
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, server *http.Server, log *zap.Logger) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
