package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"shelf/internal/archive"
	"shelf/internal/database"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	DatabaseDriver string
	DatabaseURL    string
	AppHost        string
	JWTSecret      string
	JWTTTL         time.Duration
	RequestTimeout time.Duration
	QRBaseURL      string
	// Archive is optional; without a bucket the archive routes stay disabled.
	Archive archive.Config
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	minSecretLength = 16
)

// LoadEnvFile reads .env into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}

	return nil
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, applying defaults and validation.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := &Config{
		Env:            get("APP_ENV", EnvDevelopment),
		DatabaseDriver: get("DATABASE_DRIVER", database.DriverPostgres),
		DatabaseURL:    get("DATABASE_URL", ""),
		AppHost:        get("APP_HOST", ":8080"),
		JWTSecret:      get("JWT_SECRET", ""),
		QRBaseURL:      get("QR_BASE_URL", "http://localhost:8080"),
		Archive: archive.Config{
			Bucket:    get("ARCHIVE_S3_BUCKET", ""),
			Region:    get("ARCHIVE_S3_REGION", ""),
			Endpoint:  get("ARCHIVE_S3_ENDPOINT", ""),
			PathStyle: strings.EqualFold(get("ARCHIVE_S3_PATH_STYLE", "false"), "true"),
		},
	}

	var errs []error

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(get("JWT_TTL", "24h")); err != nil {
		errs = append(errs, fmt.Errorf("JWT_TTL: %w", err))
	} else if cfg.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if cfg.RequestTimeout, err = time.ParseDuration(get("REQUEST_TIMEOUT", "30s")); err != nil {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT: %w", err))
	}
	if cfg.Archive.LinkExpiry, err = time.ParseDuration(get("ARCHIVE_LINK_TTL", "15m")); err != nil {
		errs = append(errs, fmt.Errorf("ARCHIVE_LINK_TTL: %w", err))
	}

	switch cfg.DatabaseDriver {
	case database.DriverPostgres, database.DriverPgx, database.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER: unsupported driver %q", cfg.DatabaseDriver))
	}
	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if len(cfg.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
