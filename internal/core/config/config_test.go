package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"DATABASE_URL": "postgres://localhost/shelf",
		"JWT_SECRET":   "0123456789abcdef",
	}))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, ":8080", cfg.AppHost)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.Archive.Enabled())
}

func TestFromLookupOverrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"APP_ENV":               "production",
		"DATABASE_DRIVER":       "sqlite",
		"DATABASE_URL":          "/var/lib/shelf.db",
		"JWT_SECRET":            "0123456789abcdef",
		"JWT_TTL":               "1h",
		"REQUEST_TIMEOUT":       "5s",
		"QR_BASE_URL":           "https://shelf.example.com",
		"ARCHIVE_S3_BUCKET":     "shelf-archive",
		"ARCHIVE_S3_PATH_STYLE": "TRUE",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "https://shelf.example.com", cfg.QRBaseURL)
	assert.True(t, cfg.Archive.Enabled())
	assert.True(t, cfg.Archive.PathStyle)
	assert.Equal(t, 15*time.Minute, cfg.Archive.LinkExpiry)
}

func TestFromLookupValidation(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{
		"DATABASE_DRIVER": "mysql",
		"JWT_SECRET":      "short",
		"JWT_TTL":         "soon",
	}))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "JWT_TTL")
}
