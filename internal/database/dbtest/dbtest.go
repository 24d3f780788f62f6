// Package dbtest provides sqlite backed repositories migrated with the real
// schema, plus seed helpers for integration tests.
package dbtest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shelf/internal/database"
	"shelf/internal/database/migration"
	"shelf/internal/repository"
	"shelf/pkg/metadata"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func NewRepository(t testing.TB) *repository.Repository {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shelf.db")
	err := migration.Migrate(database.MigrationURL(database.DriverSQLite, path), false, zap.NewNop())
	require.NoError(t, err, "migrate test database")

	db, err := database.NewSQLiteConnection(path)
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = db.Close() })

	return repository.NewRepository(db, database.Dialect(database.DriverSQLite))
}

// PostgresDSNEnv names the variable holding a postgres URL for tests that need
// real concurrent transactions. Those tests are skipped when it is unset.
const PostgresDSNEnv = "SHELF_TEST_POSTGRES_DSN"

// NewPostgresRepository migrates the database behind PostgresDSNEnv and opens
// a pooled connection to it. Tests share the database and isolate their data
// by creating their own organization.
func NewPostgresRepository(t testing.TB) *repository.Repository {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}

	err := migration.Migrate(database.MigrationURL(database.DriverPostgres, dsn), false, zap.NewNop())
	require.NoError(t, err, "migrate postgres test database")

	db, err := database.NewPostgresConnection(dsn)
	require.NoError(t, err, "open postgres test database")
	db.SetMaxOpenConns(8)
	t.Cleanup(func() { _ = db.Close() })

	return repository.NewRepository(db, database.Dialect(database.DriverPostgres))
}

func Organization(t testing.TB, r *repository.Repository, name string) string {
	t.Helper()
	id := uuid.NewString()
	insert(t, r, "organizations", goqu.Record{"id": id, "name": name, "created_at": time.Now().UTC()})
	return id
}

func TeamMember(t testing.TB, r *repository.Repository, orgID, name string) string {
	t.Helper()
	id := uuid.NewString()
	insert(t, r, "team_members", goqu.Record{
		"id":              id,
		"organization_id": orgID,
		"name":            name,
		"created_at":      time.Now().UTC(),
	})
	return id
}

// Location inserts a location; parentID may be empty for a root location.
func Location(t testing.TB, r *repository.Repository, orgID, parentID, name string) string {
	t.Helper()
	id := uuid.NewString()
	record := goqu.Record{
		"id":              id,
		"organization_id": orgID,
		"name":            name,
		"created_at":      time.Now().UTC(),
		"updated_at":      time.Now().UTC(),
	}
	if parentID != "" {
		record["parent_id"] = parentID
	}
	insert(t, r, "locations", record)
	return id
}

// Asset inserts an AVAILABLE asset; locationID may be empty.
func Asset(t testing.TB, r *repository.Repository, orgID, locationID, title string) string {
	t.Helper()
	id := uuid.NewString()
	seq := nextSeq(t, r, "assets", orgID)
	code := metadata.NewCode("", seq)
	record := goqu.Record{
		"id":              id,
		"organization_id": orgID,
		"title":           title,
		"status":          string(metadata.StatusAvailable),
		"code":            code.String(),
		"code_seq":        seq,
		"created_at":      time.Now().UTC(),
		"updated_at":      time.Now().UTC(),
	}
	if locationID != "" {
		record["location_id"] = locationID
	}
	insert(t, r, "assets", record)
	return id
}

func Kit(t testing.TB, r *repository.Repository, orgID, name string) string {
	t.Helper()
	id := uuid.NewString()
	seq := nextSeq(t, r, "kits", orgID)
	code := metadata.NewKitCode(seq)
	insert(t, r, "kits", goqu.Record{
		"id":              id,
		"organization_id": orgID,
		"name":            name,
		"status":          string(metadata.StatusAvailable),
		"code":            code.String(),
		"code_seq":        seq,
		"created_at":      time.Now().UTC(),
		"updated_at":      time.Now().UTC(),
	})
	return id
}

func insert(t testing.TB, r *repository.Repository, table string, record goqu.Record) {
	t.Helper()
	_, err := r.GoquDBWrapper.Insert(table).Rows(record).Executor().Exec()
	require.NoError(t, err, "seed %s", table)
}

func nextSeq(t testing.TB, r *repository.Repository, table, orgID string) int {
	t.Helper()
	var seq int
	_, err := r.GoquDBWrapper.
		Select(goqu.COALESCE(goqu.MAX("code_seq"), 0)).
		From(table).
		Where(goqu.Ex{"organization_id": orgID}).
		Executor().
		ScanVal(&seq)
	require.NoError(t, err)
	return seq + 1
}
