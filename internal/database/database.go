package database

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured store. driver is postgres, pgx or sqlite,
// dbURL is the driver specific DSN. pgx talks to the same postgres schema
// through the jackc/pgx database/sql adapter.
func Open(driver, dbURL string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresConnection(dbURL)
	case DriverPgx:
		return NewPgxConnection(dbURL)
	case DriverSQLite:
		return NewSQLiteConnection(dbURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func NewPostgresConnection(dbURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping the database: %w", err)
	}

	return db, nil
}

func NewPgxConnection(dbURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to postgres via pgx: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping the database: %w", err)
	}

	return db, nil
}

// NewSQLiteConnection opens a file backed sqlite database with foreign keys on.
// sqlite allows a single writer, so the pool is capped at one connection and
// concurrent transactions queue on the pool instead of failing with SQLITE_BUSY.
func NewSQLiteConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping the database: %w", err)
	}

	return db, nil
}

// Dialect returns the goqu dialect name matching a driver.
func Dialect(driver string) string {
	if driver == DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// MigrationURL returns the golang-migrate database URL for a driver and DSN.
func MigrationURL(driver, dbURL string) string {
	if driver == DriverSQLite {
		return "sqlite://" + dbURL
	}
	return dbURL
}
