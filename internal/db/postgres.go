// Package db opens the shared connection pool and owns the events schema.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// PoolOptions configures the database/sql pool. Zero values keep the database/sql defaults.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open opens a Postgres connection using the given DSN. Caller must call Close when done.
func Open(dsn string) (*sql.DB, error) {
	return OpenDriver(DriverPostgres, dsn, PoolOptions{})
}

// OpenDriver opens a pool for driver ("pgx" or "sqlite"), applies opts and pings it.
func OpenDriver(driver, dsn string, opts PoolOptions) (*sql.DB, error) {
	db, err := OpenPool(driver, dsn, opts)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenPool opens a pool without connecting; the first query dials. The server uses it so an
// unreachable database fails requests instead of startup.
// SQLite pools are pinned to a single connection so in-memory databases are shared.
func OpenPool(driver, dsn string, opts PoolOptions) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("db: DSN is empty; set DATABASE_URL or PGHOST")
	}
	if _, err := DialectFor(driver); err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		opts.MaxOpenConns = 1
		opts.ConnMaxLifetime = 0
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return db, nil
}

// Probe asks the database for its current time. Used as the startup connectivity check.
func Probe(ctx context.Context, db *sql.DB, dialect Dialect) (string, error) {
	var now string
	if err := db.QueryRowContext(ctx, dialect.NowQuery()).Scan(&now); err != nil {
		return "", fmt.Errorf("db: probe: %w", err)
	}
	return now, nil
}
