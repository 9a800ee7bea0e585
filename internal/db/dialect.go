package db

import "fmt"

// database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Dialect identifies the SQL flavour spoken by the pool.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DialectFor maps a driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverPostgres:
		return Postgres, nil
	case DriverSQLite:
		return SQLite, nil
	}
	return "", fmt.Errorf("db: unsupported driver %q", driver)
}

// NowQuery returns the statement that selects the server's current timestamp.
func (d Dialect) NowQuery() string {
	if d == SQLite {
		return "SELECT CURRENT_TIMESTAMP"
	}
	return "SELECT NOW()"
}
