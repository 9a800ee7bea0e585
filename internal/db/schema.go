package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
)

// schemaFS holds the idempotent CREATE statements for each dialect.
//
//go:embed schema/*.sql
var schemaFS embed.FS

// Schema returns the DDL for dialect.
func Schema(dialect Dialect) (string, error) {
	b, err := schemaFS.ReadFile("schema/" + string(dialect) + ".sql")
	if err != nil {
		return "", fmt.Errorf("db: schema for %s: %w", dialect, err)
	}
	return string(b), nil
}

// ApplySchema creates the events table and its indexes if they do not exist yet.
func ApplySchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	ddl, err := Schema(dialect)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("db: apply schema: %w", err)
	}
	return nil
}
