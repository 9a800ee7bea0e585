// schema prints the embedded events DDL for the configured driver, or applies it with -apply.
// The DDL is idempotent (CREATE ... IF NOT EXISTS); there are no versioned migrations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"eventlog/internal/config"
	"eventlog/internal/db"
)

func main() {
	apply := flag.Bool("apply", false, "Apply the schema to DATABASE_URL instead of printing it")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	dialect, err := db.DialectFor(cfg.DBDriver)
	if err != nil {
		fmt.Fprintln(os.Stderr, "schema:", err)
		os.Exit(1)
	}

	if !*apply {
		ddl, err := db.Schema(dialect)
		if err != nil {
			fmt.Fprintln(os.Stderr, "schema:", err)
			os.Exit(1)
		}
		fmt.Print(ddl)
		return
	}

	if cfg.DSN() == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; create a .env or set DATABASE_URL")
		os.Exit(1)
	}
	pool, err := db.OpenDriver(cfg.DBDriver, cfg.DSN(), db.PoolOptions{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "database:", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := db.ApplySchema(context.Background(), pool, dialect); err != nil {
		fmt.Fprintln(os.Stderr, "schema:", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "schema: applied %s schema\n", dialect)
}
