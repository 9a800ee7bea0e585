// seed inserts sample events for local testing: go run ./cmd/seed -count 200.
// Events are spread over the last -days days so the daily view has history.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"eventlog/internal/config"
	"eventlog/internal/db"
	"eventlog/internal/event/domain"
	"eventlog/internal/event/repository"
	"eventlog/internal/event/service"
)

var (
	sampleSources = []string{"web", "ios", "android", "api", "cli"}
	sampleTypes   = []string{"page_view", "click", "signup", "login", "purchase", "logout"}
)

func main() {
	count := flag.Int("count", 100, "Number of events to insert")
	days := flag.Int("days", 7, "Spread events over this many past days")
	seed := flag.Uint64("seed", 1, "Random seed, for reproducible data")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	opts := db.PoolOptions{MaxOpenConns: cfg.DBMaxOpenConns}
	inserted, err := run(context.Background(), cfg.DBDriver, cfg.DSN(), opts, *count, *days, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: inserted %d of %d: %v\n", inserted, *count, err)
		os.Exit(1)
	}
	log.Printf("seed: inserted %d events", inserted)
}

// run opens the store, applies the schema and records count sample events. The pool is
// closed before run returns, so callers may exit on error.
func run(ctx context.Context, driver, dsn string, opts db.PoolOptions, count, days int, seed uint64) (int, error) {
	dialect, err := db.DialectFor(driver)
	if err != nil {
		return 0, fmt.Errorf("database: %w", err)
	}
	pool, err := db.OpenDriver(driver, dsn, opts)
	if err != nil {
		return 0, fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	if err := db.ApplySchema(ctx, pool, dialect); err != nil {
		return 0, fmt.Errorf("schema: %w", err)
	}

	svc := service.NewService(repository.NewSQLRepository(pool, dialect), nil)
	rng := rand.New(rand.NewPCG(seed, seed))
	return seedEvents(ctx, svc, rng, count, days, time.Now().UTC())
}

type recorder interface {
	RecordEvent(ctx context.Context, in domain.NewEvent) (*domain.Event, error)
}

// seedEvents records count events with occurred_at spread over the days before now.
func seedEvents(ctx context.Context, svc recorder, rng *rand.Rand, count, days int, now time.Time) (int, error) {
	if days < 1 {
		days = 1
	}
	window := time.Duration(days) * 24 * time.Hour
	for i := 0; i < count; i++ {
		source := sampleSources[rng.IntN(len(sampleSources))]
		eventType := sampleTypes[rng.IntN(len(sampleTypes))]
		at := now.Add(-time.Duration(rng.Int64N(int64(window)))).Format(time.RFC3339Nano)
		meta, err := json.Marshal(map[string]any{"seq": i, "sample": true})
		if err != nil {
			return i, err
		}
		if _, err := svc.RecordEvent(ctx, domain.NewEvent{
			Source:     &source,
			EventType:  &eventType,
			OccurredAt: &at,
			Metadata:   meta,
		}); err != nil {
			return i, err
		}
	}
	return count, nil
}
