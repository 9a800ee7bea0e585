package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"eventlog/internal/db"
	"eventlog/internal/event/domain"
)

type countingRecorder struct {
	events []domain.NewEvent
	failAt int
}

func (c *countingRecorder) RecordEvent(ctx context.Context, in domain.NewEvent) (*domain.Event, error) {
	if c.failAt > 0 && len(c.events) == c.failAt {
		return nil, errors.New("store down")
	}
	c.events = append(c.events, in)
	return &domain.Event{ID: "x"}, nil
}

func TestSeedEvents(t *testing.T) {
	rec := &countingRecorder{}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	n, err := seedEvents(context.Background(), rec, rand.New(rand.NewPCG(1, 1)), 50, 3, now)
	if err != nil {
		t.Fatalf("seedEvents: %v", err)
	}
	if n != 50 || len(rec.events) != 50 {
		t.Fatalf("inserted %d (%d recorded), want 50", n, len(rec.events))
	}
	earliest := now.Add(-3 * 24 * time.Hour)
	for _, e := range rec.events {
		if e.Source == nil || e.EventType == nil || e.OccurredAt == nil || len(e.Metadata) == 0 {
			t.Fatalf("seeded event has empty fields: %+v", e)
		}
		at, err := time.Parse(time.RFC3339Nano, *e.OccurredAt)
		if err != nil {
			t.Fatalf("occurred_at %q: %v", *e.OccurredAt, err)
		}
		if at.After(now) || at.Before(earliest) {
			t.Errorf("occurred_at %v outside [%v, %v]", at, earliest, now)
		}
	}
}

func TestSeedEvents_StopsOnError(t *testing.T) {
	rec := &countingRecorder{failAt: 5}
	n, err := seedEvents(context.Background(), rec, rand.New(rand.NewPCG(1, 1)), 10, 1, time.Now())
	if err == nil {
		t.Fatal("seedEvents should return the store error")
	}
	if n != 5 {
		t.Errorf("inserted = %d, want 5", n)
	}
}

func TestRun_SQLite(t *testing.T) {
	n, err := run(context.Background(), db.DriverSQLite, "file::memory:", db.PoolOptions{}, 20, 2, 7)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 20 {
		t.Errorf("inserted = %d, want 20", n)
	}
}

func TestRun_ReturnsSetupErrors(t *testing.T) {
	n, err := run(context.Background(), "mysql", "", db.PoolOptions{}, 5, 1, 1)
	if err == nil {
		t.Fatal("run should return an error for an unknown driver")
	}
	if n != 0 {
		t.Errorf("inserted = %d, want 0", n)
	}
}
