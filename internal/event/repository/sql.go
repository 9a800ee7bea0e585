package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventlog/internal/db"
	"eventlog/internal/event/domain"
)

// SQLRepository implements Repository with plain parameterized SQL over a shared *sql.DB pool.
type SQLRepository struct {
	db      *sql.DB
	dialect db.Dialect
	q       queries
}

var _ Repository = (*SQLRepository)(nil)

// sqliteTimeFormat sorts lexically in time order as long as every value is UTC.
const sqliteTimeFormat = "2006-01-02 15:04:05.999999999-07:00"

// NewSQLRepository returns an event repository speaking dialect over the given pool.
func NewSQLRepository(pool *sql.DB, dialect db.Dialect) *SQLRepository {
	return &SQLRepository{db: pool, dialect: dialect, q: queriesFor(dialect)}
}

// NewPostgresRepository returns an event repository that uses the given Postgres pool.
func NewPostgresRepository(pool *sql.DB) *SQLRepository {
	return NewSQLRepository(pool, db.Postgres)
}

// Create inserts the event and returns the stored row. Missing fields are sent as NULL.
func (r *SQLRepository) Create(ctx context.Context, id string, in domain.NewEvent) (*domain.Event, error) {
	occurredAt, err := r.timeArg(in.OccurredAt)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	row := r.db.QueryRowContext(ctx, r.q.insert,
		id, nullableString(in.Source), nullableString(in.EventType), occurredAt, nullableJSON(in.Metadata))
	e, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

// ListRecent returns the most recent events by occurred_at, newest first.
func (r *SQLRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, r.q.listRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Event, 0, limit)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	return out, nil
}

// CountAll returns the number of rows in the events table.
func (r *SQLRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, r.q.countAll, "count events")
}

// CountToday counts events whose occurred_at falls on the store's current date.
func (r *SQLRepository) CountToday(ctx context.Context) (int64, error) {
	return r.count(ctx, r.q.countToday, "count events today")
}

// CountDistinctSources counts distinct non-null sources.
func (r *SQLRepository) CountDistinctSources(ctx context.Context) (int64, error) {
	return r.count(ctx, r.q.countSources, "count sources")
}

// TopEventType returns the event type with the highest count. Ties are broken by the store.
func (r *SQLRepository) TopEventType(ctx context.Context) (*string, error) {
	var top sql.NullString
	err := r.db.QueryRowContext(ctx, r.q.topEventType).Scan(&top)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("top event type: %w", err)
	}
	return ptrFromNullString(top), nil
}

// DailyCounts returns per-source, per-day counts ordered by day then source.
func (r *SQLRepository) DailyCounts(ctx context.Context) ([]domain.DailyCount, error) {
	rows, err := r.db.QueryContext(ctx, r.q.dailyCounts)
	if err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	defer rows.Close()

	out := []domain.DailyCount{}
	for rows.Next() {
		var (
			source sql.NullString
			d      domain.DailyCount
		)
		if err := rows.Scan(&source, &d.Day, &d.Count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		d.Source = source.String
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	return out, nil
}

// EventTypeCounts returns every event type with its count, most frequent first.
func (r *SQLRepository) EventTypeCounts(ctx context.Context) ([]domain.EventTypeCount, error) {
	rows, err := r.db.QueryContext(ctx, r.q.eventTypeCounts)
	if err != nil {
		return nil, fmt.Errorf("event type counts: %w", err)
	}
	defer rows.Close()

	out := []domain.EventTypeCount{}
	for rows.Next() {
		var (
			eventType sql.NullString
			c         domain.EventTypeCount
		)
		if err := rows.Scan(&eventType, &c.EventCount); err != nil {
			return nil, fmt.Errorf("scan event type count: %w", err)
		}
		c.EventType = eventType.String
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("event type counts: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) count(ctx context.Context, query, what string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*domain.Event, error) {
	var (
		id         string
		source     sql.NullString
		eventType  sql.NullString
		occurredAt nullTimestamp
		metadata   []byte
	)
	if err := s.Scan(&id, &source, &eventType, &occurredAt, &metadata); err != nil {
		return nil, err
	}
	e := &domain.Event{
		ID:        id,
		Source:    ptrFromNullString(source),
		EventType: ptrFromNullString(eventType),
	}
	if occurredAt.Valid {
		t := occurredAt.Time
		e.OccurredAt = &t
	}
	if len(metadata) > 0 {
		e.Metadata = json.RawMessage(metadata)
	}
	return e, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// timeArg hands occurred_at to Postgres as text for its timestamptz cast. SQLite has no
// timestamp type, so the text is parsed here and stored as UTC; zoneless values are taken as UTC.
func (r *SQLRepository) timeArg(s *string) (any, error) {
	if s == nil {
		return nil, nil
	}
	if r.dialect != db.SQLite {
		return *s, nil
	}
	t, err := parseTimestamp(strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return t.UTC().Format(sqliteTimeFormat), nil
}

// nullableJSON maps absent and JSON null metadata to SQL NULL; anything else is stored verbatim.
func nullableJSON(raw json.RawMessage) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return string(raw)
}

func ptrFromNullString(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return &n.String
}

// timestampLayouts covers what the supported drivers hand back for timestamp columns when
// they return text instead of time.Time, and the client input forms SQLite accepts for occurred_at.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// nullTimestamp scans a nullable timestamp delivered either as time.Time or as text.
type nullTimestamp struct {
	Time  time.Time
	Valid bool
}

func (n *nullTimestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time, n.Valid = v, true
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	}
	return fmt.Errorf("unsupported timestamp type %T", src)
}

func (n *nullTimestamp) parse(s string) error {
	t, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	n.Time, n.Valid = t, true
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid input syntax for type timestamp: %q", s)
}
