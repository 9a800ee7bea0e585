package repository

import (
	"context"

	"eventlog/internal/event/domain"
)

// Repository defines persistence and the read-side aggregations for events.
type Repository interface {
	// Create inserts in under id and returns the row the store wrote.
	Create(ctx context.Context, id string, in domain.NewEvent) (*domain.Event, error)
	// ListRecent returns up to limit events ordered by occurred_at descending.
	ListRecent(ctx context.Context, limit int) ([]*domain.Event, error)
	CountAll(ctx context.Context) (int64, error)
	// CountToday counts events whose occurred_at falls on the store's current date.
	CountToday(ctx context.Context) (int64, error)
	CountDistinctSources(ctx context.Context) (int64, error)
	// TopEventType returns the most frequent event type, or nil when there are no events.
	TopEventType(ctx context.Context) (*string, error)
	// DailyCounts groups by (source, day) ordered by day then source.
	DailyCounts(ctx context.Context) ([]domain.DailyCount, error)
	// EventTypeCounts groups by event type ordered by count descending.
	EventTypeCounts(ctx context.Context) ([]domain.EventTypeCount, error)
}
