// Package service implements the event store gateway: one write operation and the read-side
// aggregations, each a direct pass-through to the repository.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"eventlog/internal/event/domain"
	"eventlog/internal/event/repository"
	"eventlog/internal/metrics"
	"eventlog/internal/telemetry"
)

// RecentLimit is the fixed number of events ListRecentEvents returns.
const RecentLimit = 20

var (
	// ErrSaveFailed wraps every RecordEvent failure, whether the store rejected the row or was unreachable.
	ErrSaveFailed = errors.New("failed to save event")
	// ErrFetchFailed wraps every read-side failure.
	ErrFetchFailed = errors.New("failed to fetch")
)

// Service is the event store gateway. It holds no per-request state and is safe for concurrent use.
type Service struct {
	repo    repository.Repository
	emitter telemetry.EventEmitter
	newID   func() string
}

// NewService returns a Service over repo. emitter may be nil; then recorded events are not fanned out.
func NewService(repo repository.Repository, emitter telemetry.EventEmitter) *Service {
	return &Service{
		repo:    repo,
		emitter: emitter,
		newID:   func() string { return uuid.New().String() },
	}
}

// RecordEvent inserts one event with a fresh id and returns the stored row.
// Fields are passed through unvalidated; the store decides what to reject.
func (s *Service) RecordEvent(ctx context.Context, in domain.NewEvent) (*domain.Event, error) {
	e, err := s.repo.Create(ctx, s.newID(), in)
	if err != nil {
		metrics.StoreFailures.WithLabelValues("record_event").Inc()
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	metrics.EventsRecorded.Inc()
	telemetry.EmitAsync(s.emitter, ctx, e)
	return e, nil
}

// ListRecentEvents returns the RecentLimit most recent events, newest first.
func (s *Service) ListRecentEvents(ctx context.Context) ([]*domain.Event, error) {
	list, err := s.repo.ListRecent(ctx, RecentLimit)
	if err != nil {
		return nil, fetchFailed("list_recent_events", err)
	}
	return list, nil
}

// GetSummaryStats runs four independent queries. They share no transaction, so under
// concurrent writes the numbers may come from slightly different snapshots.
func (s *Service) GetSummaryStats(ctx context.Context) (*domain.SummaryStats, error) {
	var (
		stats domain.SummaryStats
		err   error
	)
	if stats.TotalEvents, err = s.repo.CountAll(ctx); err != nil {
		return nil, fetchFailed("summary_stats", err)
	}
	if stats.EventsToday, err = s.repo.CountToday(ctx); err != nil {
		return nil, fetchFailed("summary_stats", err)
	}
	if stats.ActiveSources, err = s.repo.CountDistinctSources(ctx); err != nil {
		return nil, fetchFailed("summary_stats", err)
	}
	if stats.TopEvent, err = s.repo.TopEventType(ctx); err != nil {
		return nil, fetchFailed("summary_stats", err)
	}
	return &stats, nil
}

// GetDailyStats returns per-source, per-day counts ordered by day then source.
func (s *Service) GetDailyStats(ctx context.Context) ([]domain.DailyCount, error) {
	daily, err := s.repo.DailyCounts(ctx)
	if err != nil {
		return nil, fetchFailed("daily_stats", err)
	}
	return daily, nil
}

// GetTopEventTypes returns every event type with its count, most frequent first.
func (s *Service) GetTopEventTypes(ctx context.Context) ([]domain.EventTypeCount, error) {
	top, err := s.repo.EventTypeCounts(ctx)
	if err != nil {
		return nil, fetchFailed("top_event_types", err)
	}
	return top, nil
}

// Dashboard is everything the HTML view renders.
type Dashboard struct {
	Summary *domain.SummaryStats
	Daily   []domain.DailyCount
	Top     []domain.EventTypeCount
	Recent  []*domain.Event
}

// GetDashboard runs the summary, daily, top and recent queries one after another.
func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	summary, err := s.GetSummaryStats(ctx)
	if err != nil {
		return nil, err
	}
	daily, err := s.GetDailyStats(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.GetTopEventTypes(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.ListRecentEvents(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Summary: summary, Daily: daily, Top: top, Recent: recent}, nil
}

func fetchFailed(op string, err error) error {
	metrics.StoreFailures.WithLabelValues(op).Inc()
	return fmt.Errorf("%w: %s: %w", ErrFetchFailed, op, err)
}
