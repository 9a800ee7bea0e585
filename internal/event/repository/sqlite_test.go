package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlog/internal/db"
	"eventlog/internal/event/domain"
)

func newSQLiteRepo(t *testing.T) *SQLRepository {
	t.Helper()
	pool, err := db.OpenDriver(db.DriverSQLite, "file::memory:", db.PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	require.NoError(t, db.ApplySchema(context.Background(), pool, db.SQLite))
	return NewSQLRepository(pool, db.SQLite)
}

func insert(t *testing.T, repo *SQLRepository, source, eventType string, at time.Time) *domain.Event {
	t.Helper()
	occurredAt := at.Format(time.RFC3339Nano)
	e, err := repo.Create(context.Background(), uuid.New().String(), domain.NewEvent{
		Source:     &source,
		EventType:  &eventType,
		OccurredAt: &occurredAt,
		Metadata:   json.RawMessage(`{}`),
	})
	require.NoError(t, err)
	return e
}

func TestSQLite_CreateReturnsStoredRow(t *testing.T) {
	repo := newSQLiteRepo(t)
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	source, eventType, occurredAt := "web", "click", "2024-01-01T10:00:00Z"
	id := uuid.New().String()

	e, err := repo.Create(context.Background(), id, domain.NewEvent{
		Source:     &source,
		EventType:  &eventType,
		OccurredAt: &occurredAt,
		Metadata:   json.RawMessage(`{"nested":{"k":[1,2,3]}}`),
	})
	require.NoError(t, err)
	assert.Equal(t, id, e.ID)
	require.NotNil(t, e.Source)
	assert.Equal(t, "web", *e.Source)
	require.NotNil(t, e.OccurredAt)
	assert.True(t, at.Equal(*e.OccurredAt), "occurred_at = %v", e.OccurredAt)
	assert.Equal(t, `{"nested":{"k":[1,2,3]}}`, string(e.Metadata), "metadata is returned verbatim")
}

func TestSQLite_CreateAcceptsLooseTimestamps(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-01-01 10:00:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:00:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:00:00+0000", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-01-01 12:00:00+02", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{" 2024-01-01T10:00:00.250Z ", time.Date(2024, 1, 1, 10, 0, 0, 250e6, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			repo := newSQLiteRepo(t)
			source, eventType, raw := "web", "click", tt.raw
			e, err := repo.Create(context.Background(), uuid.New().String(), domain.NewEvent{
				Source: &source, EventType: &eventType, OccurredAt: &raw,
			})
			require.NoError(t, err)
			require.NotNil(t, e.OccurredAt)
			assert.True(t, tt.want.Equal(*e.OccurredAt), "occurred_at = %v, want %v", e.OccurredAt, tt.want)
		})
	}
}

func TestSQLite_CreateRejectsUnparseableTimestamp(t *testing.T) {
	repo := newSQLiteRepo(t)
	source, eventType, raw := "web", "click", "yesterday"

	e, err := repo.Create(context.Background(), uuid.New().String(), domain.NewEvent{
		Source: &source, EventType: &eventType, OccurredAt: &raw,
	})
	require.Error(t, err)
	assert.Nil(t, e)
	assert.Contains(t, err.Error(), "insert event")

	total, err := repo.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestSQLite_CreateRejectsMissingSource(t *testing.T) {
	repo := newSQLiteRepo(t)
	eventType := "click"
	at := time.Now().Format(time.RFC3339Nano)

	_, err := repo.Create(context.Background(), uuid.New().String(), domain.NewEvent{EventType: &eventType, OccurredAt: &at})
	require.Error(t, err)

	total, err := repo.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestSQLite_CreateRejectsDuplicateID(t *testing.T) {
	repo := newSQLiteRepo(t)
	first := insert(t, repo, "web", "click", time.Now())

	source, eventType := "web", "click"
	at := time.Now().Format(time.RFC3339Nano)
	_, err := repo.Create(context.Background(), first.ID, domain.NewEvent{Source: &source, EventType: &eventType, OccurredAt: &at})
	assert.Error(t, err)
}

func TestSQLite_ListRecentLimitAndOrder(t *testing.T) {
	repo := newSQLiteRepo(t)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	// Insert out of order, with mixed zones and sub-second precision.
	for i := 0; i < 25; i++ {
		offset := time.Duration((i*7)%25) * time.Hour
		at := base.Add(offset).Add(time.Duration(i) * 150 * time.Millisecond)
		if i%2 == 0 {
			at = at.In(time.FixedZone("X", -5*3600))
		}
		insert(t, repo, "src", "tick", at)
	}

	list, err := repo.ListRecent(context.Background(), 20)
	require.NoError(t, err)
	assert.Len(t, list, 20)
	sorted := sort.SliceIsSorted(list, func(i, j int) bool {
		return list[i].OccurredAt.After(*list[j].OccurredAt)
	})
	assert.True(t, sorted, "recent events must be newest first")
}

func TestSQLite_ListRecentEmpty(t *testing.T) {
	repo := newSQLiteRepo(t)
	list, err := repo.ListRecent(context.Background(), 20)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestSQLite_SummaryQueries(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()
	old := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)

	insert(t, repo, "web", "click", now)
	insert(t, repo, "web", "click", old)
	insert(t, repo, "api", "login", now)

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	today, err := repo.CountToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), today)

	sources, err := repo.CountDistinctSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sources)

	top, err := repo.TopEventType(ctx)
	require.NoError(t, err)
	require.NotNil(t, top)
	assert.Equal(t, "click", *top)
}

func TestSQLite_TopEventTypeEmpty(t *testing.T) {
	repo := newSQLiteRepo(t)
	top, err := repo.TopEventType(context.Background())
	require.NoError(t, err)
	assert.Nil(t, top)
}

func TestSQLite_DailyCounts(t *testing.T) {
	repo := newSQLiteRepo(t)
	day1 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 2, 23, 30, 0, 0, time.UTC)

	insert(t, repo, "web", "click", day2)
	insert(t, repo, "web", "click", day1)
	insert(t, repo, "api", "click", day1.Add(time.Hour))
	insert(t, repo, "web", "view", day1.Add(2*time.Hour))
	insert(t, repo, "api", "view", day2)

	daily, err := repo.DailyCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.DailyCount{
		{Source: "api", Day: "2024-01-01", Count: 1},
		{Source: "web", Day: "2024-01-01", Count: 2},
		{Source: "api", Day: "2024-01-02", Count: 1},
		{Source: "web", Day: "2024-01-02", Count: 1},
	}, daily)

	seen := map[string]bool{}
	for _, d := range daily {
		key := fmt.Sprintf("%s/%s", d.Source, d.Day)
		assert.False(t, seen[key], "duplicate pair %s", key)
		seen[key] = true
	}
}

func TestSQLite_EventTypeCounts(t *testing.T) {
	repo := newSQLiteRepo(t)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	insert(t, repo, "web", "view", at)
	insert(t, repo, "web", "click", at)
	insert(t, repo, "api", "click", at)
	insert(t, repo, "api", "click", at)
	insert(t, repo, "api", "purchase", at)
	insert(t, repo, "api", "view", at)

	counts, err := repo.EventTypeCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, domain.EventTypeCount{EventType: "click", EventCount: 3}, counts[0])
	assert.Equal(t, domain.EventTypeCount{EventType: "view", EventCount: 2}, counts[1])
	assert.Equal(t, domain.EventTypeCount{EventType: "purchase", EventCount: 1}, counts[2])

	var sum int64
	for _, c := range counts {
		sum += c.EventCount
	}
	total, err := repo.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, total, sum)
}
