package repository

import "eventlog/internal/db"

// queries is the per-dialect SQL for the events table.
type queries struct {
	insert          string
	listRecent      string
	countAll        string
	countToday      string
	countSources    string
	topEventType    string
	dailyCounts     string
	eventTypeCounts string
}

const (
	selectColumns = "id, source, event_type, occurred_at, metadata"

	countAllSQL        = "SELECT COUNT(*) FROM events"
	countSourcesSQL    = "SELECT COUNT(DISTINCT source) FROM events"
	topEventTypeSQL    = "SELECT event_type FROM events GROUP BY event_type ORDER BY COUNT(*) DESC LIMIT 1"
	eventTypeCountsSQL = "SELECT event_type, COUNT(*) AS event_count FROM events GROUP BY event_type ORDER BY event_count DESC"
)

var postgresQueries = queries{
	insert:          "INSERT INTO events (id, source, event_type, occurred_at, metadata) VALUES ($1, $2, $3, $4::timestamptz, $5) RETURNING " + selectColumns,
	listRecent:      "SELECT " + selectColumns + " FROM events ORDER BY occurred_at DESC LIMIT $1",
	countAll:        countAllSQL,
	countToday:      "SELECT COUNT(*) FROM events WHERE occurred_at::date = CURRENT_DATE",
	countSources:    countSourcesSQL,
	topEventType:    topEventTypeSQL,
	dailyCounts:     "SELECT source, to_char(occurred_at, 'YYYY-MM-DD') AS day, COUNT(*) AS count FROM events GROUP BY source, day ORDER BY day ASC, source ASC",
	eventTypeCounts: eventTypeCountsSQL,
}

var sqliteQueries = queries{
	insert:          "INSERT INTO events (id, source, event_type, occurred_at, metadata) VALUES (?, ?, ?, ?, ?) RETURNING " + selectColumns,
	listRecent:      "SELECT " + selectColumns + " FROM events ORDER BY occurred_at DESC LIMIT ?",
	countAll:        countAllSQL,
	countToday:      "SELECT COUNT(*) FROM events WHERE date(occurred_at) = date('now')",
	countSources:    countSourcesSQL,
	topEventType:    topEventTypeSQL,
	dailyCounts:     "SELECT source, date(occurred_at) AS day, COUNT(*) AS count FROM events GROUP BY source, day ORDER BY day ASC, source ASC",
	eventTypeCounts: eventTypeCountsSQL,
}

func queriesFor(dialect db.Dialect) queries {
	if dialect == db.SQLite {
		return sqliteQueries
	}
	return postgresQueries
}
