package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Event is one logged occurrence. Source, EventType and OccurredAt are nil when the client
// omitted them; the store decides whether that is acceptable.
type Event struct {
	ID         string          `json:"id"`
	Source     *string         `json:"source"`
	EventType  *string         `json:"event_type"`
	OccurredAt *time.Time      `json:"occurred_at"`
	Metadata   json.RawMessage `json:"metadata"`
}

// NewEvent is the client-supplied part of an Event, taken from the request body unvalidated.
// Every field is kept as text; the store decides whether a value is acceptable, including
// how OccurredAt is interpreted as a timestamp.
type NewEvent struct {
	Source     *string         `json:"source"`
	EventType  *string         `json:"event_type"`
	OccurredAt *string         `json:"occurred_at"`
	Metadata   json.RawMessage `json:"metadata"`
}

// UnmarshalJSON accepts any JSON value for the text fields. Strings decode to their contents,
// other values to their literal JSON text, and null to nil.
func (n *NewEvent) UnmarshalJSON(data []byte) error {
	var raw struct {
		Source     json.RawMessage `json:"source"`
		EventType  json.RawMessage `json:"event_type"`
		OccurredAt json.RawMessage `json:"occurred_at"`
		Metadata   json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out NewEvent
	var err error
	if out.Source, err = jsonText(raw.Source); err != nil {
		return err
	}
	if out.EventType, err = jsonText(raw.EventType); err != nil {
		return err
	}
	if out.OccurredAt, err = jsonText(raw.OccurredAt); err != nil {
		return err
	}
	out.Metadata = raw.Metadata
	*n = out
	return nil
}

func jsonText(raw json.RawMessage) (*string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	s := string(trimmed)
	return &s, nil
}

// SummaryStats is the four-field aggregate over the whole table. TopEvent is nil when the table is empty.
type SummaryStats struct {
	TotalEvents   int64   `json:"total_events"`
	EventsToday   int64   `json:"events_today"`
	ActiveSources int64   `json:"active_sources"`
	TopEvent      *string `json:"top_event"`
}

// DailyCount is the number of events one source produced on one calendar day (YYYY-MM-DD).
type DailyCount struct {
	Source string `json:"source"`
	Day    string `json:"day"`
	Count  int64  `json:"count"`
}

// EventTypeCount is the number of events recorded for one event type.
type EventTypeCount struct {
	EventType  string `json:"event_type"`
	EventCount int64  `json:"event_count"`
}
