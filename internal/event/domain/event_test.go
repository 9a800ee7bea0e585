package domain

import (
	"encoding/json"
	"testing"
)

func TestNewEvent_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		source     *string
		occurredAt *string
		metadata   string
	}{
		{"strings", `{"source":"web","occurred_at":"2024-01-01 10:00:00"}`, ptr("web"), ptr("2024-01-01 10:00:00"), ""},
		{"number source", `{"source":123,"occurred_at":"2024-01-01"}`, ptr("123"), ptr("2024-01-01"), ""},
		{"bool source", `{"source":true}`, ptr("true"), nil, ""},
		{"null fields", `{"source":null,"occurred_at":null,"metadata":null}`, nil, nil, "null"},
		{"absent fields", `{"metadata":{"a":[1]}}`, nil, nil, `{"a":[1]}`},
		{"escaped string", `{"source":"a\"b"}`, ptr(`a"b`), nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got NewEvent
			if err := json.Unmarshal([]byte(tt.body), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !equalPtr(got.Source, tt.source) {
				t.Errorf("source = %v, want %v", deref(got.Source), deref(tt.source))
			}
			if !equalPtr(got.OccurredAt, tt.occurredAt) {
				t.Errorf("occurred_at = %v, want %v", deref(got.OccurredAt), deref(tt.occurredAt))
			}
			if string(got.Metadata) != tt.metadata {
				t.Errorf("metadata = %s, want %s", got.Metadata, tt.metadata)
			}
		})
	}
}

func TestNewEvent_UnmarshalJSON_Invalid(t *testing.T) {
	var got NewEvent
	if err := json.Unmarshal([]byte(`["web"]`), &got); err == nil {
		t.Error("a non-object body should fail to decode")
	}
}

func ptr(s string) *string { return &s }

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
