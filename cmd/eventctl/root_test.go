package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlog/internal/event/domain"
)

func run(t *testing.T, srvURL string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", srvURL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRecord(t *testing.T) {
	var got domain.NewEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"evt-1","source":"web","event_type":"click","occurred_at":"2024-01-01T10:00:00Z","metadata":{"a":1}}`))
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "record", "--source", "web", "--type", "click",
		"--occurred-at", "2024-01-01T10:00:00Z", "--metadata", `{"a":1}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "evt-1"`)
	require.NotNil(t, got.Source)
	assert.Equal(t, "web", *got.Source)
	require.NotNil(t, got.OccurredAt)
	assert.Equal(t, "2024-01-01T10:00:00Z", *got.OccurredAt)
	assert.JSONEq(t, `{"a":1}`, string(got.Metadata))
}

func TestRecord_RequiresFlags(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "record", "--source", "web")
	assert.Error(t, err)
}

func TestRecord_InvalidMetadata(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "record", "--source", "web", "--type", "x", "--metadata", "{nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata")
}

func TestTop_Table(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/stats/top", r.URL.Path)
		_, _ = w.Write([]byte(`[{"event_type":"click","event_count":2},{"event_type":"view","event_count":1}]`))
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "top")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "click"))
	assert.True(t, strings.HasSuffix(lines[1], "2"))
}

func TestSummary_JSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total_events":0,"events_today":0,"active_sources":0,"top_event":null}`))
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "--json", "summary")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_events":0,"events_today":0,"active_sources":0,"top_event":null}`, out)
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to fetch daily stats"}`))
	}))
	defer srv.Close()

	_, err := run(t, srv.URL, "daily")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to fetch daily stats")
}
