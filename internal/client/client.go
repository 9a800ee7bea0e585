// Package client is a thin HTTP client for the event log API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"eventlog/internal/event/domain"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response. Message is the server's "error" field when present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("eventlog api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("eventlog api: status %d: %s", e.StatusCode, e.Message)
}

// Client calls the /api routes of one server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for baseURL (e.g. http://localhost:8080). httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Record posts one event and returns the stored row.
func (c *Client) Record(ctx context.Context, in domain.NewEvent) (*domain.Event, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	var out domain.Event
	if err := c.do(ctx, http.MethodPost, "/api/events", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recent returns the most recent events, newest first.
func (c *Client) Recent(ctx context.Context) ([]domain.Event, error) {
	var out []domain.Event
	if err := c.do(ctx, http.MethodGet, "/api/events", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary returns the headline aggregates.
func (c *Client) Summary(ctx context.Context) (*domain.SummaryStats, error) {
	var out domain.SummaryStats
	if err := c.do(ctx, http.MethodGet, "/api/stats/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Daily returns per-source, per-day counts.
func (c *Client) Daily(ctx context.Context) ([]domain.DailyCount, error) {
	var out []domain.DailyCount
	if err := c.do(ctx, http.MethodGet, "/api/stats/daily", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Top returns event types ranked by count.
func (c *Client) Top(ctx context.Context) ([]domain.EventTypeCount, error) {
	var out []domain.EventTypeCount
	if err := c.do(ctx, http.MethodGet, "/api/stats/top", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&env) == nil {
			apiErr.Message = env.Error
		}
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
