// Package handler exposes the event store gateway over HTTP as JSON.
package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"eventlog/internal/event/domain"
	"eventlog/internal/event/service"
	"eventlog/internal/server/middleware"
)

// Error messages returned to clients. They never carry the underlying cause.
const (
	msgSaveFailed    = "Failed to save event"
	msgEventsFailed  = "Failed to fetch events"
	msgSummaryFailed = "Failed to fetch summary stats"
	msgDailyFailed   = "Failed to fetch daily stats"
	msgTopFailed     = "Failed to fetch top event types"
)

// EventService is the subset of service.Service the HTTP layer calls.
type EventService interface {
	RecordEvent(ctx context.Context, in domain.NewEvent) (*domain.Event, error)
	ListRecentEvents(ctx context.Context) ([]*domain.Event, error)
	GetSummaryStats(ctx context.Context) (*domain.SummaryStats, error)
	GetDailyStats(ctx context.Context) ([]domain.DailyCount, error)
	GetTopEventTypes(ctx context.Context) ([]domain.EventTypeCount, error)
}

var _ EventService = (*service.Service)(nil)

// Handler serves the /api routes.
type Handler struct {
	svc EventService
}

// New returns a Handler over svc.
func New(svc EventService) *Handler {
	return &Handler{svc: svc}
}

// Register adds the /api routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/events", h.recordEvent)
	mux.HandleFunc("GET /api/events", h.listEvents)
	mux.HandleFunc("GET /api/stats/summary", h.summary)
	mux.HandleFunc("GET /api/stats/daily", h.daily)
	mux.HandleFunc("GET /api/stats/top", h.top)
}

// POST /api/events. An undecodable body is reported the same way as a store rejection.
func (h *Handler) recordEvent(w http.ResponseWriter, r *http.Request) {
	in, err := decodeNewEvent(w, r)
	if err != nil {
		h.fail(w, r, msgSaveFailed, err)
		return
	}
	e, err := h.svc.RecordEvent(r.Context(), in)
	if err != nil {
		h.fail(w, r, msgSaveFailed, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// GET /api/events
func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListRecentEvents(r.Context())
	if err != nil {
		h.fail(w, r, msgEventsFailed, err)
		return
	}
	if list == nil {
		list = []*domain.Event{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/stats/summary
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetSummaryStats(r.Context())
	if err != nil {
		h.fail(w, r, msgSummaryFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /api/stats/daily
func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	daily, err := h.svc.GetDailyStats(r.Context())
	if err != nil {
		h.fail(w, r, msgDailyFailed, err)
		return
	}
	if daily == nil {
		daily = []domain.DailyCount{}
	}
	writeJSON(w, http.StatusOK, daily)
}

// GET /api/stats/top
func (h *Handler) top(w http.ResponseWriter, r *http.Request) {
	top, err := h.svc.GetTopEventTypes(r.Context())
	if err != nil {
		h.fail(w, r, msgTopFailed, err)
		return
	}
	if top == nil {
		top = []domain.EventTypeCount{}
	}
	writeJSON(w, http.StatusOK, top)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	kind := "request"
	switch {
	case errors.Is(err, service.ErrSaveFailed):
		kind = "store write"
	case errors.Is(err, service.ErrFetchFailed):
		kind = "store read"
	}
	log.Printf("event handler: %s %s %s failed request_id=%s: %v",
		r.Method, r.URL.Path, kind, middleware.RequestIDFrom(r.Context()), err)
	writeError(w, http.StatusInternalServerError, msg)
}
