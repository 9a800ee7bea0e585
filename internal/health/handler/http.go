// Package handler serves the readiness probe at GET /healthz.
package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// pingTimeout bounds the store round trip so a hung database fails the probe instead of blocking it.
const pingTimeout = 2 * time.Second

// Pinger checks store connectivity. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server answers health checks for Kubernetes, load balancers, and CI.
type Server struct {
	db Pinger
}

// NewServer returns a health Server. db may be nil, in which case the probe always reports ok.
func NewServer(db Pinger) *Server {
	return &Server{db: db}
}

// Register adds GET /healthz to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.HealthCheck)
}

// HealthCheck returns 200 {"status":"ok"} when the store answers a ping, otherwise 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			log.Printf("health: database ping failed: %v", err)
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
