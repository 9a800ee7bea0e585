// Package server assembles the HTTP handler: routes from every feature package behind one
// middleware chain.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"eventlog/internal/dashboard"
	eventhandler "eventlog/internal/event/handler"
	"eventlog/internal/event/service"
	healthhandler "eventlog/internal/health/handler"
	"eventlog/internal/server/middleware"
)

// Deps holds the dependencies for the HTTP routes.
type Deps struct {
	// Events is the event store gateway behind /api and the dashboard.
	Events *service.Service
	// HealthPinger is used by /healthz for readiness (e.g. *sql.DB). If nil, /healthz skips the ping.
	HealthPinger healthhandler.Pinger
	// CORSOrigins lists allowed origins. Empty allows every origin.
	CORSOrigins []string
	// ServiceName names the otelhttp server spans.
	ServiceName string
}

// NewHandler registers all routes and wraps them in the middleware chain.
//
// Route → handler mapping:
//   - /api/events, /api/stats/*  → internal/event/handler
//   - /, /static/*               → internal/dashboard
//   - /healthz                   → internal/health/handler
//   - /metrics                   → promhttp
func NewHandler(deps Deps) http.Handler {
	mux := http.NewServeMux()
	eventhandler.New(deps.Events).Register(mux)
	dashboard.New(deps.Events).Register(mux)
	healthhandler.NewServer(deps.HealthPinger).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	name := deps.ServiceName
	if name == "" {
		name = "eventlog"
	}
	// Duration must sit directly on the mux: it reads r.Pattern, which the mux sets on
	// the request it receives.
	return middleware.Chain(middleware.Duration(mux),
		middleware.RequestID,
		middleware.Logging,
		middleware.Recover,
		middleware.CORS(deps.CORSOrigins),
		func(next http.Handler) http.Handler {
			return otelhttp.NewHandler(next, name, otelhttp.WithSpanNameFormatter(spanName))
		},
	)
}

func spanName(_ string, r *http.Request) string {
	return r.Method + " " + r.URL.Path
}
