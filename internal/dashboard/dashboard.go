// Package dashboard renders the HTML overview at GET / and serves its static assets.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"eventlog/internal/event/service"
	"eventlog/internal/server/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// DashboardSource loads everything the page shows.
type DashboardSource interface {
	GetDashboard(ctx context.Context) (*service.Dashboard, error)
}

// Handler serves the dashboard page and /static/ assets.
type Handler struct {
	src  DashboardSource
	tmpl *template.Template
}

var funcs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"timestamp": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format("2006-01-02 15:04:05")
	},
}

// New parses the embedded templates. It panics only if they are malformed.
func New(src DashboardSource) *Handler {
	tmpl := template.Must(template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html"))
	return &Handler{src: src, tmpl: tmpl}
}

// Register adds GET / and GET /static/ to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.HandleFunc("GET /{$}", h.index)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	data, err := h.src.GetDashboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	// Render into a buffer so a template error never leaves a half-written 200.
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("dashboard: render failed request_id=%s: %v", middleware.RequestIDFrom(r.Context()), err)
	http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
}
