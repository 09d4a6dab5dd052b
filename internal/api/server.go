// Package api serves the lead search page and its operational endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"

	"leadsearch/internal/audit"
	"leadsearch/internal/auth"
	"leadsearch/internal/leads"
	"leadsearch/internal/observability"
	"leadsearch/internal/pagination"
	"leadsearch/internal/storage"
	"leadsearch/internal/view"
	"leadsearch/web"
)

// SearchPath is where the search page is served.
const SearchPath = "/search/leads"

type apiError struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Server holds the handlers and their dependencies.
type Server struct {
	mux       *http.ServeMux
	store     storage.Store
	searchLog audit.SearchLog
	sessions  auth.SessionStore
	leads     *leads.Service
	view      *view.Renderer
	logger    observability.Logger
	metrics   *observability.Metrics
}

// NewServer creates the HTTP server with the given dependencies.
// If searchLog is nil, an in-memory log is used.
// If logger is nil, logging is discarded.
// If metrics is nil, metrics collection is disabled.
func NewServer(
	mux *http.ServeMux,
	store storage.Store,
	searchLog audit.SearchLog,
	sessions auth.SessionStore,
	pages pagination.Config,
	logger observability.Logger,
	metrics *observability.Metrics,
) (*Server, error) {
	if logger == nil {
		logger = observability.Discard()
	}
	if searchLog == nil {
		searchLog = audit.NewMemorySearchLog()
	}
	renderer, err := view.New(SearchPath)
	if err != nil {
		return nil, err
	}
	return &Server{
		mux:       mux,
		store:     store,
		searchLog: searchLog,
		sessions:  sessions,
		leads:     leads.NewService(store, searchLog, pages, logger, metrics),
		view:      renderer,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// RegisterRoutes registers every route on the mux.
// The search page and the audit listing require a session.
func (s *Server) RegisterRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /readyz", s.handleReady)
	if s.metrics != nil {
		s.mux.Handle("/metrics", s.metrics.Handler())
	}
	s.mux.HandleFunc("GET /static/leadsearch.css", handleStylesheet)
	s.mux.Handle("GET /{$}", http.RedirectHandler(SearchPath, http.StatusFound))

	pageSession := SessionMiddleware(s.sessions, s.logger, s.denyPage)
	search := pageSession(http.HandlerFunc(s.handleSearchLeads))
	s.mux.Handle("GET "+SearchPath, search)
	s.mux.Handle("POST "+SearchPath, search)

	apiSession := SessionMiddleware(s.sessions, s.logger, s.denyJSON)
	s.mux.Handle("GET /api/v1/audit/searches", apiSession(http.HandlerFunc(s.handleSearchAuditList)))
}

// Handler returns the mux wrapped in the standard middleware stack.
// Order: metrics (outermost) -> requestID -> logging -> rateLimiting.
func (s *Server) Handler(rl RateLimitConfig) http.Handler {
	return ApplyMiddlewares(
		s.mux,
		observability.MetricsMiddleware(s.metrics, routeLabel),
		RequestIDMiddleware(),
		LoggingMiddleware(s.logger),
		RateLimitMiddleware(rl, s.logger, s.metrics),
	)
}

// routeLabel keeps metric path labels to the registered routes.
func routeLabel(r *http.Request) string {
	switch p := r.URL.Path; p {
	case "/", SearchPath, "/healthz", "/readyz", "/static/leadsearch.css", "/api/v1/audit/searches":
		return p
	}
	return "other"
}

func handleStylesheet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(web.Stylesheet)
}

// writeErr logs and writes a JSON error. Server errors are sent to Sentry.
func (s *Server) writeErr(ctx context.Context, w http.ResponseWriter, code int, msg string, err error) {
	fields := []any{"status", code, "error", msg}
	if err != nil {
		fields = append(fields, "detail", err.Error())
	}
	if code >= 500 {
		s.logger.ErrorContext(ctx, "request failed", fields...)
		captureError(ctx, err, code, msg)
	} else {
		s.logger.WarnContext(ctx, "request failed", fields...)
	}
	writeJSON(w, code, apiError{Error: msg})
}

func captureError(ctx context.Context, err error, code int, msg string) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if err != nil {
		hub.CaptureException(err)
		return
	}
	hub.CaptureMessage(fmt.Sprintf("HTTP %d: %s", code, msg))
}

func (s *Server) denyJSON(w http.ResponseWriter, r *http.Request, code int, err error) {
	msg := "unauthorized"
	if code >= 500 {
		msg = "internal error"
	}
	s.writeErr(r.Context(), w, code, msg, err)
}
