// Package testserver builds a fully wired leadsearch HTTP server backed by
// in-memory stores for end-to-end handler tests.
package testserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"leadsearch/internal/api"
	"leadsearch/internal/audit"
	"leadsearch/internal/auth"
	"leadsearch/internal/observability"
	"leadsearch/internal/pagination"
	"leadsearch/internal/storage"
	"leadsearch/internal/testutil"
)

// Config holds configuration for creating a test server.
type Config struct {
	// Pagination overrides the default page sizes.
	Pagination pagination.Config
	// EnableMetrics enables metrics collection and /metrics.
	EnableMetrics bool
	// RateLimit enables rate limiting when non-zero.
	RateLimit api.RateLimitConfig
	// SkipSeed leaves the lead store empty instead of loading SampleLeads.
	SkipSeed bool
	// Store replaces the in-memory lead store, e.g. with a failing fake.
	Store storage.Store
}

// Components holds everything created for a test server.
type Components struct {
	Server    *httptest.Server
	Store     storage.Store
	SearchLog *audit.MemorySearchLog
	Sessions  *auth.MemorySessionStore
	Metrics   *observability.Metrics
	Logger    observability.Logger
}

// New starts a test server and registers its shutdown with t.Cleanup.
func New(t *testing.T, cfg Config) *Components {
	t.Helper()

	logger := observability.NewLogger(observability.Config{Level: "debug", Format: "json", Output: io.Discard})

	var metrics *observability.Metrics
	if cfg.EnableMetrics {
		metrics = observability.NewMetrics(observability.MetricsConfig{Namespace: "leadsearch_test", Version: "test"})
	}

	store := cfg.Store
	if store == nil {
		mem := storage.NewMemoryStore()
		if !cfg.SkipSeed {
			if _, err := mem.InsertLeads(context.Background(), testutil.SampleLeads()...); err != nil {
				t.Fatalf("seed leads: %v", err)
			}
		}
		store = mem
	}
	pages := cfg.Pagination
	if pages == (pagination.Config{}) {
		pages = pagination.DefaultConfig()
	}

	searchLog := audit.NewMemorySearchLog()
	sessions := auth.NewMemorySessionStore()

	mux := http.NewServeMux()
	srv, err := api.NewServer(mux, store, searchLog, sessions, pages, logger, metrics)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv.RegisterRoutes()

	ts := httptest.NewServer(srv.Handler(cfg.RateLimit))
	t.Cleanup(func() {
		ts.Close()
		_ = store.Close()
	})

	return &Components{
		Server:    ts,
		Store:     store,
		SearchLog: searchLog,
		Sessions:  sessions,
		Metrics:   metrics,
		Logger:    logger,
	}
}

// URL returns the full URL for a given path.
func (c *Components) URL(path string) string {
	return c.Server.URL + path
}

// Login stores a session for the owner and agent and returns its ID.
func (c *Components) Login(t *testing.T, ownerID, agentID int64) string {
	t.Helper()

	session, err := auth.NewSession(ownerID, agentID, auth.DefaultSessionDuration)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := c.Sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("store session: %v", err)
	}
	return session.ID
}

// Get issues a GET with the session cookie, if any.
func (c *Components) Get(t *testing.T, path, sessionID string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, c.URL(path), nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return c.do(t, req, sessionID)
}

// PostForm submits form values with the session cookie, if any.
func (c *Components) PostForm(t *testing.T, path, sessionID string, form url.Values) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, c.URL(path), strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(t, req, sessionID)
}

func (c *Components) do(t *testing.T, req *http.Request, sessionID string) *http.Response {
	t.Helper()
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: api.SessionCookie, Value: sessionID})
	}
	return testutil.DoRequest(t, c.Server.Client(), req)
}
