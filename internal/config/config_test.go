package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"leadsearch/internal/pagination"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leadsearch.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg, cmpopts.IgnoreFields(Config{}, "Log.Output")); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Pagination != pagination.DefaultConfig() {
		t.Errorf("pagination = %+v", cfg.Pagination)
	}
	if !cfg.RateLimitEnabled() {
		t.Error("rate limiting should be enabled by default")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
addr: ":9090"
sqlite_dsn: "file:test.db"
pagination:
  page_size: 25
  link_display_size: 7
  link_gap_size: 3
log:
  level: debug
  format: text
rate_limit:
  rps: 0
  burst: 0
session_cleanup_interval: 1m
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.SQLiteDSN != "file:test.db" {
		t.Errorf("addr/dsn = %q/%q", cfg.Addr, cfg.SQLiteDSN)
	}
	if diff := cmp.Diff(pagination.Config{PageSize: 25, LinkDisplaySize: 7, LinkGapSize: 3}, cfg.Pagination); diff != "" {
		t.Errorf("pagination mismatch (-want +got):\n%s", diff)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.RateLimitEnabled() {
		t.Error("rate limiting should be disabled")
	}
	if cfg.SessionCleanupInterval != time.Minute {
		t.Errorf("cleanup interval = %v", cfg.SessionCleanupInterval)
	}
	if cfg.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("unset field lost its default: %v", cfg.ShutdownTimeout)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "addr: \":9090\"\npagination:\n  page_size: 25\n")
	t.Setenv("PORT", "7000")
	t.Setenv("LEADSEARCH_PAGE_SIZE", "50")
	t.Setenv("DATABASE_URL", "postgres://x@localhost/leads")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("SENTRY_DSN", "https://key@sentry.example/1")
	t.Setenv("LEADSEARCH_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.Pagination.PageSize != 50 {
		t.Errorf("PageSize = %d", cfg.Pagination.PageSize)
	}
	if cfg.DatabaseURL != "postgres://x@localhost/leads" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.RateLimit.RequestsPerSecond != 2.5 {
		t.Errorf("rps = %v", cfg.RateLimit.RequestsPerSecond)
	}
	if cfg.Sentry.DSN == "" || cfg.Log.Level != "warn" {
		t.Errorf("sentry/log not applied: %+v %+v", cfg.Sentry, cfg.Log)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing file", wantErr: "read config file"},
		{name: "bad yaml", yaml: "addr: [", wantErr: "parse config file"},
		{name: "bad page size env", yaml: "{}", env: map[string]string{"LEADSEARCH_PAGE_SIZE": "ten"}, wantErr: "LEADSEARCH_PAGE_SIZE"},
		{name: "bad rps env", yaml: "{}", env: map[string]string{"RATE_LIMIT_RPS": "fast"}, wantErr: "RATE_LIMIT_RPS"},
		{name: "zero page size", yaml: "pagination:\n  page_size: 0\n  link_display_size: 10\n  link_gap_size: 5\n", wantErr: "page_size"},
		{name: "negative gap", yaml: "pagination:\n  link_gap_size: -1\n", wantErr: "link_gap_size"},
		{name: "negative burst", yaml: "rate_limit:\n  burst: -1\n", wantErr: "rate_limit"},
		{name: "tiny cleanup", yaml: "session_cleanup_interval: 1ms\n", wantErr: "session_cleanup_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "missing.yaml")
			if tt.yaml != "" {
				path = writeConfig(t, tt.yaml)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
