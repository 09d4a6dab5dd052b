//go:build sqlite

package sqlite

import (
	"path/filepath"
	"strings"
	"testing"

	"leadsearch/internal/testutil"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	s, err := New(dsn)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, dsn
}

func TestStore_LeadQueries(t *testing.T) {
	s, _ := newTestStore(t)
	testutil.RunLeadStoreSuite(t, s)
}

func TestMigrationsIdempotent(t *testing.T) {
	s, dsn := newTestStore(t)
	if err := runMigrations(s.DB()); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
	var count int
	if err := s.DB().QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	files, err := listMigrations(migrationsFS())
	if err != nil {
		t.Fatalf("list migrations: %v", err)
	}
	if count != len(files) {
		t.Fatalf("applied %d migrations, want %d", count, len(files))
	}

	status, err := Status(dsn)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(status, "applied=3") || !strings.Contains(status, "pending=0") {
		t.Errorf("unexpected status: %s", status)
	}
}

func TestSchemaHasAuditAndSessionTables(t *testing.T) {
	s, _ := newTestStore(t)
	for _, table := range []string{"leads", "log_agent_searches", "sessions"} {
		var name string
		err := s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}
