//go:build sqlite

package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // CGO-less SQLite driver
)

// SQLiteSearchLog is a SQLite-backed implementation of SearchLog.
type SQLiteSearchLog struct {
	db *sql.DB
}

// NewSQLiteSearchLogFromDB creates a search log sharing the lead store's connection.
func NewSQLiteSearchLogFromDB(db *sql.DB) *SQLiteSearchLog {
	return &SQLiteSearchLog{db: db}
}

var _ SearchLog = (*SQLiteSearchLog)(nil)

func (s *SQLiteSearchLog) Log(ctx context.Context, entry *SearchEntry) error {
	if entry == nil {
		return nil
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO log_agent_searches (id, agent_id, search_value, search_criteria, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.AgentID, entry.SearchValue, entry.SearchCriteria,
		entry.CreatedAt.UTC().Format(timeLayout),
	)
	return err
}

func (s *SQLiteSearchLog) List(ctx context.Context, opts ListOptions) ([]*SearchEntry, int, error) {
	opts = opts.normalized()

	where := "1=1"
	args := []any{}
	if opts.AgentID != 0 {
		where += " AND agent_id = ?"
		args = append(args, opts.AgentID)
	}
	if opts.Since != nil {
		where += " AND created_at >= ?"
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}
	if opts.Until != nil {
		where += " AND created_at <= ?"
		args = append(args, opts.Until.UTC().Format(timeLayout))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM log_agent_searches WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT id, agent_id, search_value, search_criteria, created_at FROM log_agent_searches WHERE " + where + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*SearchEntry
	for rows.Next() {
		var e SearchEntry
		var created string
		if err := rows.Scan(&e.ID, &e.AgentID, &e.SearchValue, &e.SearchCriteria, &created); err != nil {
			return nil, 0, err
		}
		e.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, &e)
	}
	return out, total, rows.Err()
}
