//go:build postgres

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSearchLog is a PostgreSQL-backed implementation of SearchLog.
type PostgresSearchLog struct {
	pool *pgxpool.Pool
}

// NewPostgresSearchLogFromPool creates a search log using the lead store's pool.
func NewPostgresSearchLogFromPool(pool *pgxpool.Pool) *PostgresSearchLog {
	return &PostgresSearchLog{pool: pool}
}

var _ SearchLog = (*PostgresSearchLog)(nil)

func (s *PostgresSearchLog) Log(ctx context.Context, entry *SearchEntry) error {
	if entry == nil {
		return nil
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO log_agent_searches (id, agent_id, search_value, search_criteria, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.AgentID, entry.SearchValue, entry.SearchCriteria, entry.CreatedAt,
	)
	return err
}

func (s *PostgresSearchLog) List(ctx context.Context, opts ListOptions) ([]*SearchEntry, int, error) {
	opts = opts.normalized()

	where := "1=1"
	args := []any{}
	argN := 1
	if opts.AgentID != 0 {
		where += fmt.Sprintf(" AND agent_id = $%d", argN)
		args = append(args, opts.AgentID)
		argN++
	}
	if opts.Since != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argN)
		args = append(args, *opts.Since)
		argN++
	}
	if opts.Until != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", argN)
		args = append(args, *opts.Until)
		argN++
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM log_agent_searches WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT id::text, agent_id, search_value, search_criteria, created_at FROM log_agent_searches WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", where, argN, argN+1)
	args = append(args, opts.Limit, opts.Offset)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*SearchEntry, error) {
		var e SearchEntry
		if err := row.Scan(&e.ID, &e.AgentID, &e.SearchValue, &e.SearchCriteria, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.CreatedAt = e.CreatedAt.UTC()
		return &e, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
