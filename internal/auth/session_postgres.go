//go:build postgres

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadsearch/internal/storage"
)

// PostgresSessionStore is a PostgreSQL-backed implementation of SessionStore.
type PostgresSessionStore struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionStoreFromPool creates a session store using an existing pool.
func NewPostgresSessionStoreFromPool(pool *pgxpool.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool}
}

var _ SessionStore = (*PostgresSessionStore)(nil)

func (s *PostgresSessionStore) Create(ctx context.Context, session *Session) error {
	if err := validateNew(session); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, owner_id, agent_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.OwnerID, session.AgentID, session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", storage.WrapIfConflict(err))
	}
	return nil
}

func (s *PostgresSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}
	var session Session
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, agent_id, created_at, expires_at
		FROM sessions WHERE id = $1`, id,
	).Scan(&session.ID, &session.OwnerID, &session.AgentID, &session.CreatedAt, &session.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

func (s *PostgresSessionStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *PostgresSessionStore) Cleanup(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
