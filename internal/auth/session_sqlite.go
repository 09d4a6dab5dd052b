//go:build sqlite

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"leadsearch/internal/storage"
)

// SQLiteSessionStore is a SQLite-backed implementation of SessionStore.
type SQLiteSessionStore struct {
	db *sql.DB
}

// NewSQLiteSessionStoreFromDB creates a store using an existing DB connection.
func NewSQLiteSessionStoreFromDB(db *sql.DB) *SQLiteSessionStore {
	return &SQLiteSessionStore{db: db}
}

var _ SessionStore = (*SQLiteSessionStore)(nil)

func (s *SQLiteSessionStore) Create(ctx context.Context, session *Session) error {
	if err := validateNew(session); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, owner_id, agent_id, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		session.ID, session.OwnerID, session.AgentID,
		session.CreatedAt.UTC().Format(time.RFC3339Nano),
		session.ExpiresAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", storage.WrapIfConflict(err))
	}
	return nil
}

func (s *SQLiteSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}

	var session Session
	var createdAt, expiresAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, agent_id, created_at, expires_at
		FROM sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.OwnerID, &session.AgentID, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	session.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	session.ExpiresAt, _ = time.Parse(time.RFC3339Nano, expiresAt)

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

func (s *SQLiteSessionStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLiteSessionStore) Cleanup(ctx context.Context) (int, error) {
	// expires_at is compared as parsed time so that differing fractional
	// second widths in the stored text cannot misorder.
	rows, err := s.db.QueryContext(ctx, `SELECT id, expires_at FROM sessions`)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	now := time.Now()
	var expired []string
	for rows.Next() {
		var id, expiresAt string
		if err := rows.Scan(&id, &expiresAt); err != nil {
			rows.Close()
			return 0, err
		}
		if t, err := time.Parse(time.RFC3339Nano, expiresAt); err != nil || now.After(t) {
			expired = append(expired, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range expired {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("cleanup sessions: %w", err)
		}
	}
	return len(expired), nil
}
