// Package auth resolves the session cookie into the owner scope and agent
// identity a lead search runs under. Issuing sessions through a login flow
// is handled elsewhere; this package only stores and looks them up.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"leadsearch/internal/storage"
)

// Session errors.
var (
	// ErrSessionNotFound indicates the session was not found.
	ErrSessionNotFound = fmt.Errorf("session %w", storage.ErrNotFound)

	// ErrSessionExpired indicates the session has expired.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidSession indicates the session is invalid.
	ErrInvalidSession = errors.New("invalid session")
)

// DefaultSessionDuration is the default session lifetime.
const DefaultSessionDuration = 12 * time.Hour

// SessionIDLength is the number of random bytes used for session IDs.
const SessionIDLength = 32

// Session binds a cookie value to the tenant (owner) and the acting agent.
type Session struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	AgentID   int64     `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsValid returns true if the session is not expired and names an owner.
func (s *Session) IsValid() bool {
	return s.ID != "" && s.OwnerID > 0 && !s.IsExpired()
}

// SessionStore defines the interface for session persistence.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by its ID.
	// Returns nil, nil if not found and ErrSessionExpired if expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session by its ID.
	Delete(ctx context.Context, id string) error

	// Cleanup removes all expired sessions.
	// Returns the number of sessions removed.
	Cleanup(ctx context.Context) (int, error)
}

// MemorySessionStore is an in-memory implementation of SessionStore.
// It is thread-safe and suitable for development and single-instance deployments.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session)}
}

var _ SessionStore = (*MemorySessionStore)(nil)

func (s *MemorySessionStore) Create(_ context.Context, session *Session) error {
	if err := validateNew(session); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return fmt.Errorf("session %s: %w", session.ID, storage.ErrConflict)
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}

	s.mu.RLock()
	session, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return nil, nil
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[id]; !exists {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *MemorySessionStore) Cleanup(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	now := time.Now()
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, id)
			count++
		}
	}
	return count, nil
}

// Count returns the total number of sessions in the store.
func (s *MemorySessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func validateNew(session *Session) error {
	if session == nil || session.ID == "" || session.OwnerID <= 0 || session.AgentID < 0 {
		return ErrInvalidSession
	}
	return nil
}

// GenerateSessionID generates a cryptographically secure session ID.
func GenerateSessionID() (string, error) {
	bytes := make([]byte, SessionIDLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// NewSession creates a Session for ownerID acting as agentID with a fresh ID.
// A non-positive duration uses DefaultSessionDuration.
func NewSession(ownerID, agentID int64, duration time.Duration) (*Session, error) {
	if ownerID <= 0 || agentID < 0 {
		return nil, ErrInvalidSession
	}
	id, err := GenerateSessionID()
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		duration = DefaultSessionDuration
	}
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		OwnerID:   ownerID,
		AgentID:   agentID,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}, nil
}
