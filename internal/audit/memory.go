package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxEntries is the default maximum number of entries to keep.
const DefaultMaxEntries = 10000

// MemorySearchLog is an in-memory implementation of SearchLog.
// It stores entries newest first and limits storage to prevent unbounded growth.
type MemorySearchLog struct {
	mu         sync.RWMutex
	entries    []*SearchEntry
	maxEntries int
}

// MemorySearchLogOption configures a MemorySearchLog.
type MemorySearchLogOption func(*MemorySearchLog)

// WithMaxEntries sets the maximum number of entries to keep.
func WithMaxEntries(max int) MemorySearchLogOption {
	return func(m *MemorySearchLog) {
		if max > 0 {
			m.maxEntries = max
		}
	}
}

// NewMemorySearchLog creates a new in-memory search log.
func NewMemorySearchLog(opts ...MemorySearchLogOption) *MemorySearchLog {
	m := &MemorySearchLog{maxEntries: DefaultMaxEntries}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ SearchLog = (*MemorySearchLog)(nil)

func (m *MemorySearchLog) Log(ctx context.Context, entry *SearchEntry) error {
	if entry == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	e := *entry
	m.entries = append([]*SearchEntry{&e}, m.entries...)
	if len(m.entries) > m.maxEntries {
		m.entries = m.entries[:m.maxEntries]
	}
	return nil
}

func (m *MemorySearchLog) List(ctx context.Context, opts ListOptions) ([]*SearchEntry, int, error) {
	opts = opts.normalized()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []*SearchEntry
	for _, e := range m.entries {
		if matches(e, opts) {
			filtered = append(filtered, e)
		}
	}
	total := len(filtered)

	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	out := make([]*SearchEntry, 0, end-start)
	for _, e := range filtered[start:end] {
		c := *e
		out = append(out, &c)
	}
	return out, total, nil
}

func matches(e *SearchEntry, opts ListOptions) bool {
	if opts.AgentID != 0 && e.AgentID != opts.AgentID {
		return false
	}
	if opts.Since != nil && e.CreatedAt.Before(*opts.Since) {
		return false
	}
	if opts.Until != nil && e.CreatedAt.After(*opts.Until) {
		return false
	}
	return true
}
