// Package storage provides read access to the leads table. The memory store
// is the default backend; SQLite and PostgreSQL backends live in the sqlite
// and postgres subpackages behind build tags.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"leadsearch/internal/domain"
)

// Store is the lead data access interface used by the search dispatcher.
type Store interface {
	// CountLeads returns the number of leads matching q. Limit and Offset are ignored.
	CountLeads(ctx context.Context, q LeadQuery) (int, error)
	// QueryLeads returns matching leads ordered newest first. A zero Limit
	// returns every match.
	QueryLeads(ctx context.Context, q LeadQuery) ([]domain.Lead, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases resources held by the store
	Close() error
}

// LeadWriter loads leads into a backend. The search path never writes
// leads; this is used by the seed command and tests.
type LeadWriter interface {
	InsertLeads(ctx context.Context, leads ...domain.Lead) ([]domain.Lead, error)
}

// MemoryStore is an in-memory implementation for quick start and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	leads []domain.Lead
	next  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{next: 1}
}

var (
	_ Store      = (*MemoryStore)(nil)
	_ LeadWriter = (*MemoryStore)(nil)
)

// InsertLeads seeds leads. Leads without an ID get the next free one and
// phone fields are stored as given.
func (m *MemoryStore) InsertLeads(ctx context.Context, leads ...domain.Lead) ([]domain.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Lead, 0, len(leads))
	for _, l := range leads {
		if l.ID == 0 {
			l.ID = m.next
		}
		if l.ID >= m.next {
			m.next = l.ID + 1
		}
		m.leads = append(m.leads, l)
		out = append(out, l)
	}
	return out, nil
}

func (m *MemoryStore) CountLeads(ctx context.Context, q LeadQuery) (int, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, l := range m.leads {
		if m.matchLead(l, q) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) QueryLeads(ctx context.Context, q LeadQuery) ([]domain.Lead, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	var items []domain.Lead
	for _, l := range m.leads {
		if m.matchLead(l, q) {
			items = append(items, l)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].RealDate.Equal(items[j].RealDate) {
			return items[i].RealDate.After(items[j].RealDate)
		}
		return items[i].ID > items[j].ID
	})

	start := q.Offset
	if start > len(items) {
		start = len(items)
	}
	end := len(items)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	return items[start:end], nil
}

func (m *MemoryStore) matchLead(l domain.Lead, q LeadQuery) bool {
	if l.OwnerID != q.OwnerID {
		return false
	}
	v, ok := leadField(l, q.Column)
	if !ok {
		return false
	}
	if q.Match == domain.MatchExact {
		return v == q.Text
	}
	v = SubstringValue(q.Column, v)
	return strings.Contains(strings.ToLower(v), strings.ToLower(SubstringValue(q.Column, q.Text)))
}

func leadField(l domain.Lead, column string) (string, bool) {
	switch column {
	case ColumnFirstName:
		return l.FirstName, true
	case ColumnLastName:
		return l.LastName, true
	case ColumnMainPhone:
		return l.MainPhone, true
	case ColumnEmail:
		return l.Email, true
	case ColumnCRMID:
		return l.CRMID, true
	case ColumnMarketingID:
		return l.MarketingID, true
	case ColumnCompanyName:
		return l.CompanyName, true
	}
	return "", false
}

// Ping always succeeds for MemoryStore.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for MemoryStore as it holds no external resources.
func (m *MemoryStore) Close() error {
	return nil
}

// String describes the backend for logs.
func (m *MemoryStore) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("memory(%d leads)", len(m.leads))
}
