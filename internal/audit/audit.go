// Package audit records the searches agents run against the leads table.
// Entries are append-only.
package audit

import (
	"context"
	"time"
)

// SearchEntry is one row of log_agent_searches.
type SearchEntry struct {
	ID             string    `json:"id"`
	AgentID        int64     `json:"agent_id"`
	SearchValue    string    `json:"search_value"`    // HTML-escaped search text
	SearchCriteria string    `json:"search_criteria"` // e.g. "Phone Number"
	CreatedAt      time.Time `json:"created_at"`
}

// ListOptions provides filtering and pagination options for listing entries.
type ListOptions struct {
	Limit   int
	Offset  int
	AgentID int64
	Since   *time.Time
	Until   *time.Time
}

// Default and maximum page sizes for List.
const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

func (o ListOptions) normalized() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// SearchLog defines the interface for the search audit trail.
type SearchLog interface {
	// Log appends an entry. ID and CreatedAt are assigned when empty.
	Log(ctx context.Context, entry *SearchEntry) error

	// List returns entries newest first with the total matching count.
	List(ctx context.Context, opts ListOptions) ([]*SearchEntry, int, error)
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
