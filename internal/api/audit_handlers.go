package api

import (
	"net/http"
	"strconv"
	"time"

	"leadsearch/internal/audit"
	"leadsearch/internal/auth"
)

// SearchAuditResponse is the JSON body of the search audit listing.
type SearchAuditResponse struct {
	Entries []*audit.SearchEntry `json:"entries"`
	Total   int                  `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

// handleSearchAuditList lists the calling agent's recorded searches,
// newest first. Query parameters: limit, offset, since, until (RFC 3339).
func (s *Server) handleSearchAuditList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, agentID := auth.Scope(ctx)
	if agentID <= 0 {
		s.writeErr(ctx, w, http.StatusForbidden, "session has no agent", nil)
		return
	}

	q := r.URL.Query()
	opts := audit.ListOptions{AgentID: agentID}
	var err error
	if v := q.Get("limit"); v != "" {
		if opts.Limit, err = strconv.Atoi(v); err != nil || opts.Limit < 0 {
			s.writeErr(ctx, w, http.StatusBadRequest, "invalid limit", err)
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if opts.Offset, err = strconv.Atoi(v); err != nil || opts.Offset < 0 {
			s.writeErr(ctx, w, http.StatusBadRequest, "invalid offset", err)
			return
		}
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"since", &opts.Since}, {"until", &opts.Until}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.writeErr(ctx, w, http.StatusBadRequest, "invalid "+p.name, err)
			return
		}
		*p.dst = &t
	}

	entries, total, err := s.searchLog.List(ctx, opts)
	if err != nil {
		s.writeErr(ctx, w, http.StatusInternalServerError, "internal error", err)
		return
	}
	if entries == nil {
		entries = []*audit.SearchEntry{}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = audit.DefaultListLimit
	}
	if limit > audit.MaxListLimit {
		limit = audit.MaxListLimit
	}
	writeJSON(w, http.StatusOK, SearchAuditResponse{Entries: entries, Total: total, Limit: limit, Offset: opts.Offset})
}
