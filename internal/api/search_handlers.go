package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"leadsearch/internal/auth"
	"leadsearch/internal/domain"
	"leadsearch/internal/leads"
)

// Messages shown in place of the results.
const (
	msgUnauthorized = "Your session has expired. Please sign in again."
	msgUnavailable  = "Lead search is temporarily unavailable. Please try again."
	msgBadRequest   = "The search request could not be read."
)

// handleSearchLeads serves the search page. Form and query parameters are
// merged, so pagination links (GET) and the form (POST) share one handler.
func (s *Server) handleSearchLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.writePage(w, r, http.StatusBadRequest, msgBadRequest, err)
		return
	}

	req := searchRequestFrom(r)
	res, err := s.leads.Search(ctx, req)
	if err != nil {
		s.writePage(w, r, http.StatusInternalServerError, msgUnavailable, err)
		return
	}

	var shown *leads.Result
	if req.Submitted || strings.TrimSpace(req.Text) != "" {
		shown = &res
	}

	var buf bytes.Buffer
	if err := s.view.Page(&buf, req.Criterion, req.Text, shown); err != nil {
		s.writePage(w, r, http.StatusInternalServerError, msgUnavailable, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// searchRequestFrom builds the search request from parsed form values and
// the session in the request context.
func searchRequestFrom(r *http.Request) domain.SearchRequest {
	ownerID, agentID := auth.Scope(r.Context())
	page, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("current_page")))
	if err != nil || page < 1 {
		page = 1
	}
	_, submitted := r.Form["searchBtn"]
	return domain.SearchRequest{
		Criterion: domain.ParseCriterion(r.Form.Get("searchValue")),
		Text:      r.Form.Get("searchText"),
		Page:      page,
		OwnerID:   ownerID,
		AgentID:   agentID,
		Submitted: submitted,
	}
}

// writePage renders the error page with code. Server errors are logged at
// Error and sent to Sentry.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, code int, msg string, err error) {
	ctx := r.Context()
	if code >= 500 {
		s.logger.ErrorContext(ctx, "search page failed", "status", code, "error", err)
		captureError(ctx, err, code, msg)
	} else {
		s.logger.WarnContext(ctx, "search page rejected", "status", code, "error", err)
	}

	var buf bytes.Buffer
	if rerr := s.view.Error(&buf, msg); rerr != nil {
		http.Error(w, msg, code)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

func (s *Server) denyPage(w http.ResponseWriter, r *http.Request, code int, err error) {
	msg := msgUnauthorized
	if code >= 500 {
		msg = msgUnavailable
	}
	s.writePage(w, r, code, msg, err)
}
