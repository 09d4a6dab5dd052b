// Package leads runs agent searches against the leads table: it picks the
// query for a criterion, normalizes the search text, records the audit
// entry and pages the results.
package leads

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"leadsearch/internal/audit"
	"leadsearch/internal/domain"
	"leadsearch/internal/observability"
	"leadsearch/internal/pagination"
	"leadsearch/internal/storage"
)

// ErrSearchFailed wraps any datastore failure during a search, including
// the audit write.
var ErrSearchFailed = errors.New("lead search failed")

// Result is one page of a search.
type Result struct {
	Criterion domain.Criterion  `json:"searchValue"`
	Text      string            `json:"searchText"`
	Leads     []domain.Lead     `json:"leads"`
	Window    pagination.Window `json:"pagination"`
}

// Empty reports whether the search matched nothing.
func (r Result) Empty() bool { return len(r.Leads) == 0 }

// Service dispatches searches to the store.
type Service struct {
	store   storage.Store
	log     audit.SearchLog
	pages   pagination.Config
	logger  observability.Logger
	metrics *observability.Metrics
}

// NewService creates a search service.
// If searchLog is nil, an in-memory log is used.
// If logger is nil, logging is discarded. A nil metrics disables counting.
func NewService(store storage.Store, searchLog audit.SearchLog, pages pagination.Config, logger observability.Logger, metrics *observability.Metrics) *Service {
	if searchLog == nil {
		searchLog = audit.NewMemorySearchLog()
	}
	if logger == nil {
		logger = observability.Discard()
	}
	return &Service{
		store:   store,
		log:     searchLog,
		pages:   pages,
		logger:  logger.WithComponent("leads"),
		metrics: metrics,
	}
}

// Pages returns the pagination sizes used by the service.
func (s *Service) Pages() pagination.Config { return s.pages }

// Search runs req and returns the requested page, clamped into range.
// Empty text or a missing owner yields an empty result without touching
// the store. A submitted search is audited first; if the audit entry
// cannot be written the search fails with ErrSearchFailed.
func (s *Service) Search(ctx context.Context, req domain.SearchRequest) (Result, error) {
	criterion, strat := strategyFor(req.Criterion)
	text := strings.TrimSpace(req.Text)

	res := Result{
		Criterion: criterion,
		Text:      text,
		Window:    pagination.Calculate(0, req.Page, s.pages),
	}
	if text == "" || req.OwnerID <= 0 {
		return res, nil
	}

	if req.Submitted && req.AgentID > 0 {
		if err := s.recordSearch(ctx, req.AgentID, criterion, text); err != nil {
			return Result{}, s.failed(ctx, criterion, "audit", err)
		}
	}

	q := storage.LeadQuery{
		OwnerID: req.OwnerID,
		Column:  strat.column,
		Text:    strat.text(text),
		Match:   strat.match,
	}
	// Text that normalizes away (a phone with no digits) matches nothing
	// rather than everything.
	if q.Text == "" {
		return res, nil
	}

	total, err := s.store.CountLeads(ctx, q)
	if err != nil {
		return Result{}, s.failed(ctx, criterion, "count", err)
	}
	res.Window = pagination.Calculate(total, req.Page, s.pages)

	if total > 0 {
		if strat.paginated {
			q.Limit = res.Window.PageSize
			q.Offset = res.Window.Offset()
		}
		found, err := s.store.QueryLeads(ctx, q)
		if err != nil {
			return Result{}, s.failed(ctx, criterion, "query", err)
		}
		if !strat.paginated {
			found = pageOf(found, res.Window)
		}
		res.Leads = found
	}

	s.metrics.RecordSearch(string(criterion), strat.match.String())
	s.logger.InfoContext(ctx, "lead search",
		"criterion", string(criterion),
		"match", strat.match.String(),
		"owner_id", req.OwnerID,
		"total", total,
		"page", res.Window.CurrentPage,
		"rows", len(res.Leads),
	)
	return res, nil
}

func (s *Service) failed(ctx context.Context, criterion domain.Criterion, stage string, err error) error {
	s.metrics.RecordSearchFailure(string(criterion))
	s.logger.ErrorContext(ctx, "lead search failed", "criterion", string(criterion), "stage", stage, "error", err)
	return fmt.Errorf("%w: %s: %w", ErrSearchFailed, stage, err)
}

// recordSearch appends the audit entry. A search that cannot be audited
// must not run, so the caller fails on error.
func (s *Service) recordSearch(ctx context.Context, agentID int64, criterion domain.Criterion, text string) error {
	entry := &audit.SearchEntry{
		AgentID:        agentID,
		SearchValue:    html.EscapeString(text),
		SearchCriteria: CriteriaText(criterion),
	}
	if err := s.log.Log(ctx, entry); err != nil {
		s.metrics.RecordAuditFailure()
		return err
	}
	return nil
}

// CriteriaText is the audit label of a criterion: its wire value with
// underscores as spaces, title cased ("phone_number" -> "Phone Number").
func CriteriaText(c domain.Criterion) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(c), "_", " "))
}

// pageOf cuts the current page out of a full result set.
func pageOf(all []domain.Lead, w pagination.Window) []domain.Lead {
	start := w.Offset()
	if start >= len(all) {
		return nil
	}
	end := start + w.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
