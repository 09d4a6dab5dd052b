package leads

import (
	"net/url"
	"strings"

	"leadsearch/internal/domain"
	"leadsearch/internal/phone"
	"leadsearch/internal/storage"
)

// strategy describes how one criterion is searched.
type strategy struct {
	column    string
	match     domain.MatchMode
	normalize func(string) string
	// paginated is false when the datastore returns every match and the
	// page is cut in memory.
	paginated bool
}

var strategies = map[domain.Criterion]strategy{
	domain.CriterionFirstName:   {column: storage.ColumnFirstName, match: domain.MatchSubstring, paginated: true},
	domain.CriterionLastName:    {column: storage.ColumnLastName, match: domain.MatchSubstring, paginated: true},
	domain.CriterionPhone:       {column: storage.ColumnMainPhone, match: domain.MatchSubstring, normalize: phone.Canonical, paginated: true},
	domain.CriterionEmail:       {column: storage.ColumnEmail, match: domain.MatchSubstring, normalize: unescapeEmail, paginated: true},
	domain.CriterionCompanyName: {column: storage.ColumnCompanyName, match: domain.MatchSubstring, paginated: true},
	domain.CriterionCRMID:       {column: storage.ColumnCRMID, match: domain.MatchExact},
	domain.CriterionMarketingID: {column: storage.ColumnMarketingID, match: domain.MatchExact},
}

func strategyFor(c domain.Criterion) (domain.Criterion, strategy) {
	if s, ok := strategies[c]; ok {
		return c, s
	}
	return domain.DefaultCriterion, strategies[domain.DefaultCriterion]
}

func (s strategy) text(raw string) string {
	if s.normalize == nil {
		return raw
	}
	return s.normalize(raw)
}

// unescapeEmail undoes percent encoding that survives from a copied link,
// e.g. "ada%40example.com". A plus sign stays literal since it is valid in
// addresses. Undecodable text is searched as typed.
func unescapeEmail(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
