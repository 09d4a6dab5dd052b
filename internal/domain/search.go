package domain

// Criterion selects the lead field a search runs against. The string value is
// the wire value of the searchValue request parameter.
type Criterion string

const (
	CriterionFirstName   Criterion = "fname"
	CriterionLastName    Criterion = "lname"
	CriterionPhone       Criterion = "phone_number"
	CriterionEmail       Criterion = "email"
	CriterionCRMID       Criterion = "crm_id"
	CriterionMarketingID Criterion = "mkt_id"
	CriterionCompanyName Criterion = "company_name"
)

// DefaultCriterion is used when the request names no criterion or an unknown one.
const DefaultCriterion = CriterionFirstName

// Criteria lists every supported criterion in form display order.
var Criteria = []Criterion{
	CriterionFirstName,
	CriterionLastName,
	CriterionPhone,
	CriterionEmail,
	CriterionCRMID,
	CriterionMarketingID,
	CriterionCompanyName,
}

// Valid reports whether c is one of the supported criteria.
func (c Criterion) Valid() bool {
	for _, k := range Criteria {
		if c == k {
			return true
		}
	}
	return false
}

// Label is the human-readable form option for c.
func (c Criterion) Label() string {
	switch c {
	case CriterionFirstName:
		return "First Name"
	case CriterionLastName:
		return "Last Name"
	case CriterionPhone:
		return "Phone Number"
	case CriterionEmail:
		return "E-Mail"
	case CriterionCRMID:
		return "CRM ID"
	case CriterionMarketingID:
		return "Marketing ID"
	case CriterionCompanyName:
		return "Company Name"
	default:
		return string(c)
	}
}

// ParseCriterion maps a raw searchValue to a criterion, falling back to
// DefaultCriterion for anything unrecognized.
func ParseCriterion(raw string) Criterion {
	c := Criterion(raw)
	if c.Valid() {
		return c
	}
	return DefaultCriterion
}

// MatchMode is how the search text is compared against the target column.
type MatchMode int

const (
	// MatchSubstring is a case-insensitive "contains" comparison.
	MatchSubstring MatchMode = iota
	// MatchExact is an equality comparison.
	MatchExact
)

func (m MatchMode) String() string {
	if m == MatchExact {
		return "exact"
	}
	return "substring"
}

// SearchRequest describes one lead search as issued by an agent.
type SearchRequest struct {
	// Criterion is the field to search. Invalid values are replaced by DefaultCriterion.
	Criterion Criterion `json:"searchValue"`
	// Text is the raw search text as typed by the agent.
	Text string `json:"searchText"`
	// Page is the requested 1-based page number.
	Page int `json:"current_page"`
	// OwnerID scopes the search to a tenant. Zero means no scope and no search.
	OwnerID int64 `json:"owner_id"`
	// AgentID identifies the acting agent for the audit log. Zero means unknown.
	AgentID int64 `json:"admin_id"`
	// Submitted is true when the search form was submitted rather than a page link followed.
	Submitted bool `json:"submitted"`
}
