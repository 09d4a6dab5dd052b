package storage

import (
	"fmt"
	"strings"

	"leadsearch/internal/domain"
)

// Searchable lead columns. Only these may appear in a LeadQuery.
const (
	ColumnFirstName   = "fname"
	ColumnLastName    = "lname"
	ColumnMainPhone   = "main_phone"
	ColumnEmail       = "email"
	ColumnCRMID       = "crm_id"
	ColumnMarketingID = "mkt_id"
	ColumnCompanyName = "company_name"
)

var searchableColumns = map[string]struct{}{
	ColumnFirstName:   {},
	ColumnLastName:    {},
	ColumnMainPhone:   {},
	ColumnEmail:       {},
	ColumnCRMID:       {},
	ColumnMarketingID: {},
	ColumnCompanyName: {},
}

// LeadColumns is the column list selected by SQL backends, in scan order.
const LeadColumns = `lead_id, owner_id, fname, lname, full_name, main_phone_area, main_phone,
second_phone_area, second_phone, email, sex, city, state, current_status, name,
crm_id, mkt_id, company_name, real_date`

// LeadOrder is the ordering every backend applies.
const LeadOrder = `ORDER BY real_date DESC, lead_id DESC`

// LeadQuery selects leads of one owner by a single column.
type LeadQuery struct {
	OwnerID int64
	Column  string
	Text    string
	Match   domain.MatchMode
	// Limit caps the number of rows; zero means no cap.
	Limit  int
	Offset int
}

// Validate rejects queries that could not be expressed safely.
func (q LeadQuery) Validate() error {
	if q.OwnerID <= 0 {
		return fmt.Errorf("owner_id required: %w", ErrValidation)
	}
	if _, ok := searchableColumns[q.Column]; !ok {
		return fmt.Errorf("column %q not searchable: %w", q.Column, ErrValidation)
	}
	if q.Limit < 0 || q.Offset < 0 {
		return fmt.Errorf("limit and offset must not be negative: %w", ErrValidation)
	}
	return nil
}

// Pattern returns the LIKE pattern for a substring match, with the LIKE
// wildcards in the user text escaped by a backslash. It is compared
// against SubstringExpr(q.Column).
func (q LeadQuery) Pattern() string {
	return "%" + EscapeLike(SubstringValue(q.Column, q.Text)) + "%"
}

// Phone numbers are stored canonically as 555-123-4567. Substring matches
// on main_phone ignore the separator on both sides so a partial number
// matches across it.
const phoneSeparator = "-"

// SubstringExpr returns the SQL expression a substring match on column
// compares against. column must already be validated.
func SubstringExpr(column string) string {
	if column == ColumnMainPhone {
		return "REPLACE(" + column + ", '" + phoneSeparator + "', '')"
	}
	return column
}

// SubstringValue is the in-process counterpart of SubstringExpr, applied to
// a stored value or to the search text.
func SubstringValue(column, v string) string {
	if column == ColumnMainPhone {
		return strings.ReplaceAll(v, phoneSeparator, "")
	}
	return v
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes %, _ and \ so they match literally under ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
