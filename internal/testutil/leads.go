package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"leadsearch/internal/domain"
	"leadsearch/internal/storage"
)

// Owners used by SampleLeads.
const (
	OwnerA int64 = 1
	OwnerB int64 = 2
	// OwnerC holds no sample leads; store suites add their own.
	OwnerC int64 = 3
)

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 9, 30, 0, 0, time.UTC)
}

// SampleLeads returns a fixed lead set covering every searchable column.
// Phones are stored in canonical form.
func SampleLeads() []domain.Lead {
	return []domain.Lead{
		{
			OwnerID: OwnerA, FirstName: "Ada", LastName: "Lovelace",
			MainPhoneArea: "555", MainPhone: "555-123-4567",
			SecondPhoneArea: "555", SecondPhone: "222-0000",
			Email: "ada@example.com", Sex: "F", City: "London", State: "LDN",
			CurrentStatus: "New", Office: "North", CRMID: "CRM-100", MarketingID: "MKT-1",
			CompanyName: "Analytical Engines", RealDate: day(time.March, 1),
		},
		{
			OwnerID: OwnerA, FirstName: "Adam", LastName: "Smith", FullName: "Adam Smith Jr.",
			MainPhoneArea: "555", MainPhone: "555-987-6543",
			Email: "adam.smith+leads@example.com", Sex: "M", City: "Kirkcaldy", State: "FIF",
			CurrentStatus: "Contacted", Office: "North", CRMID: "CRM-101", MarketingID: "MKT-2",
			CompanyName: "Wealth of Nations", RealDate: day(time.March, 2),
		},
		{
			OwnerID: OwnerA, FirstName: "Grace", LastName: "Hopper",
			MainPhoneArea: "312", MainPhone: "312-555-0199",
			Email: "grace@navy.mil", Sex: "F", City: "Arlington", State: "VA",
			CurrentStatus: "Closed", Office: "South", CRMID: "CRM-102", MarketingID: "MKT-1",
			CompanyName: "Navy", RealDate: day(time.February, 1),
		},
		{
			OwnerID: OwnerA, FirstName: "Lead_100%", LastName: "Wild",
			MainPhone: "867-5309",
			Email:     "wild@example.org", City: "Nowhere", State: "NA",
			CurrentStatus: "New", Office: "South", CRMID: "CRM-103", MarketingID: "MKT-3",
			CompanyName: "100% Pure_Co", RealDate: day(time.January, 1),
		},
		{
			OwnerID: OwnerB, FirstName: "Ada", LastName: "Byron",
			MainPhoneArea: "555", MainPhone: "555-123-4567",
			Email: "ada@example.com", CRMID: "CRM-100", MarketingID: "MKT-1",
			CompanyName: "Analytical Engines", RealDate: day(time.March, 5),
		},
	}
}

// LeadStore is a store that can be seeded.
type LeadStore interface {
	storage.Store
	storage.LeadWriter
}

// RunLeadStoreSuite exercises the query contract every backend must honor.
// The store must be empty; the suite seeds SampleLeads.
func RunLeadStoreSuite(t *testing.T, s LeadStore) {
	t.Helper()
	ctx := context.Background()

	seeded, err := s.InsertLeads(ctx, SampleLeads()...)
	if err != nil {
		t.Fatalf("seed leads: %v", err)
	}
	byName := map[string]int64{}
	for _, l := range seeded {
		if l.ID == 0 {
			t.Fatalf("seeded lead %q has no id", l.FirstName)
		}
		if l.OwnerID == OwnerA {
			byName[l.FirstName] = l.ID
		}
	}

	sub := func(col, text string) storage.LeadQuery {
		return storage.LeadQuery{OwnerID: OwnerA, Column: col, Text: text, Match: domain.MatchSubstring}
	}
	exact := func(col, text string) storage.LeadQuery {
		return storage.LeadQuery{OwnerID: OwnerA, Column: col, Text: text, Match: domain.MatchExact}
	}

	tests := []struct {
		name  string
		query storage.LeadQuery
		want  []string // first names in result order
	}{
		{"first name substring", sub(storage.ColumnFirstName, "ada"), []string{"Adam", "Ada"}},
		{"first name case insensitive", sub(storage.ColumnFirstName, "ADA"), []string{"Adam", "Ada"}},
		{"last name substring", sub(storage.ColumnLastName, "opp"), []string{"Grace"}},
		{"phone substring", sub(storage.ColumnMainPhone, "555-123"), []string{"Ada"}},
		{"phone digits across separator", sub(storage.ColumnMainPhone, "2345"), []string{"Ada"}},
		{"phone partial with separator", sub(storage.ColumnMainPhone, "23-45"), []string{"Ada"}},
		{"email substring", sub(storage.ColumnEmail, "example.com"), []string{"Adam", "Ada"}},
		{"company substring", sub(storage.ColumnCompanyName, "nations"), []string{"Adam"}},
		{"underscore is literal", sub(storage.ColumnFirstName, "_"), []string{"Lead_100%"}},
		{"percent is literal", sub(storage.ColumnCompanyName, "%"), []string{"Lead_100%"}},
		{"no match", sub(storage.ColumnFirstName, "zzz"), nil},
		{"crm exact", exact(storage.ColumnCRMID, "CRM-100"), []string{"Ada"}},
		{"crm prefix is not a match", exact(storage.ColumnCRMID, "CRM-10"), nil},
		{"marketing exact", exact(storage.ColumnMarketingID, "MKT-1"), []string{"Ada", "Grace"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := s.CountLeads(ctx, tt.query)
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if n != len(tt.want) {
				t.Errorf("count = %d, want %d", n, len(tt.want))
			}
			leads, err := s.QueryLeads(ctx, tt.query)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if diff := cmp.Diff(tt.want, firstNames(leads)); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
			for _, l := range leads {
				if l.OwnerID != OwnerA {
					t.Errorf("lead %d belongs to owner %d", l.ID, l.OwnerID)
				}
			}
		})
	}

	t.Run("limit and offset", func(t *testing.T) {
		q := sub(storage.ColumnFirstName, "a")
		q.Limit = 2
		first, err := s.QueryLeads(ctx, q)
		if err != nil {
			t.Fatalf("page 1: %v", err)
		}
		q.Offset = 2
		second, err := s.QueryLeads(ctx, q)
		if err != nil {
			t.Fatalf("page 2: %v", err)
		}
		if diff := cmp.Diff([]string{"Adam", "Ada"}, firstNames(first)); diff != "" {
			t.Errorf("page 1 mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"Grace", "Lead_100%"}, firstNames(second)); diff != "" {
			t.Errorf("page 2 mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("row fields round trip", func(t *testing.T) {
		leads, err := s.QueryLeads(ctx, exact(storage.ColumnCRMID, "CRM-101"))
		if err != nil || len(leads) != 1 {
			t.Fatalf("query: %v (%d rows)", err, len(leads))
		}
		want := SampleLeads()[1]
		want.ID = byName["Adam"]
		got := leads[0]
		if !got.RealDate.Equal(want.RealDate) {
			t.Errorf("real_date = %v, want %v", got.RealDate, want.RealDate)
		}
		got.RealDate = want.RealDate
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("lead mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("owner scoping", func(t *testing.T) {
		q := exact(storage.ColumnCRMID, "CRM-100")
		q.OwnerID = OwnerB
		leads, err := s.QueryLeads(ctx, q)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(leads) != 1 || leads[0].LastName != "Byron" {
			t.Fatalf("expected only owner B lead, got %+v", leads)
		}
	})

	t.Run("unicode case folding", func(t *testing.T) {
		if _, err := s.InsertLeads(ctx, domain.Lead{OwnerID: OwnerC, FirstName: "Émile", LastName: "Zola", RealDate: day(time.April, 1)}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		for _, text := range []string{"ÉMILE", "émile", "mil"} {
			q := sub(storage.ColumnFirstName, text)
			q.OwnerID = OwnerC
			leads, err := s.QueryLeads(ctx, q)
			if err != nil {
				t.Fatalf("query %q: %v", text, err)
			}
			if diff := cmp.Diff([]string{"Émile"}, firstNames(leads)); diff != "" {
				t.Errorf("query %q mismatch (-want +got):\n%s", text, diff)
			}
		}
	})

	t.Run("validation", func(t *testing.T) {
		bad := []storage.LeadQuery{
			{OwnerID: 0, Column: storage.ColumnFirstName, Text: "a"},
			{OwnerID: OwnerA, Column: "password", Text: "a"},
			{OwnerID: OwnerA, Column: "fname; DROP TABLE leads", Text: "a"},
			{OwnerID: OwnerA, Column: storage.ColumnFirstName, Text: "a", Limit: -1},
		}
		for _, q := range bad {
			if _, err := s.CountLeads(ctx, q); !errors.Is(err, storage.ErrValidation) {
				t.Errorf("CountLeads(%+v) err = %v, want ErrValidation", q, err)
			}
			if _, err := s.QueryLeads(ctx, q); !errors.Is(err, storage.ErrValidation) {
				t.Errorf("QueryLeads(%+v) err = %v, want ErrValidation", q, err)
			}
		}
	})

	if err := s.Ping(ctx); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func firstNames(leads []domain.Lead) []string {
	var out []string
	for _, l := range leads {
		out = append(out, l.FirstName)
	}
	return out
}
