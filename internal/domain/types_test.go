package domain

import "testing"

func TestParseCriterion(t *testing.T) {
	tests := []struct {
		raw  string
		want Criterion
	}{
		{"fname", CriterionFirstName},
		{"lname", CriterionLastName},
		{"phone_number", CriterionPhone},
		{"email", CriterionEmail},
		{"crm_id", CriterionCRMID},
		{"mkt_id", CriterionMarketingID},
		{"company_name", CriterionCompanyName},
		{"", CriterionFirstName},
		{"password", CriterionFirstName},
		{"FNAME", CriterionFirstName}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseCriterion(tt.raw); got != tt.want {
				t.Errorf("ParseCriterion(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCriteriaHaveLabels(t *testing.T) {
	for _, c := range Criteria {
		if !c.Valid() {
			t.Errorf("criterion %q listed but not valid", c)
		}
		if c.Label() == string(c) {
			t.Errorf("criterion %q has no label", c)
		}
	}
}

func TestLeadDisplayName(t *testing.T) {
	l := Lead{FirstName: "Ada", LastName: "Lovelace"}
	if got := l.DisplayName(); got != "Ada Lovelace" {
		t.Errorf("DisplayName() = %q, want %q", got, "Ada Lovelace")
	}
	l.FullName = "Augusta Ada King"
	if got := l.DisplayName(); got != "Augusta Ada King" {
		t.Errorf("DisplayName() = %q, want full name", got)
	}
}

func TestLeadHasSecondPhone(t *testing.T) {
	tests := []struct {
		area, number string
		want         bool
	}{
		{"555", "123-4567", true},
		{"", "123-4567", false},
		{"555", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		l := Lead{SecondPhoneArea: tt.area, SecondPhone: tt.number}
		if got := l.HasSecondPhone(); got != tt.want {
			t.Errorf("HasSecondPhone(%q, %q) = %v, want %v", tt.area, tt.number, got, tt.want)
		}
	}
}
