package domain

import "time"

// Lead is a single row of the leads table. Leads are owned by the datastore;
// this service only reads them.
type Lead struct {
	ID              int64     `json:"lead_id"`
	OwnerID         int64     `json:"owner_id"`
	FirstName       string    `json:"fname"`
	LastName        string    `json:"lname"`
	FullName        string    `json:"full_name,omitempty"`
	MainPhoneArea   string    `json:"main_phone_area,omitempty"`
	MainPhone       string    `json:"main_phone,omitempty"`
	SecondPhoneArea string    `json:"second_phone_area,omitempty"`
	SecondPhone     string    `json:"second_phone,omitempty"`
	Email           string    `json:"email,omitempty"`
	Sex             string    `json:"sex,omitempty"`
	City            string    `json:"city,omitempty"`
	State           string    `json:"state,omitempty"`
	CurrentStatus   string    `json:"current_status,omitempty"`
	Office          string    `json:"name,omitempty"` // owning office, stored in the "name" column
	CRMID           string    `json:"crm_id,omitempty"`
	MarketingID     string    `json:"mkt_id,omitempty"`
	CompanyName     string    `json:"company_name,omitempty"`
	RealDate        time.Time `json:"real_date"`
}

// DisplayName returns the stored full name, falling back to "first last".
func (l Lead) DisplayName() string {
	if l.FullName != "" {
		return l.FullName
	}
	return l.FirstName + " " + l.LastName
}

// HasSecondPhone reports whether both parts of the second phone are set.
func (l Lead) HasSecondPhone() bool {
	return l.SecondPhoneArea != "" && l.SecondPhone != ""
}
