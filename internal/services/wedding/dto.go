package wedding

import (
	"encoding/json"
)

// VenueInfo describes one bookable location. Caterers are named by Company,
// every other section by Name. Website and Phone are optional; models are
// asked for one of the two.
type VenueInfo struct {
	Name    string `json:"name,omitempty" validate:"required_without=Company"`
	Company string `json:"company,omitempty" validate:"required_without=Name"`
	Address string `json:"address" validate:"required"`
	Price   string `json:"price" validate:"required"`
	Website string `json:"website,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// BudgetBreakdown is free-form display text per category.
type BudgetBreakdown struct {
	Ceremony     string `json:"ceremony"`
	Reception    string `json:"reception"`
	Catering     string `json:"catering"`
	WelcomeParty string `json:"welcomeParty"`
	AfterParty   string `json:"afterParty"`
}

type EstimatedBudget struct {
	Total     string          `json:"total" validate:"required"`
	Breakdown BudgetBreakdown `json:"breakdown"`
}

// WeddingPlan is the six-section plan returned by /api/wedding.
type WeddingPlan struct {
	ReceptionDinner    *VenueInfo       `json:"receptionDinner" validate:"required"`
	WelcomeParty       *VenueInfo       `json:"welcomeParty" validate:"required"`
	Catering           *VenueInfo       `json:"catering" validate:"required"`
	WeddingLocations   []VenueInfo      `json:"weddingLocations" validate:"len=3,dive"`
	ReceptionLocation  *VenueInfo       `json:"receptionLocation" validate:"required"`
	AfterPartyLocation *VenueInfo       `json:"afterPartyLocation" validate:"required"`
	EstimatedBudget    *EstimatedBudget `json:"estimatedBudget,omitempty"`
}

// venueOptions is the three ceremony alternatives returned for a
// weddingLocations refresh. It decodes from a bare JSON array.
type venueOptions struct {
	Venues []VenueInfo `validate:"len=3,dive"`
}

func (o *venueOptions) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &o.Venues)
}

// PlanRequest represents a full plan request
type PlanRequest struct {
	Location  string `json:"location"`
	Budget    *int64 `json:"budget,omitempty"`
	Attendees *int64 `json:"attendees,omitempty"`
}

// SectionRefreshRequest asks for a different option for one section.
// ExistingPlan is accepted for compatibility and not used.
type SectionRefreshRequest struct {
	Location       string          `json:"location"`
	Budget         *int64          `json:"budget,omitempty"`
	Attendees      *int64          `json:"attendees,omitempty"`
	SectionType    string          `json:"sectionType"`
	CurrentContent json.RawMessage `json:"currentContent"`
	ExistingPlan   json.RawMessage `json:"existingPlan,omitempty"`
}

// RefreshResult carries either a *VenueInfo or a []VenueInfo.
type RefreshResult struct {
	NewContent interface{} `json:"newContent"`
}

// positive returns the value of p when it is set and greater than zero.
func positive(p *int64) (int64, bool) {
	if p == nil || *p <= 0 {
		return 0, false
	}
	return *p, true
}
