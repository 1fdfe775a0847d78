// Package persona models the synthetic participants of a focus-group
// study and provides a small file-backed store for their profiles.
package persona

import (
	"time"

	"github.com/google/uuid"
)

// Persona is one synthetic participant profile. Only ID and Name are
// required; the demographic and behavioral fields shape how a
// participant is presented and grouped, not how turns are validated.
type Persona struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Age        int    `json:"age,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Location   string `json:"location,omitempty"`
	Occupation string `json:"occupation,omitempty"`

	Traits    []string `json:"traits,omitempty"`
	Values    []string `json:"values,omitempty"`
	Interests []string `json:"interests,omitempty"`

	// CommunicationStyle is one of verbose, concise, balanced.
	CommunicationStyle string `json:"communication_style,omitempty"`
	// ResponseTendency is one of agreeable, contrarian, honest.
	ResponseTendency string `json:"response_tendency,omitempty"`

	Background string `json:"background,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Active    bool      `json:"active"`
}

// New creates an active persona with a generated ID and current
// timestamps.
func New(name string) Persona {
	now := time.Now().UTC()
	return Persona{
		ID:                 uuid.NewString(),
		Name:               name,
		CommunicationStyle: "balanced",
		ResponseTendency:   "honest",
		CreatedAt:          now,
		UpdatedAt:          now,
		Active:             true,
	}
}

// Seed returns the default personas used by the demo session.
func Seed() []Persona {
	now := time.Now().UTC()

	return []Persona{
		{
			ID:                 "persona_startup_cto",
			Name:               "Dana Reyes",
			Age:                34,
			Gender:             "female",
			Location:           "Austin, TX",
			Occupation:         "CTO at a 12-person SaaS startup",
			Traits:             []string{"pragmatic", "direct", "budget-conscious"},
			Values:             []string{"developer experience", "speed of iteration"},
			Interests:          []string{"automation", "open source"},
			CommunicationStyle: "concise",
			ResponseTendency:   "honest",
			Background:         "Built two previous products on shoestring budgets; evaluates tools by time-to-first-value.",
			CreatedAt:          now,
			UpdatedAt:          now,
			Active:             true,
		},
		{
			ID:                 "persona_enterprise_pm",
			Name:               "Marcus Okafor",
			Age:                45,
			Gender:             "male",
			Location:           "Chicago, IL",
			Occupation:         "Senior product manager at a Fortune 500 insurer",
			Traits:             []string{"methodical", "risk-averse", "consensus-driven"},
			Values:             []string{"compliance", "vendor stability"},
			Interests:          []string{"process design", "stakeholder management"},
			CommunicationStyle: "verbose",
			ResponseTendency:   "agreeable",
			Background:         "Owns a procurement checklist a mile long; nothing ships without security review sign-off.",
			CreatedAt:          now,
			UpdatedAt:          now,
			Active:             true,
		},
		{
			ID:                 "persona_freelance_designer",
			Name:               "Priya Nair",
			Age:                29,
			Gender:             "female",
			Location:           "Remote, based in Lisbon",
			Occupation:         "Freelance product designer",
			Traits:             []string{"curious", "aesthetic-driven", "skeptical of lock-in"},
			Values:             []string{"portability", "clean interfaces"},
			Interests:          []string{"design systems", "indie tools"},
			CommunicationStyle: "balanced",
			ResponseTendency:   "contrarian",
			Background:         "Switches tools often and cancels subscriptions fast when onboarding friction shows up.",
			CreatedAt:          now,
			UpdatedAt:          now,
			Active:             true,
		},
	}
}
