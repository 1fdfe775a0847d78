// Package project models a research project: the study framing plus
// the persona roster with analysis weights, ranks, and a primary ICP
// (ideal customer profile) designation.
package project

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/grouptheoryco/verbatim/pkg/aggregate"
)

// Participant bounds applied during configuration validation.
const (
	DefaultMinParticipants = 3
	DefaultMaxParticipants = 20
)

// PersonaWeight assigns one persona its analysis weight and optional
// rank within a project. Rank 0 means unranked.
type PersonaWeight struct {
	PersonaID string  `json:"persona_id"`
	Weight    float64 `json:"weight"`
	Rank      int     `json:"rank,omitempty"`
	IsPrimary bool    `json:"is_primary_icp"`
}

// Project is a focus-group research project.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	ResearchTopic     string   `json:"research_topic"`
	ResearchQuestions []string `json:"research_questions"`

	PersonaWeights  []PersonaWeight `json:"persona_weights"`
	MinParticipants int             `json:"min_participants"`
	MaxParticipants int             `json:"max_participants"`

	PrimaryICPPersonaID string `json:"primary_icp_persona_id,omitempty"`

	WeightedAnalysis bool `json:"weighted_analysis_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a project with a generated ID, default participant
// bounds, and weighted analysis enabled.
func New(name, topic string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:               uuid.NewString(),
		Name:             name,
		ResearchTopic:    topic,
		PersonaWeights:   []PersonaWeight{},
		MinParticipants:  DefaultMinParticipants,
		MaxParticipants:  DefaultMaxParticipants,
		WeightedAnalysis: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// AddPersona assigns a persona to the project with the given weight.
// Adding a persona that is already assigned or would exceed the
// participant ceiling fails.
func (p *Project) AddPersona(personaID string, weight float64) error {
	if len(p.PersonaWeights) >= p.MaxParticipants {
		return fmt.Errorf("project %s: participant limit of %d reached", p.Name, p.MaxParticipants)
	}

	if _, ok := p.personaWeight(personaID); ok {
		return fmt.Errorf("project %s: persona %s already assigned", p.Name, personaID)
	}

	p.PersonaWeights = append(p.PersonaWeights, PersonaWeight{
		PersonaID: personaID,
		Weight:    weight,
	})
	p.touch()

	return nil
}

// RemovePersona drops a persona from the project, clearing the primary
// ICP designation if it pointed at the removed persona.
func (p *Project) RemovePersona(personaID string) bool {
	kept := p.PersonaWeights[:0]
	removed := false
	for _, pw := range p.PersonaWeights {
		if pw.PersonaID == personaID {
			removed = true
			continue
		}
		kept = append(kept, pw)
	}
	p.PersonaWeights = kept

	if removed {
		if p.PrimaryICPPersonaID == personaID {
			p.PrimaryICPPersonaID = ""
		}
		p.touch()
	}

	return removed
}

// SetPrimaryICP marks one assigned persona as the primary ICP. The
// flag is exclusive: any previous designation is cleared.
func (p *Project) SetPrimaryICP(personaID string) error {
	if _, ok := p.personaWeight(personaID); !ok {
		return fmt.Errorf("project %s: persona %s not assigned", p.Name, personaID)
	}

	for i := range p.PersonaWeights {
		p.PersonaWeights[i].IsPrimary = p.PersonaWeights[i].PersonaID == personaID
	}
	p.PrimaryICPPersonaID = personaID
	p.touch()

	return nil
}

// SetWeight updates an assigned persona's raw weight.
func (p *Project) SetWeight(personaID string, weight float64) error {
	i, ok := p.personaWeight(personaID)
	if !ok {
		return fmt.Errorf("project %s: persona %s not assigned", p.Name, personaID)
	}

	p.PersonaWeights[i].Weight = weight
	p.touch()
	return nil
}

// SetRank updates an assigned persona's rank. Rank 1 is the highest
// priority.
func (p *Project) SetRank(personaID string, rank int) error {
	i, ok := p.personaWeight(personaID)
	if !ok {
		return fmt.Errorf("project %s: persona %s not assigned", p.Name, personaID)
	}

	p.PersonaWeights[i].Rank = rank
	p.touch()
	return nil
}

// RankedPersonas returns the roster ordered for display: primary ICP
// first, then ascending rank with unranked personas last, then
// descending weight.
func (p *Project) RankedPersonas() []PersonaWeight {
	ranked := append([]PersonaWeight(nil), p.PersonaWeights...)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]

		if a.IsPrimary != b.IsPrimary {
			return a.IsPrimary
		}
		if a.Rank != b.Rank {
			if a.Rank == 0 {
				return false
			}
			if b.Rank == 0 {
				return true
			}
			return a.Rank < b.Rank
		}
		return a.Weight > b.Weight
	})

	return ranked
}

// PersonaIDs lists the assigned persona IDs in assignment order.
func (p *Project) PersonaIDs() []string {
	ids := make([]string, len(p.PersonaWeights))
	for i, pw := range p.PersonaWeights {
		ids[i] = pw.PersonaID
	}
	return ids
}

// Validate checks the project configuration and returns every problem
// found, not just the first.
func (p *Project) Validate() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, fmt.Errorf("project name is required"))
	}
	if p.ResearchTopic == "" {
		errs = append(errs, fmt.Errorf("research topic is required"))
	}
	if len(p.ResearchQuestions) == 0 {
		errs = append(errs, fmt.Errorf("at least one research question is required"))
	}

	if len(p.PersonaWeights) < p.MinParticipants {
		errs = append(errs, fmt.Errorf("at least %d personas must be assigned, have %d", p.MinParticipants, len(p.PersonaWeights)))
	}
	if len(p.PersonaWeights) > p.MaxParticipants {
		errs = append(errs, fmt.Errorf("cannot exceed %d personas, have %d", p.MaxParticipants, len(p.PersonaWeights)))
	}

	for _, pw := range p.PersonaWeights {
		if pw.Weight <= 0 {
			errs = append(errs, fmt.Errorf("persona weight must be positive (persona: %s)", pw.PersonaID))
		}
	}

	return errs
}

// AnalysisWeights bridges the roster into the aggregator's input type.
// With weighted analysis disabled every persona carries weight 1.0, so
// aggregation degrades to an unweighted average.
func (p *Project) AnalysisWeights() []aggregate.Weight {
	weights := make([]aggregate.Weight, len(p.PersonaWeights))
	for i, pw := range p.PersonaWeights {
		w := pw.Weight
		if !p.WeightedAnalysis {
			w = 1.0
		}

		weights[i] = aggregate.Weight{
			PersonaID: pw.PersonaID,
			Weight:    w,
			Rank:      pw.Rank,
			IsPrimary: pw.IsPrimary,
		}
	}
	return weights
}

func (p *Project) personaWeight(personaID string) (int, bool) {
	for i, pw := range p.PersonaWeights {
		if pw.PersonaID == personaID {
			return i, true
		}
	}
	return 0, false
}

func (p *Project) touch() {
	p.UpdatedAt = time.Now().UTC()
}
