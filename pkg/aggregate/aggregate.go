// Package aggregate turns raw per-persona responses into
// importance-weighted summary statistics. Every operation is a pure
// function: no storage, no side effects, data in and numbers out.
package aggregate

import "sort"

// Weight carries a persona's raw analysis weight. Rank and IsPrimary
// are display metadata only; the math uses Weight alone.
type Weight struct {
	PersonaID string  `json:"persona_id"`
	Weight    float64 `json:"weight"`
	Rank      int     `json:"rank,omitempty"`
	IsPrimary bool    `json:"is_primary"`
}

// Response is one persona's scored contribution to an aggregation
// call. Sentiment is typically in [-1, 1] but the aggregator does not
// constrain it.
type Response struct {
	PersonaID string   `json:"persona_id"`
	Sentiment float64  `json:"sentiment"`
	Themes    []string `json:"themes"`
}

// ThemeWeight is one entry of the ranked theme-importance list.
type ThemeWeight struct {
	Theme  string  `json:"theme"`
	Weight float64 `json:"weight"`
}

// NormalizeWeights rescales raw persona weights so the normalized set
// sums to the persona count (average weight 1.0). A weighted sum over
// normalized weights is therefore directly comparable to an unweighted
// average when every persona carries the same raw weight.
func NormalizeWeights(personas []Weight) (map[string]float64, error) {
	if len(personas) == 0 {
		return nil, ConfigError{Reason: "no personas to normalize"}
	}

	total := 0.0
	for _, p := range personas {
		if p.Weight <= 0 {
			return nil, ConfigError{
				PersonaID: p.PersonaID,
				Reason:    "persona weight must be positive",
			}
		}
		total += p.Weight
	}

	count := float64(len(personas))
	normalized := make(map[string]float64, len(personas))
	for _, p := range personas {
		normalized[p.PersonaID] = p.Weight / total * count
	}

	return normalized, nil
}

// WeightedSentiment computes the weight-adjusted mean sentiment over
// the given responses. The divisor is the total weight actually
// applied: a persona that never responded contributes to neither the
// numerator nor the denominator. A response from a persona missing
// from the weight map carries weight 1.0.
func WeightedSentiment(responses []Response, weights map[string]float64) (float64, error) {
	weightedSum := 0.0
	totalWeight := 0.0

	for _, r := range responses {
		w := weightFor(r.PersonaID, weights)
		weightedSum += r.Sentiment * w
		totalWeight += w
	}

	if totalWeight == 0 {
		return 0, ConfigError{Reason: "no weighted responses to aggregate"}
	}

	return weightedSum / totalWeight, nil
}

// ThemeImportance accumulates each responding persona's full
// normalized weight onto every theme that response mentions; weight is
// not divided across a response's themes. The result is sorted by
// descending weight with ties kept in first-seen theme order, so the
// ranking is deterministic across runs.
func ThemeImportance(responses []Response, weights map[string]float64) []ThemeWeight {
	accumulated := map[string]float64{}
	order := []string{}

	for _, r := range responses {
		w := weightFor(r.PersonaID, weights)
		for _, theme := range r.Themes {
			if _, seen := accumulated[theme]; !seen {
				order = append(order, theme)
			}
			accumulated[theme] += w
		}
	}

	ranked := make([]ThemeWeight, 0, len(order))
	for _, theme := range order {
		ranked = append(ranked, ThemeWeight{Theme: theme, Weight: accumulated[theme]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Weight > ranked[j].Weight
	})

	return ranked
}

func weightFor(personaID string, weights map[string]float64) float64 {
	if w, ok := weights[personaID]; ok {
		return w
	}
	return 1.0
}
