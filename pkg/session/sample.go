package session

import "github.com/grouptheoryco/verbatim/pkg/turn"

// SampleStudyID and SampleSessionID name the demo session written by
// the seed command.
const (
	SampleStudyID   = "demo_study"
	SampleSessionID = "session_001"
)

// SampleTurns builds a small valid session: two personas asked the
// same questions over two rounds, with a follow-up in round two. Handy
// for seeding a fresh workspace and for exercising the full
// save/load/validate path end to end.
func SampleTurns() ([]*turn.Turn, error) {
	rounds := []struct {
		round    int
		question string
	}{
		{1, "What is your first impression of the product?"},
		{2, "How likely are you to recommend it to a colleague?"},
	}

	answers := map[string]map[int]string{
		"persona_startup_cto": {
			1: "The onboarding was quick, but pricing tiers confused me.",
			2: "Quite likely once the API documentation improves.",
		},
		"persona_enterprise_pm": {
			1: "Looks polished. I need to see the compliance story first.",
			2: "Not yet. Procurement will ask about SSO support.",
		},
	}

	tags := map[string][]string{
		"persona_startup_cto":   {"pricing", "onboarding"},
		"persona_enterprise_pm": {"compliance", "integrations"},
	}

	confidence := map[string]float64{
		"persona_startup_cto":   0.82,
		"persona_enterprise_pm": 0.74,
	}

	personas := []string{"persona_startup_cto", "persona_enterprise_pm"}

	turns := []*turn.Turn{}
	for _, r := range rounds {
		for _, persona := range personas {
			t, err := turn.NewWithTimestamp(turn.Turn{
				StudyID:    SampleStudyID,
				SessionID:  SampleSessionID,
				PersonaID:  persona,
				RoundID:    r.round,
				Question:   r.question,
				Answer:     answers[persona][r.round],
				Confidence: confidence[persona],
				Tags:       tags[persona],
			})
			if err != nil {
				return nil, err
			}

			if r.round == 2 {
				t.FollowUpQuestion = turn.StringPtr("What would change your mind?")
				t.FollowUpAnswer = turn.StringPtr("A clear security and pricing page.")
			}

			turns = append(turns, t)
		}
	}

	return turns, nil
}
