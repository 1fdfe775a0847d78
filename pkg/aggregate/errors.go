package aggregate

import "fmt"

// ConfigError indicates invalid aggregation inputs: an empty persona
// list, a non-positive raw weight, or zero total applied weight.
type ConfigError struct {
	PersonaID string
	Reason    string
}

func (e ConfigError) Error() string {
	if e.PersonaID == "" {
		return "aggregation config: " + e.Reason
	}

	return fmt.Sprintf("aggregation config: %s (persona: %s)", e.Reason, e.PersonaID)
}
