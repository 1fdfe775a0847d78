package session

import (
	"fmt"
	"strings"
)

// ValidationError aggregates every problem found in a batch. Saves are
// all-or-nothing, so callers get the complete list in one shot instead
// of fixing records one failure at a time.
type ValidationError struct {
	Problems []error
}

func (e ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("batch validation failed: %s", e.Problems[0])
	}

	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}

	return fmt.Sprintf("batch validation failed with %d problems: %s", len(e.Problems), strings.Join(msgs, "; "))
}

func (e ValidationError) Unwrap() []error {
	return e.Problems
}
