package turn

import (
	"fmt"
	"strconv"
)

// OutOfRangeError is returned when a numeric field falls outside its
// allowed bounds (confidence outside [0,1], round_id below 1).
type OutOfRangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e OutOfRangeError) Error() string {
	if e.Max == 0 && e.Field == "round_id" {
		return fmt.Sprintf("%s must be >= %d, got %d", e.Field, int(e.Min), int(e.Value))
	}

	return fmt.Sprintf("%s must be between %s and %s, got %s",
		e.Field,
		strconv.FormatFloat(e.Min, 'g', -1, 64),
		strconv.FormatFloat(e.Max, 'g', -1, 64),
		strconv.FormatFloat(e.Value, 'g', -1, 64),
	)
}

// FormatError is returned when a field's textual representation cannot
// be parsed (e.g. a timestamp that is not ISO-8601).
type FormatError struct {
	Field string
	Value string
}

func (e FormatError) Error() string {
	return fmt.Sprintf("invalid %s format: %q", e.Field, e.Value)
}

// SchemaError is returned when a record violates the closed schema:
// a required field is missing, a field has the wrong type, or an
// undeclared field is present.
type SchemaError struct {
	Field  string
	Reason string
}

func (e SchemaError) Error() string {
	if e.Field == "" {
		return "schema violation: " + e.Reason
	}

	return fmt.Sprintf("schema violation on %q: %s", e.Field, e.Reason)
}

// SequenceError reports a non-contiguous round_id set for one
// (study_id, session_id) group.
type SequenceError struct {
	StudyID   string
	SessionID string
	Expected  []int
	Actual    []int
}

func (e SequenceError) Error() string {
	return fmt.Sprintf("study %s, session %s: round sequence invalid: expected %v, got %v",
		e.StudyID, e.SessionID, e.Expected, e.Actual)
}
