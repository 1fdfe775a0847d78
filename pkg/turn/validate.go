package turn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Decode parses a single JSONL line into a Turn, enforcing the closed
// schema: unknown keys, missing required keys, and wrong-typed values
// are all SchemaErrors. The decoded record is then run through the
// full field-level validation.
func Decode(line []byte) (*Turn, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, SchemaError{Reason: "record is not a JSON object"}
	}

	for key := range raw {
		if !knownFields[key] {
			return nil, SchemaError{Field: key, Reason: "field is not in the declared schema"}
		}
	}

	for _, field := range Fields {
		if !requiredFields[field] {
			continue
		}
		value, ok := raw[field]
		if !ok || bytes.Equal(value, []byte("null")) {
			return nil, SchemaError{Field: field, Reason: "required field is missing"}
		}
	}

	var t Turn
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return nil, SchemaError{
				Field:  typeErr.Field,
				Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			}
		}
		return nil, SchemaError{Reason: err.Error()}
	}

	return New(t)
}

// sessionKey partitions turns for sequence validation.
type sessionKey struct {
	studyID   string
	sessionID string
}

// ValidateSequence checks that, for every (study_id, session_id) group
// in the batch, the set of distinct round_ids forms the contiguous
// sequence 1..N. Duplicate rounds from different personas are legal:
// the invariant is over distinct values, not per-turn. One error is
// produced per violating group; errors follow first-seen group order.
func ValidateSequence(turns []*Turn) []error {
	groups := map[sessionKey][]int{}
	order := []sessionKey{}

	for _, t := range turns {
		key := sessionKey{studyID: t.StudyID, sessionID: t.SessionID}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], t.RoundID)
	}

	var errs []error
	for _, key := range order {
		actual := distinctSorted(groups[key])

		expected := make([]int, len(actual))
		for i := range expected {
			expected[i] = i + 1
		}

		if !equalInts(actual, expected) {
			errs = append(errs, SequenceError{
				StudyID:   key.studyID,
				SessionID: key.sessionID,
				Expected:  expected,
				Actual:    actual,
			})
		}
	}

	return errs
}

// ValidateBatch runs per-record schema validation across the whole
// batch, then the cross-record sequence check. All failures are
// accumulated so callers see the complete list in one report; record
// failures are prefixed with the zero-based turn index.
func ValidateBatch(turns []*Turn) []error {
	var errs []error

	for i, t := range turns {
		if err := t.ValidateSchema(); err != nil {
			errs = append(errs, fmt.Errorf("turn %d: %w", i, err))
		}
	}

	errs = append(errs, ValidateSequence(turns)...)

	return errs
}

func distinctSorted(values []int) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
