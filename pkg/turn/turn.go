// Package turn defines the canonical record for one question/answer
// exchange in a synthetic focus-group session.
//
// A Turn is constructed once by the session runner, validated at
// construction, and treated as immutable afterwards. The struct field
// order is the canonical wire order: JSONL lines marshal in this order
// and the CSV export uses the same columns.
package turn

import (
	"strconv"
	"strings"
	"time"
)

// Turn is a single validated question/answer exchange.
type Turn struct {
	StudyID          string   `json:"study_id" jsonschema:"required"`
	SessionID        string   `json:"session_id" jsonschema:"required"`
	PersonaID        string   `json:"persona_id" jsonschema:"required"`
	RoundID          int      `json:"round_id" jsonschema:"required,minimum=1"`
	Question         string   `json:"question" jsonschema:"required"`
	Answer           string   `json:"answer" jsonschema:"required"`
	FollowUpQuestion *string  `json:"follow_up_question"`
	FollowUpAnswer   *string  `json:"follow_up_answer"`
	Confidence       float64  `json:"confidence" jsonschema:"required,minimum=0,maximum=1"`
	Tags             []string `json:"tags" jsonschema:"required"`
	Timestamp        string   `json:"timestamp" jsonschema:"required"`
}

// Fields is the canonical field order shared by the JSONL record log,
// the CSV export header, and schema diffing.
var Fields = []string{
	"study_id",
	"session_id",
	"persona_id",
	"round_id",
	"question",
	"answer",
	"follow_up_question",
	"follow_up_answer",
	"confidence",
	"tags",
	"timestamp",
}

// requiredFields are the fields that must be present on the wire.
// follow_up_question and follow_up_answer are the only optional ones.
var requiredFields = map[string]bool{
	"study_id":   true,
	"session_id": true,
	"persona_id": true,
	"round_id":   true,
	"question":   true,
	"answer":     true,
	"confidence": true,
	"tags":       true,
	"timestamp":  true,
}

// knownFields is the closed set of accepted wire keys. Anything else is
// a schema violation, not a silent pass.
var knownFields = func() map[string]bool {
	m := make(map[string]bool, len(Fields))
	for _, f := range Fields {
		m[f] = true
	}
	return m
}()

// New builds a Turn from the given fields and validates it immediately.
// A nil Tags slice is normalized to an empty one so the record always
// serializes tags as an array.
func New(fields Turn) (*Turn, error) {
	t := fields
	if t.Tags == nil {
		t.Tags = []string{}
	}

	if err := t.ValidateSchema(); err != nil {
		return nil, err
	}

	return &t, nil
}

// NewWithTimestamp builds a Turn stamped with the current UTC time
// (RFC 3339, trailing Z). Otherwise identical to New.
func NewWithTimestamp(fields Turn) (*Turn, error) {
	fields.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return New(fields)
}

// ValidateSchema re-checks every field-level invariant: required
// presence, value bounds, and timestamp format. Safe to call on
// records deserialized from storage.
func (t *Turn) ValidateSchema() error {
	for field, value := range map[string]string{
		"study_id":   t.StudyID,
		"session_id": t.SessionID,
		"persona_id": t.PersonaID,
	} {
		if value == "" {
			return SchemaError{Field: field, Reason: "required field is empty"}
		}
	}

	if t.Tags == nil {
		return SchemaError{Field: "tags", Reason: "required field is missing"}
	}

	if t.RoundID < 1 {
		return OutOfRangeError{Field: "round_id", Value: float64(t.RoundID), Min: 1}
	}

	if t.Confidence < 0.0 || t.Confidence > 1.0 {
		return OutOfRangeError{Field: "confidence", Value: t.Confidence, Min: 0.0, Max: 1.0}
	}

	if _, err := ParseTimestamp(t.Timestamp); err != nil {
		return FormatError{Field: "timestamp", Value: t.Timestamp}
	}

	return nil
}

// ParseTimestamp parses an ISO-8601 date-time string. Both zoned
// (RFC 3339) and naive timestamps are accepted, matching what session
// runners have historically written.
func ParseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return ts, nil
	}

	return time.Parse("2006-01-02T15:04:05.999999999", value)
}

// CSVRecord flattens the turn into one CSV row in canonical column
// order. The tag sequence is joined with ";" and absent follow-ups
// render as empty cells.
func (t *Turn) CSVRecord() []string {
	return []string{
		t.StudyID,
		t.SessionID,
		t.PersonaID,
		strconv.Itoa(t.RoundID),
		t.Question,
		t.Answer,
		derefOrEmpty(t.FollowUpQuestion),
		derefOrEmpty(t.FollowUpAnswer),
		strconv.FormatFloat(t.Confidence, 'g', -1, 64),
		strings.Join(t.Tags, ";"),
		t.Timestamp,
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr is a convenience for populating the optional follow-up
// fields at construction sites.
func StringPtr(s string) *string {
	return &s
}
