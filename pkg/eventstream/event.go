// Package eventstream defines transport-neutral events emitted after
// session artifacts are persisted, and the publisher interface
// backends implement.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeSessionSaved is emitted after a session batch is saved.
	EventTypeSessionSaved = "verbatim.session.saved"
)

// SessionSavedEvent is the payload published after a successful save.
type SessionSavedEvent struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	EmittedAt     time.Time      `json:"emitted_at"`
	Session       SessionMeta    `json:"session"`
	Artifacts     ArtifactsMeta  `json:"artifacts"`
	Validation    ValidationMeta `json:"validation"`
}

// NewSessionSavedEvent stamps a fresh event ID and emission time
// around the given payload sections.
func NewSessionSavedEvent(session SessionMeta, artifacts ArtifactsMeta, validation ValidationMeta) *SessionSavedEvent {
	return &SessionSavedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeSessionSaved,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Session:       session,
		Artifacts:     artifacts,
		Validation:    validation,
	}
}

// SessionMeta identifies the saved session and its shape.
type SessionMeta struct {
	StudyID   string   `json:"study_id"`
	SessionID string   `json:"session_id"`
	TurnCount int      `json:"turn_count"`
	Personas  []string `json:"personas"`
	Rounds    []int    `json:"rounds"`
}

// ArtifactsMeta names the files the save produced.
type ArtifactsMeta struct {
	LogFile      string `json:"log_file"`
	TableFile    string `json:"table_file"`
	MetadataFile string `json:"metadata_file"`
}

// ValidationMeta records the validation state at save time.
type ValidationMeta struct {
	SchemaErrors int       `json:"schema_errors"`
	ValidatedAt  time.Time `json:"validated_at"`
}
