package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	contextFile = "context.json"
)

// ContextState records which study and session the user is currently
// working in, so commands can omit the flags on repeat invocations.
type ContextState struct {
	// StudyID is the active study.
	StudyID string `json:"study_id"`

	// SessionID is the active session within the study.
	SessionID string `json:"session_id"`
}

// LoadContextState loads the active context from a target
// .verbatim/context.json. Returns nil, nil if no context exists.
// If overrideDir is non-empty, it is used instead of the default
// ~/.verbatim/ location.
func (m *Manager) LoadContextState(overrideDir string) (*ContextState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, contextFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading context state: %w", err)
	}

	state := &ContextState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing context state: %w", err)
	}

	return state, nil
}

// SaveContext persists the active context to a target
// .verbatim/context.json.
func (m *Manager) SaveContext(state *ContextState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil context state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling context state: %w", err)
	}

	path := filepath.Join(dir, contextFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing context state: %w", err)
	}

	return nil
}

// ClearContext removes the context state file so the next command
// starts without an active study or session. Returns nil if the file
// doesn't exist (already cleared).
func (m *Manager) ClearContext(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, contextFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing context state: %w", err)
	}

	return nil
}
