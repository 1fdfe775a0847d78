package persona

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Store exposes persona retrieval for the CLI and HTTP handlers.
type Store interface {
	List() ([]Persona, error)
	FindByID(id string) (Persona, bool, error)
	Put(p Persona) error
	Delete(id string) error
}

const storeFilename = "personas.json"

// FileStore keeps the full persona roster in one JSON file under the
// workspace dot dir. The roster is small by nature, so the whole file
// is rewritten on every mutation.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to dir/personas.json.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, storeFilename)}
}

// List returns every stored persona sorted by ID. A missing roster
// file means an empty roster.
func (s *FileStore) List() ([]Persona, error) {
	personas, err := s.read()
	if err != nil {
		return nil, err
	}

	sort.Slice(personas, func(i, j int) bool {
		return personas[i].ID < personas[j].ID
	})

	return personas, nil
}

// FindByID looks up a persona by identifier.
func (s *FileStore) FindByID(id string) (Persona, bool, error) {
	personas, err := s.read()
	if err != nil {
		return Persona{}, false, err
	}

	for _, p := range personas {
		if p.ID == id {
			return p, true, nil
		}
	}

	return Persona{}, false, nil
}

// Put inserts or replaces a persona and bumps its UpdatedAt.
func (s *FileStore) Put(p Persona) error {
	personas, err := s.read()
	if err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()

	replaced := false
	for i := range personas {
		if personas[i].ID == p.ID {
			personas[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		personas = append(personas, p)
	}

	return s.write(personas)
}

// Delete removes a persona. Deleting an unknown ID is a no-op.
func (s *FileStore) Delete(id string) error {
	personas, err := s.read()
	if err != nil {
		return err
	}

	kept := personas[:0]
	for _, p := range personas {
		if p.ID != id {
			kept = append(kept, p)
		}
	}

	return s.write(kept)
}

func (s *FileStore) read() ([]Persona, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []Persona{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading persona roster: %w", err)
	}

	var personas []Persona
	if err := json.Unmarshal(data, &personas); err != nil {
		return nil, fmt.Errorf("decoding persona roster: %w", err)
	}

	return personas, nil
}

func (s *FileStore) write(personas []Persona) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating persona store dir: %w", err)
	}

	data, err := json.MarshalIndent(personas, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding persona roster: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing persona roster: %w", err)
	}

	return nil
}
