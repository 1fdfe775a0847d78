// Package session persists validated turn batches to the filesystem.
//
// Each save produces three artifacts under base/<study>/<session>/: a
// line-oriented JSONL record log, a CSV export with the same canonical
// column order, and a stable metadata descriptor. Loading re-validates
// every line so a stored session can always be proven to still satisfy
// the schema and sequencing invariants.
package session

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grouptheoryco/verbatim/pkg/turn"
)

const (
	logExt      = ".jsonl"
	tableExt    = ".csv"
	metadataTag = "metadata"

	// filenameStamp is second-granularity; collisions within the same
	// second are resolved by the atomic rename (last writer wins).
	filenameStamp = "20060102_150405"
)

// Store persists turn batches under a base directory.
type Store struct {
	basePath string
}

// NewStore creates a store rooted at basePath. The directory is
// created lazily on first save.
func NewStore(basePath string) *Store {
	return &Store{basePath: basePath}
}

// BasePath returns the root directory the store writes under.
func (s *Store) BasePath() string {
	return s.basePath
}

// SaveResult describes the artifacts produced by one save.
type SaveResult struct {
	LogPath      string `json:"log_path"`
	TablePath    string `json:"table_path"`
	MetadataPath string `json:"metadata_path"`
	Folder       string `json:"session_folder"`
}

// MetadataFiles names the two timestamped artifacts of a save.
type MetadataFiles struct {
	Log   string `json:"log"`
	Table string `json:"table"`
}

// MetadataValidation records the validation state at save time.
type MetadataValidation struct {
	SchemaErrors int    `json:"schema_errors"`
	ValidatedAt  string `json:"validated_at"`
}

// Metadata is the session descriptor written alongside the artifacts.
// Unlike the timestamped log and table, its filename is stable and it
// is overwritten on repeated saves.
type Metadata struct {
	StudyID    string             `json:"study_id"`
	SessionID  string             `json:"session_id"`
	TotalTurns int                `json:"total_turns"`
	Personas   []string           `json:"personas"`
	Rounds     []int              `json:"rounds"`
	CreatedAt  string             `json:"created_at"`
	Files      MetadataFiles      `json:"files"`
	Validation MetadataValidation `json:"validation"`
}

// Save validates the whole batch, then writes the record log, the CSV
// export, and the metadata descriptor. Any validation error aborts the
// save before a single byte reaches its final path: artifacts are
// written to a temp file and renamed into place, so a failed save
// leaves no partial output.
func (s *Store) Save(turns []*turn.Turn, studyID, sessionID string) (*SaveResult, error) {
	if errs := turn.ValidateBatch(turns); len(errs) > 0 {
		return nil, ValidationError{Problems: errs}
	}

	folder := filepath.Join(s.basePath, studyID, sessionID)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("creating session folder %s: %w", folder, err)
	}

	stamp := time.Now().Format(filenameStamp)
	logName := sessionID + "_" + stamp + logExt
	tableName := sessionID + "_" + stamp + tableExt

	logPath, err := writeAtomic(folder, logName, func(w io.Writer) error {
		return writeLog(w, turns)
	})
	if err != nil {
		return nil, err
	}

	tablePath, err := writeAtomic(folder, tableName, func(w io.Writer) error {
		return writeTable(w, turns)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	metadata := Metadata{
		StudyID:    studyID,
		SessionID:  sessionID,
		TotalTurns: len(turns),
		Personas:   distinctPersonas(turns),
		Rounds:     distinctRounds(turns),
		CreatedAt:  now,
		Files:      MetadataFiles{Log: logName, Table: tableName},
		Validation: MetadataValidation{SchemaErrors: 0, ValidatedAt: now},
	}

	metadataPath, err := writeAtomic(folder, sessionID+"_"+metadataTag+".json", func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(metadata)
	})
	if err != nil {
		return nil, err
	}

	return &SaveResult{
		LogPath:      logPath,
		TablePath:    tablePath,
		MetadataPath: metadataPath,
		Folder:       folder,
	}, nil
}

// writeLog serializes one canonical-form record per line. Each record
// is re-validated immediately before writing as a defense against
// partially-constructed turns slipping past the batch check.
func writeLog(w io.Writer, turns []*turn.Turn) error {
	for i, t := range turns {
		if err := t.ValidateSchema(); err != nil {
			return ValidationError{Problems: []error{fmt.Errorf("turn %d: %w", i, err)}}
		}

		line, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encoding turn %d: %w", i, err)
		}

		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("writing turn %d: %w", i, err)
		}
	}

	return nil
}

// writeTable writes the CSV export: canonical header, one row per
// turn, tags flattened to a ";"-joined cell.
func writeTable(w io.Writer, turns []*turn.Turn) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(turn.Fields); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for i, t := range turns {
		if err := cw.Write(t.CSVRecord()); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Load reads a record log line by line. Every line must independently
// pass schema validation; the first failure aborts the whole load with
// its 1-based line number. No partial list is ever returned.
func (s *Store) Load(logPath string) ([]*turn.Turn, error) {
	f, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("opening record log: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading record log: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	turns := make([]*turn.Turn, 0, len(lines))
	for i, line := range lines {
		t, err := turn.Decode([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		turns = append(turns, t)
	}

	return turns, nil
}

// Artifacts lists the stored files for one session, grouped by kind.
// A missing session folder yields empty lists, not an error.
type Artifacts struct {
	Logs     []string `json:"jsonl"`
	Tables   []string `json:"csv"`
	Metadata []string `json:"metadata"`
}

// Artifacts enumerates the session folder by suffix and name pattern.
func (s *Store) Artifacts(studyID, sessionID string) (*Artifacts, error) {
	folder := filepath.Join(s.basePath, studyID, sessionID)

	entries, err := os.ReadDir(folder)
	if os.IsNotExist(err) {
		return &Artifacts{Logs: []string{}, Tables: []string{}, Metadata: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing session folder: %w", err)
	}

	artifacts := &Artifacts{Logs: []string{}, Tables: []string{}, Metadata: []string{}}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(folder, entry.Name())
		switch {
		case strings.HasSuffix(entry.Name(), logExt):
			artifacts.Logs = append(artifacts.Logs, path)
		case strings.HasSuffix(entry.Name(), tableExt):
			artifacts.Tables = append(artifacts.Tables, path)
		case strings.Contains(entry.Name(), metadataTag):
			artifacts.Metadata = append(artifacts.Metadata, path)
		}
	}

	return artifacts, nil
}

func distinctPersonas(turns []*turn.Turn) []string {
	seen := map[string]bool{}
	personas := []string{}
	for _, t := range turns {
		if !seen[t.PersonaID] {
			seen[t.PersonaID] = true
			personas = append(personas, t.PersonaID)
		}
	}
	sort.Strings(personas)
	return personas
}

func distinctRounds(turns []*turn.Turn) []int {
	seen := map[int]bool{}
	rounds := []int{}
	for _, t := range turns {
		if !seen[t.RoundID] {
			seen[t.RoundID] = true
			rounds = append(rounds, t.RoundID)
		}
	}
	sort.Ints(rounds)
	return rounds
}

// writeAtomic writes an artifact to a uuid-suffixed temp path in the
// destination folder, then renames it into place. The handle is
// released on every exit path and a failed write never leaves a
// truncated final file behind.
func writeAtomic(dir, name string, write func(io.Writer) error) (string, error) {
	tmpPath := filepath.Join(dir, "."+name+".tmp-"+uuid.NewString()[:8])

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing %s: %w", name, err)
	}

	finalPath := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming %s into place: %w", name, err)
	}

	return finalPath, nil
}
