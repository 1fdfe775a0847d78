// Package registry keeps a SQLite catalog of completed session saves
// so the CLI and API can list past sessions without walking the
// artifact tree.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_saves (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	study_id    TEXT NOT NULL,
	session_id  TEXT NOT NULL,
	log_file    TEXT NOT NULL,
	table_file  TEXT NOT NULL,
	turn_count  INTEGER NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_saves_study
	ON session_saves (study_id, session_id);
`

// Entry is one cataloged save.
type Entry struct {
	ID        int64     `json:"id"`
	StudyID   string    `json:"study_id"`
	SessionID string    `json:"session_id"`
	LogFile   string    `json:"log_file"`
	TableFile string    `json:"table_file"`
	TurnCount int       `json:"turn_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Registry is the session-save catalog.
type Registry struct {
	db *sql.DB
}

// Open creates or opens the catalog database. dbPath can be a file
// path or ":memory:".
func Open(dbPath string) (*Registry, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create registry schema: %w", err)
	}

	return &Registry{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Record catalogs one completed save and returns its entry ID.
func (r *Registry) Record(ctx context.Context, entry Entry) (int64, error) {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO session_saves (study_id, session_id, log_file, table_file, turn_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.StudyID, entry.SessionID, entry.LogFile, entry.TableFile,
		entry.TurnCount, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record save: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read save ID: %w", err)
	}

	return id, nil
}

// ListStudy returns every cataloged save for a study, newest first.
func (r *Registry) ListStudy(ctx context.Context, studyID string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, study_id, session_id, log_file, table_file, turn_count, created_at
		 FROM session_saves WHERE study_id = ? ORDER BY id DESC`,
		studyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListSession returns every cataloged save for one session, newest
// first.
func (r *Registry) ListSession(ctx context.Context, studyID, sessionID string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, study_id, session_id, log_file, table_file, turn_count, created_at
		 FROM session_saves WHERE study_id = ? AND session_id = ? ORDER BY id DESC`,
		studyID, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Latest returns the most recent save for a session.
func (r *Registry) Latest(ctx context.Context, studyID, sessionID string) (Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, study_id, session_id, log_file, table_file, turn_count, created_at
		 FROM session_saves WHERE study_id = ? AND session_id = ? ORDER BY id DESC LIMIT 1`,
		studyID, sessionID,
	)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, ErrNotFound{StudyID: studyID, SessionID: sessionID}
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load latest save: %w", err)
	}

	return entry, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEntry(row scannable) (Entry, error) {
	var entry Entry
	var createdAt string

	if err := row.Scan(&entry.ID, &entry.StudyID, &entry.SessionID,
		&entry.LogFile, &entry.TableFile, &entry.TurnCount, &createdAt); err != nil {
		return Entry{}, err
	}

	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	entry.CreatedAt = parsed

	return entry, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan save: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate saves: %w", err)
	}

	return entries, nil
}
