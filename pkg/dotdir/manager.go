// Package dotdir manages the .verbatim/ and ~/.verbatim directories.
//
// The dot dir holds the workspace state: the config file, the persona
// roster, the session registry database, and the saved session
// artifacts. The context state records which study and session the
// user is currently working in, persisted as a JSON file.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the verbatim directory.
	dirName = ".verbatim"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .verbatim/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.verbatim/ dir
//  3. Home ~/.verbatim/ dir
//  4. If none found, attempt to create ~/.verbatim/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating verbatim directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// SessionsDir returns the artifact base path under the dot dir,
// creating it if needed.
func (m *Manager) SessionsDir(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}

	sessions := filepath.Join(dir, "sessions")
	if err := os.MkdirAll(sessions, 0o755); err != nil {
		return "", fmt.Errorf("creating sessions directory %s: %w", sessions, err)
	}

	return sessions, nil
}

// localDirExists checks whether a .verbatim/ directory exists in the
// current working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
