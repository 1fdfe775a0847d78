// Package storepath resolves where session artifacts and the save
// catalog live, honoring explicit flags and environment overrides
// before falling back to the .verbatim/ directory.
package storepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grouptheoryco/verbatim/pkg/dotdir"
)

// ResolveSessionsPath returns the directory session artifacts are
// written under. Precedence: explicit override, VERBATIM_SESSIONS env
// var, then sessions/ under the resolved .verbatim directory.
func ResolveSessionsPath(override, configDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("VERBATIM_SESSIONS")); envPath != "" {
		return envPath, nil
	}

	path, err := dotdir.NewManager().SessionsDir(configDir)
	if err != nil {
		return "", fmt.Errorf("resolving sessions directory: %w", err)
	}
	return path, nil
}

// ResolveRegistryPath returns the SQLite save catalog path.
// Precedence: explicit override, VERBATIM_DB env var, then registry.db
// under the resolved .verbatim directory.
func ResolveRegistryPath(override, configDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("VERBATIM_DB")); envPath != "" {
		return envPath, nil
	}

	target, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return "", fmt.Errorf("resolving registry path: %w", err)
	}
	return filepath.Join(target, "registry.db"), nil
}
