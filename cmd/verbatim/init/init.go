// Package initcmder provides the init command for initializing a local
// .verbatim directory in the current working directory.
package initcmder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	dirName = ".verbatim"
)

const initLongDesc string = `Initialize a new .verbatim/ directory in the current working directory.

Creates a local .verbatim/ directory that takes precedence over the default
~/.verbatim/ directory for session storage, the save catalog, configuration,
and the active study/session context.

This is useful for maintaining separate verbatim state per research project.

Examples:
  verbatim init`

const initShortDesc string = "Initialize a local .verbatim/ directory"

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit()
		},
	}

	return cmd
}

func runInit() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Printf("Already initialized: %s\n", dir)
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .verbatim directory: %w", err)
	}

	fmt.Printf("Initialized .verbatim directory: %s\n", dir)
	return nil
}
