// Package statuscmder provides the status command for displaying the
// active study/session context and its latest cataloged save.
package statuscmder

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/grouptheoryco/verbatim/cmd/verbatim/storepath"
	"github.com/grouptheoryco/verbatim/pkg/cliui"
	"github.com/grouptheoryco/verbatim/pkg/config"
	"github.com/grouptheoryco/verbatim/pkg/dotdir"
	"github.com/grouptheoryco/verbatim/pkg/registry"
)

const statusLongDesc string = `Show the active verbatim context.

Reads the local .verbatim/ directory (or ~/.verbatim/) to display the
active study and session, and the latest save cataloged for it.

If no context exists, indicates that commands need explicit
study/session arguments.

Examples:
  verbatim status`

const statusShortDesc string = "Show the active study/session context"

type statusCommander struct {
	registryPath string
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), configDir)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagRegistryPath, &cmder.registryPath)

	return cmd
}

func (c *statusCommander) run(ctx context.Context, configDir string) error {
	state, err := dotdir.NewManager().LoadContextState(configDir)
	if err != nil {
		return fmt.Errorf("loading context: %w", err)
	}

	if state == nil {
		fmt.Printf("  %s No active context. Run \"verbatim use <study> <session>\".\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Study:  "), cliui.NameStyle.Render(state.StudyID))
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Session:"), cliui.NameStyle.Render(state.SessionID))

	registryPath, err := storepath.ResolveRegistryPath(c.registryPath, configDir)
	if err != nil {
		return err
	}

	catalog, err := registry.Open(registryPath)
	if err != nil {
		return fmt.Errorf("opening save catalog: %w", err)
	}
	defer catalog.Close()

	entry, err := catalog.Latest(ctx, state.StudyID, state.SessionID)
	if err != nil {
		var notFound registry.ErrNotFound
		if errors.As(err, &notFound) {
			fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render("Saves:  "), cliui.DimStyle.Render("none cataloged"))
			return nil
		}
		return fmt.Errorf("reading save catalog: %w", err)
	}

	fmt.Printf("  %s  %s %s\n\n",
		cliui.KeyStyle.Render("Latest: "),
		entry.LogFile,
		cliui.DimStyle.Render(fmt.Sprintf("(%s turns, %s)", strconv.Itoa(entry.TurnCount), entry.CreatedAt.Format("2006-01-02 15:04:05"))),
	)
	return nil
}
