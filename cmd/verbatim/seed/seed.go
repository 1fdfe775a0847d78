package seedcmder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/grouptheoryco/verbatim/cmd/verbatim/storepath"
	"github.com/grouptheoryco/verbatim/pkg/cliui"
	"github.com/grouptheoryco/verbatim/pkg/config"
	"github.com/grouptheoryco/verbatim/pkg/dotdir"
	"github.com/grouptheoryco/verbatim/pkg/registry"
	"github.com/grouptheoryco/verbatim/pkg/session"
)

const seedLongDesc string = `Seed a canned demo session into the session store.

Saves a small multi-persona, multi-round session, catalogs the save in
the SQLite registry, and sets the active study/session context so
follow-up commands can omit the flags.

Examples:
  verbatim seed
  verbatim seed --sessions-path ./sessions
  verbatim seed --registry-path ./verbatim.db`

const seedShortDesc string = "Seed a demo session"

type seedCommander struct {
	sessionsPath string
	registryPath string
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), configDir)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSessionsPath, &cmder.sessionsPath)
	config.AddStringFlag(cmd, config.Flags, config.FlagRegistryPath, &cmder.registryPath)

	return cmd
}

func (c *seedCommander) run(ctx context.Context, configDir string) error {
	sessionsPath, err := storepath.ResolveSessionsPath(c.sessionsPath, configDir)
	if err != nil {
		return err
	}

	registryPath, err := storepath.ResolveRegistryPath(c.registryPath, configDir)
	if err != nil {
		return err
	}

	turns, err := session.SampleTurns()
	if err != nil {
		return fmt.Errorf("building demo turns: %w", err)
	}

	store := session.NewStore(sessionsPath)

	var result *session.SaveResult
	if err := cliui.Step(os.Stdout, "Saving demo session", func() error {
		var saveErr error
		result, saveErr = store.Save(turns, session.SampleStudyID, session.SampleSessionID)
		return saveErr
	}); err != nil {
		return err
	}

	catalog, err := registry.Open(registryPath)
	if err != nil {
		return fmt.Errorf("opening save catalog: %w", err)
	}
	defer catalog.Close()

	if _, err := catalog.Record(ctx, registry.Entry{
		StudyID:   session.SampleStudyID,
		SessionID: session.SampleSessionID,
		LogFile:   filepath.Base(result.LogPath),
		TableFile: filepath.Base(result.TablePath),
		TurnCount: len(turns),
	}); err != nil {
		return fmt.Errorf("cataloging save: %w", err)
	}

	if err := dotdir.NewManager().SaveContext(&dotdir.ContextState{
		StudyID:   session.SampleStudyID,
		SessionID: session.SampleSessionID,
	}, configDir); err != nil {
		return fmt.Errorf("saving context: %w", err)
	}

	fmt.Printf("\n  %s Saved %s turns %s into %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(strconv.Itoa(len(turns))),
		cliui.DimStyle.Render(fmt.Sprintf("(%s/%s)", session.SampleStudyID, session.SampleSessionID)),
		cliui.DimStyle.Render(result.Folder),
	)
	return nil
}
