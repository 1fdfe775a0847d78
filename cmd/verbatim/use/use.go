// Package usecmder provides the use command for setting the active
// study/session context.
package usecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grouptheoryco/verbatim/pkg/cliui"
	"github.com/grouptheoryco/verbatim/pkg/dotdir"
)

const useLongDesc string = `Set the active study and session context.

The context is stored in the .verbatim/ directory and used as the
default target by commands like "verbatim validate" and
"verbatim status".

Examples:
  verbatim use demo_study session_001
  verbatim use --clear`

const useShortDesc string = "Set the active study/session context"

type useCommander struct {
	clear bool
}

func NewUseCmd() *cobra.Command {
	cmder := &useCommander{}

	cmd := &cobra.Command{
		Use:   "use <study> <session>",
		Short: useShortDesc,
		Long:  useLongDesc,
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(args, configDir)
		},
	}

	cmd.Flags().BoolVar(&cmder.clear, "clear", false, "Clear the active context")

	return cmd
}

func (c *useCommander) run(args []string, configDir string) error {
	manager := dotdir.NewManager()

	if c.clear {
		if len(args) != 0 {
			return fmt.Errorf("--clear takes no arguments")
		}
		if err := manager.ClearContext(configDir); err != nil {
			return fmt.Errorf("clearing context: %w", err)
		}
		fmt.Printf("  %s Cleared active context\n", cliui.SuccessMark)
		return nil
	}

	if len(args) != 2 {
		return fmt.Errorf("expected <study> <session> arguments")
	}

	state := &dotdir.ContextState{
		StudyID:   args[0],
		SessionID: args[1],
	}
	if err := manager.SaveContext(state, configDir); err != nil {
		return fmt.Errorf("saving context: %w", err)
	}

	fmt.Printf("  %s Using %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(state.StudyID+"/"+state.SessionID),
	)
	return nil
}
