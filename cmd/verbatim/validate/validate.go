// Package validatecmder provides the validate command for
// re-validating stored session record logs.
package validatecmder

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/grouptheoryco/verbatim/cmd/verbatim/storepath"
	"github.com/grouptheoryco/verbatim/pkg/cliui"
	"github.com/grouptheoryco/verbatim/pkg/config"
	"github.com/grouptheoryco/verbatim/pkg/dotdir"
	"github.com/grouptheoryco/verbatim/pkg/session"
	"github.com/grouptheoryco/verbatim/pkg/utils"
)

// errorLineWidth caps per-record error lines so a mangled log with a
// huge raw line does not flood the report output.
const errorLineWidth = 96

const validateLongDesc string = `Re-validate the stored record logs of a session.

Each JSONL log saved for the session is decoded line by line against
the closed turn schema. Validation is read-only: running it twice over
unchanged files produces the same report.

Study and session default to the active context set by "verbatim use"
or "verbatim seed".

Examples:
  verbatim validate
  verbatim validate demo_study session_001
  verbatim validate --sessions-path ./sessions demo_study session_001`

const validateShortDesc string = "Re-validate stored session logs"

type validateCommander struct {
	sessionsPath string
}

func NewValidateCmd() *cobra.Command {
	cmder := &validateCommander{}

	cmd := &cobra.Command{
		Use:   "validate [study] [session]",
		Short: validateShortDesc,
		Long:  validateLongDesc,
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(args, configDir)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSessionsPath, &cmder.sessionsPath)

	return cmd
}

func (c *validateCommander) run(args []string, configDir string) error {
	studyID, sessionID, err := resolveTarget(args, configDir)
	if err != nil {
		return err
	}

	sessionsPath, err := storepath.ResolveSessionsPath(c.sessionsPath, configDir)
	if err != nil {
		return err
	}

	store := session.NewStore(sessionsPath)

	report, err := store.ValidateStored(studyID, sessionID)
	if err != nil {
		return fmt.Errorf("validating session: %w", err)
	}

	fmt.Printf("\n  %s  %s\n",
		cliui.KeyStyle.Render("Session:"),
		cliui.NameStyle.Render(studyID+"/"+sessionID),
	)
	fmt.Printf("  %s  %s\n\n",
		cliui.KeyStyle.Render("Status: "),
		cliui.StatusBadge(report.Status),
	)

	if len(report.Results) == 0 {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render("No record logs found."))
		return nil
	}

	for _, result := range report.Results {
		fmt.Printf("  %s %s %s\n",
			cliui.StatusBadge(result.Status),
			result.File,
			cliui.DimStyle.Render(fmt.Sprintf("(%d turns)", result.TurnsCount)),
		)
		for _, msg := range result.Errors {
			fmt.Printf("      %s\n", cliui.DimStyle.Render(utils.Truncate(msg, errorLineWidth)))
		}
	}

	fmt.Printf("\n  %s %s errors\n\n",
		cliui.Mark(reportErr(report)),
		cliui.NameStyle.Render(strconv.Itoa(report.TotalErrors)),
	)

	return reportErr(report)
}

func reportErr(report *session.Report) error {
	if report.Status == session.StatusValid {
		return nil
	}
	return fmt.Errorf("session %s/%s is %s (%d errors)",
		report.StudyID, report.SessionID, report.Status, report.TotalErrors)
}

// resolveTarget picks the study and session from args, falling back to
// the active context.
func resolveTarget(args []string, configDir string) (string, string, error) {
	if len(args) == 2 {
		return args[0], args[1], nil
	}
	if len(args) == 1 {
		return "", "", fmt.Errorf("provide both study and session, or neither")
	}

	state, err := dotdir.NewManager().LoadContextState(configDir)
	if err != nil {
		return "", "", fmt.Errorf("loading context: %w", err)
	}
	if state == nil {
		return "", "", fmt.Errorf("no active context; run \"verbatim use <study> <session>\" or pass them as arguments")
	}

	return state.StudyID, state.SessionID, nil
}
