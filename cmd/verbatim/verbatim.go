// Package verbatimcmder
package verbatimcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/grouptheoryco/verbatim/cmd/verbatim/config"
	initcmder "github.com/grouptheoryco/verbatim/cmd/verbatim/init"
	seedcmder "github.com/grouptheoryco/verbatim/cmd/verbatim/seed"
	servecmder "github.com/grouptheoryco/verbatim/cmd/verbatim/serve"
	statuscmder "github.com/grouptheoryco/verbatim/cmd/verbatim/status"
	usecmder "github.com/grouptheoryco/verbatim/cmd/verbatim/use"
	validatecmder "github.com/grouptheoryco/verbatim/cmd/verbatim/validate"
	versioncmder "github.com/grouptheoryco/verbatim/cmd/version"
)

const verbatimLongDesc string = `Verbatim records and validates synthetic focus group sessions.

Common workflows:
  verbatim seed              Save a canned demo session
  verbatim validate          Re-validate stored session logs
  verbatim serve             Run the API server
  verbatim use <study> <session>   Set the active study/session context`

const verbatimShortDesc string = "Verbatim - Synthetic Focus Group Recorder"

func NewVerbatimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verbatim",
		Short: verbatimShortDesc,
		Long:  verbatimLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .verbatim/ config directory")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(validatecmder.NewValidateCmd())
	cmd.AddCommand(usecmder.NewUseCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
