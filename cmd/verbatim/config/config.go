// Package configcmder provides the config command for managing persistent
// verbatim configuration stored in the .verbatim/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent verbatim configuration.

Configuration is stored as config.toml in the .verbatim/ directory and
provides default values for command flags. CLI flags always take
precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.sessions_path, storage.registry_path,
  api.listen,
  eventstream.provider, eventstream.brokers, eventstream.topic,
  insights.provider, insights.conn_string, insights.host,
  insights.port, insights.dimensions

Use subcommands to get, set, or list configuration values:
  verbatim config set <key> <value>    Set a configuration value
  verbatim config get <key>            Get a configuration value
  verbatim config list                 List all configuration values

Examples:
  verbatim config set api.listen :9090
  verbatim config set eventstream.provider kafka
  verbatim config get storage.sessions_path
  verbatim config list`

const configShortDesc string = "Manage persistent verbatim configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
