// Package configcmder provides the config command for managing persistent
// mnemosyne configuration stored in the .mnemosyne/ directory.
package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BillDuke13/mnemosyne/pkg/config"
)

const configLongDesc string = `Manage persistent mnemosyne configuration.

Configuration is stored as config.toml in the .mnemosyne/ directory and
provides default values for command flags. CLI flags and MNEMOSYNE_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure. The "hints"
key takes a JSON object mapping labels to entry ids, e.g. {"Dad":0,"Mom":1}.

Use subcommands to get, set, or list configuration values:
  mnemosyne config set <key> <value>    Set a configuration value
  mnemosyne config get <key>            Get a configuration value
  mnemosyne config list                 List all configuration values

Examples:
  mnemosyne config set chain.table_id 0x54e0...
  mnemosyne config set speech.enabled true
  mnemosyne config get walrus.aggregator
  mnemosyne config list`

const configShortDesc string = "Manage persistent mnemosyne configuration"

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

// completeKeys offers config keys for the first positional argument.
func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}
