// Package mnemosynecmder is the root mnemosyne command.
package mnemosynecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	configcmder "github.com/BillDuke13/mnemosyne/cmd/mnemosyne/config"
	healthcmder "github.com/BillDuke13/mnemosyne/cmd/mnemosyne/health"
	identifycmder "github.com/BillDuke13/mnemosyne/cmd/mnemosyne/identify"
	servecmder "github.com/BillDuke13/mnemosyne/cmd/mnemosyne/serve"
	versioncmder "github.com/BillDuke13/mnemosyne/cmd/version"
	"github.com/BillDuke13/mnemosyne/pkg/config"
)

const mnemosyneLongDesc string = `Mnemosyne helps you remember the people in front of you.

Memories live in an on-chain memory book on Sui; each entry commits to a
summary stored on Walrus by its SHA3-256 hash. Mnemosyne resolves who you are
looking at, fetches their latest summary, verifies it against the chain and
can read it aloud.

Run the service and talk to it:
  mnemosyne serve              Run the API server
  mnemosyne identify [hint]    Identify a person via the API
  mnemosyne health             Check the API and its upstreams
  mnemosyne config             Manage persistent configuration`

const mnemosyneShortDesc string = "Mnemosyne - verified memories from the chain"

func NewMnemosyneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mnemosyne",
		Short:         mnemosyneShortDesc,
		Long:          mnemosyneLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return fmt.Errorf("loading .env: %w", err)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default: ./.mnemosyne or ~/.mnemosyne)")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(identifycmder.NewIdentifyCmd())
	cmd.AddCommand(healthcmder.NewHealthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
