// Package healthcmder provides the health command, which reports the state of
// a running mnemosyne API server and its upstreams.
package healthcmder

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/BillDuke13/mnemosyne/api"
	"github.com/BillDuke13/mnemosyne/pkg/apiclient"
	"github.com/BillDuke13/mnemosyne/pkg/cliui"
	"github.com/BillDuke13/mnemosyne/pkg/config"
)

type healthCommander struct {
	apiTarget string
	timeout   time.Duration
}

const healthLongDesc string = `Check a running mnemosyne API server.

Calls GET /health, which lists the memory table on every call, and prints
the configured chain objects, Walrus aggregator and the live entry count.

Examples:
  mnemosyne health
  mnemosyne health --api-target http://localhost:9000`

const healthShortDesc string = "Check a running mnemosyne API server"

func NewHealthCmd() *cobra.Command {
	cmder := &healthCommander{}

	cmd := &cobra.Command{
		Use:   "health",
		Short: healthShortDesc,
		Long:  healthLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagAPITarget})
			cmder.apiTarget = v.GetString("client.api_target")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", 30*time.Second, "Request timeout")

	return cmd
}

func (c *healthCommander) run(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := apiclient.New(c.apiTarget, c.timeout)
	if err != nil {
		return err
	}

	fmt.Fprintln(w)

	var health *api.HealthResponse
	err = cliui.Step(w, "Checking "+c.apiTarget, func() error {
		var err error
		health, err = client.Health(ctx)
		return err
	})
	if err != nil {
		return err
	}

	const width = 18
	fmt.Fprintln(w)
	fmt.Fprintln(w, cliui.KeyValue("Entries", width, strconv.Itoa(health.EntryCount)))
	fmt.Fprintln(w, cliui.KeyValue("Table", width, health.TableID))
	fmt.Fprintln(w, cliui.KeyValue("Memory book", width, health.MemoryBookID))
	fmt.Fprintln(w, cliui.KeyValue("Package", width, health.PackageID))
	fmt.Fprintln(w, cliui.KeyValue("Sui RPC", width, health.SuiRPC))
	fmt.Fprintln(w, cliui.KeyValue("Walrus aggregator", width, health.WalrusAggregator))
	fmt.Fprintln(w)

	return nil
}
