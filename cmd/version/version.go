// Package versioncmder provides the version command.
package versioncmder

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/BillDuke13/mnemosyne/pkg/cliui"
	"github.com/BillDuke13/mnemosyne/pkg/utils"
)

func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version, commit and build time of this mnemosyne binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout())
		},
	}

	return cmd
}

func run(w io.Writer) error {
	const width = 8
	fmt.Fprintln(w, cliui.KeyValue("Version", width, utils.Version))
	fmt.Fprintln(w, cliui.KeyValue("Sha", width, utils.Sha))
	fmt.Fprintln(w, cliui.KeyValue("Built at", width, utils.Buildtime))
	fmt.Fprintln(w, cliui.KeyValue("Go", width, runtime.Version()))
	return nil
}
