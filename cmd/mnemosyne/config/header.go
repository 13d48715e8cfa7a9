package configcmder

import (
	"fmt"
	"io"

	"github.com/BillDuke13/mnemosyne/pkg/cliui"
	"github.com/BillDuke13/mnemosyne/pkg/config"
)

// printTarget reports which config file a command operates on.
func printTarget(w io.Writer, cfger *config.Configer) {
	target := cfger.GetTarget()
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
