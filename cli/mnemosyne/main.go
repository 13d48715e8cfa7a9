package main

import (
	"os"

	mnemosynecmder "github.com/BillDuke13/mnemosyne/cmd/mnemosyne"
)

func main() {
	cmd := mnemosynecmder.NewMnemosyneCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
