package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "importer",
		Short:         "Load the accommodation and review feeds into MySQL",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runImport,
	}
	bindFlags(root)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
