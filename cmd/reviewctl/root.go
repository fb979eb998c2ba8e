package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reviewctl",
		Short: "Run and inspect the review sheet pipeline",
		Long: `reviewctl drives the administrative program review sheet pipeline.

Available subcommands:
  run    - Run the pipeline stages over the data directory
  header - Decode one column header against a domain grammar`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(), newHeaderCmd())
	return root
}
