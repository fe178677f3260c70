// Package cmd holds the tokoshop command line.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd assembles the tokoshop command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tokoshop",
		Short:        "tokoshop e-commerce backend",
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newWorkerCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
