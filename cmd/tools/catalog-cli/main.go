/*
catalog-cli inspects the embedded variant catalog and runs the selection
engine offline.

Usage:

	catalog-cli [command]

Examples:

	catalog-cli list
	catalog-cli list hero --json
	catalog-cli recommend --section hero --traits bold,creative
	catalog-cli recommend --sections hero,services,contact --traits elegant
	catalog-cli export --output configs/variant-catalog.json
	catalog-cli validate --path configs/variant-catalog.json
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "catalog-cli",
		Short:         "Inspect the section variant catalog and preview selections",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newRecommendCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newValidateCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
