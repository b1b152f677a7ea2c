package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/matching"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the built-in skill catalog version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s (catalog %s)\n", app, version, matching.DefaultCatalogVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
