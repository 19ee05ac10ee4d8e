// Package cli implements the gantry command-line interface using Cobra.
// Each subcommand is one way of looking at a generated board.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gantry-dev/gantry/internal/api"
)

var rootCmd = &cobra.Command{
	Use:   "gantry",
	Short: "gantry: synthetic Gantt task data for UI prototyping",
	Long: `gantry fabricates plausible Gantt chart task batches.
Print a batch, summarize it, browse it in the terminal, or serve it over HTTP
with a live regenerate endpoint.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version
	api.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
