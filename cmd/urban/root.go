package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "urban",
	Short: "Urban planning agent orchestrator",
	Long: `Urban runs specialized planning agents over a shared context:
simulations, debates, aggregation, reports, outreach calls, and map
visualizations, each streaming output as it is generated.

Agents execute one at a time or as a fail-fast chain, and every completed
result becomes context for the agents that follow. The serve command exposes
the same engine over websockets so dashboards can watch and drive runs.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
