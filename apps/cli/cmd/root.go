package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "fieldtimer",
	Short: "Time every field of a GraphQL query, one request at a time.",
	Long: `fieldtimer splits a composite GraphQL query into one standalone query
per leaf field, sends each to an endpoint sequentially, and ranks the
results so the slowest and failing fields surface at the end of the
report.`,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitUsageError)
	}
}

func init() {
	rootCmd.AddCommand(timeCmd)
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
