package cmd

import (
	"fmt"
	"time"

	"github.com/LawnGnome/graphql-field-timer/packages/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <file.db>",
	Short: "List runs recorded with --history",
	Long: `List runs previously recorded with "fieldtimer time --history".

Examples:
  fieldtimer history timings.db
  fieldtimer history timings.db --limit 5
  fieldtimer history timings.db --run <run-id>`,
	Args: cobra.ExactArgs(1),
	RunE: historyCommand,
}

var (
	historyLimitFlag int
	historyRunFlag   string
)

func init() {
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", getEnvInt("FIELDTIMER_HISTORY_LIMIT", 20), "Maximum number of runs to list (env: FIELDTIMER_HISTORY_LIMIT)")
	historyCmd.Flags().StringVar(&historyRunFlag, "run", "", "Show the recorded results of a single run")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	store, err := history.Open(args[0])
	if err != nil {
		return err
	}
	defer store.Close()

	if historyRunFlag != "" {
		results, err := store.RunResults(cmd.Context(), historyRunFlag)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return fmt.Errorf("no results recorded for run %q", historyRunFlag)
		}
		for _, result := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%-4s %8.3fs  %s\n",
				result.Status, result.Duration.Seconds(), result.Query)
		}
		return nil
	}

	runs, err := store.RecentRuns(cmd.Context(), historyLimitFlag)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %d queries, %d failed\n",
			run.ID, run.StartedAt.Local().Format(time.DateTime), run.Endpoint, run.Total, run.Failed)
	}
	return nil
}
