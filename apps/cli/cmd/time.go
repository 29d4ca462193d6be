package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LawnGnome/graphql-field-timer/packages/flatten"
	"github.com/LawnGnome/graphql-field-timer/packages/history"
	"github.com/LawnGnome/graphql-field-timer/packages/output"
	"github.com/LawnGnome/graphql-field-timer/packages/timer"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var timeCmd = &cobra.Command{
	Use:   "time [file]",
	Short: "Flatten a query document and time each leaf field",
	Long: `Flatten a GraphQL query document into one standalone query per leaf
field, send each to the endpoint sequentially, and print a ranked report.
The document is read from the file argument, or from standard input when
no argument is given.

Examples:
  fieldtimer time query.graphql --url https://api.example.com/graphql
  cat query.graphql | fieldtimer time -u https://api.example.com/graphql
  fieldtimer time query.graphql -u https://api.example.com/graphql \
      -H "Authorization: Bearer $TOKEN" -V '{"id": "42"}'
  fieldtimer time query.graphql -u http://localhost:8080/query --watch
  fieldtimer time query.graphql -u http://localhost:8080/query \
      --history timings.db --rate 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: timeCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	urlFlag           string
	headerFlags       []string
	variablesFlag     string
	variablesFileFlag string
	timeoutFlag       string
	rateFlag          float64
	insecureFlag      bool
	noColorFlag       bool
	noProgressFlag    bool
	verboseFlag       bool
	outputFlag        string
	outputFileFlag    string
	historyFlag       string
	watchFlag         bool
)

func init() {
	timeCmd.Flags().StringVarP(&urlFlag, "url", "u", getEnvString("FIELDTIMER_URL", ""), "GraphQL endpoint URL (env: FIELDTIMER_URL)")
	timeCmd.Flags().StringArrayVarP(&headerFlags, "header", "H", nil, "Extra header in \"Name: Value\" form (repeatable)")
	timeCmd.Flags().StringVarP(&variablesFlag, "variables", "V", getEnvString("FIELDTIMER_VARIABLES", ""), "Shared variables as a JSON object (env: FIELDTIMER_VARIABLES)")
	timeCmd.Flags().StringVar(&variablesFileFlag, "variables-file", getEnvString("FIELDTIMER_VARIABLES_FILE", ""), "Read shared variables from a YAML or JSON file (env: FIELDTIMER_VARIABLES_FILE)")
	timeCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("FIELDTIMER_TIMEOUT", "30s"), "Per-request timeout (e.g., 30s, 1m) (env: FIELDTIMER_TIMEOUT)")
	timeCmd.Flags().Float64VarP(&rateFlag, "rate", "r", 0, "Pace requests to at most this many per second (0 = unpaced)")
	timeCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("FIELDTIMER_INSECURE", false), "Disable SSL certificate validation (env: FIELDTIMER_INSECURE)")
	timeCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("FIELDTIMER_NO_COLOR", false), "Disable colored output (env: FIELDTIMER_NO_COLOR)")
	timeCmd.Flags().BoolVar(&noProgressFlag, "no-progress", false, "Disable the progress line while queries are in flight")
	timeCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Also dump response bodies for successful queries")
	timeCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("FIELDTIMER_OUTPUT", "console"), "Output format: console, json (env: FIELDTIMER_OUTPUT)")
	timeCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("FIELDTIMER_OUTPUT_FILE", ""), "Write the report to a file instead of stdout (env: FIELDTIMER_OUTPUT_FILE)")
	timeCmd.Flags().StringVar(&historyFlag, "history", getEnvString("FIELDTIMER_HISTORY", ""), "Record the run to a SQLite database at this path (env: FIELDTIMER_HISTORY)")
	timeCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the document for changes and re-run")
}

func timeCommand(cmd *cobra.Command, args []string) error {
	if urlFlag == "" {
		return fmt.Errorf("--url is required")
	}

	var outWriter *os.File
	if outputFileFlag != "" {
		var err error
		outWriter, err = os.Create(outputFileFlag)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer outWriter.Close()
	}

	formatter := newTimeFormatter(outWriter)
	formatter.FormatHeader(version)

	timeout, err := time.ParseDuration(timeoutFlag)
	if err != nil {
		return fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
	}

	docPath := ""
	if len(args) == 1 {
		docPath = args[0]
	}

	runOnce := func() int {
		source, err := readDocument(docPath)
		if err != nil {
			formatter.FormatError(err)
			return ExitConfigError
		}

		doc, err := flatten.ParseDocument(source)
		if err != nil {
			formatter.FormatError(err)
			return ExitParseError
		}
		queries, err := flatten.Flatten(doc)
		if err != nil {
			formatter.FormatError(err)
			return ExitParseError
		}

		variables, err := loadVariables(variablesFlag, variablesFileFlag)
		if err != nil {
			formatter.FormatError(err)
			return ExitConfigError
		}

		tm, err := timer.New(urlFlag, headerFlags, variables,
			timer.WithTimeout(timeout),
			timer.WithInsecureSkipVerify(insecureFlag),
			timer.WithRate(rateFlag))
		if err != nil {
			formatter.FormatError(err)
			return ExitConfigError
		}

		var progress func(done, total int)
		if !noProgressFlag && strings.ToLower(outputFlag) == "console" {
			progress = func(done, total int) {
				fmt.Fprintf(os.Stderr, "\r\033[K%d/%d queries sent", done, total)
				if done == total {
					fmt.Fprint(os.Stderr, "\r\033[K")
				}
			}
		}

		start := time.Now()
		results, err := tm.Run(cmd.Context(), queries, progress)
		if err != nil {
			formatter.FormatError(err)
			return ExitNetworkError
		}

		formatter.FormatReport(&output.Report{
			Endpoint: urlFlag,
			Results:  results,
			Summary:  tm.Summary(),
			Elapsed:  time.Since(start),
		})

		if historyFlag != "" {
			if err := recordRun(cmd, start, results); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		}

		for _, result := range results {
			if result.Status == timer.Failure {
				return ExitQueryFailure
			}
		}
		return ExitSuccess
	}

	code := runOnce()

	if !watchFlag {
		if code != ExitSuccess {
			// os.Exit skips deferred calls, so flush the report file first.
			if outWriter != nil {
				outWriter.Close()
			}
			os.Exit(code)
		}
		return nil
	}

	if docPath == "" {
		return fmt.Errorf("--watch requires a file argument")
	}
	return watchAndRerun(cmd, docPath, runOnce)
}

func newTimeFormatter(outWriter *os.File) output.Formatter {
	switch strings.ToLower(outputFlag) {
	case "json":
		opts := []output.JSONOption{}
		if outWriter != nil {
			opts = append(opts, output.JSONWithWriter(outWriter))
		}
		return output.NewJSONFormatter(opts...)
	default: // "console"
		opts := []output.ConsoleOption{
			output.WithVerbose(verboseFlag),
			output.WithNoColor(noColorFlag),
		}
		if outWriter != nil {
			opts = append(opts, output.WithWriter(outWriter))
		}
		return output.NewConsoleFormatter(opts...)
	}
}

// readDocument loads the query document from a file, or from standard
// input when no path is given.
func readDocument(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("cannot read document from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read document: %w", err)
	}
	return string(data), nil
}

func recordRun(cmd *cobra.Command, start time.Time, results []timer.Result) error {
	store, err := history.Open(historyFlag)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.RecordRun(cmd.Context(), urlFlag, start, results); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// watchAndRerun re-runs the document whenever it is written to. The
// watch is on the containing directory because many editors replace the
// file on save rather than writing it in place.
func watchAndRerun(cmd *cobra.Command, docPath string, runOnce func() int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(docPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", docPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(docPath) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "\nDocument changed, re-running...\n")
				runOnce()
				fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "warning: watcher error: %v\n", err)
		}
	}
}
