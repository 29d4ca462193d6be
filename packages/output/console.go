package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/LawnGnome/graphql-field-timer/packages/timer"
	"github.com/fatih/color"
	"github.com/tidwall/gjson"
)

// oneLine collapses a formatted query onto a single line for display.
func oneLine(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("fieldtimer"), version)
}

// FormatReport renders one line per ranked result, a diagnostic dump
// for each failure, and a closing summary. Results arrive ranked, so
// the slowest and failing fields appear at the end.
func (f *ConsoleFormatter) FormatReport(report *Report) {
	okBadge := color.New(color.FgBlack, color.BgGreen, color.Bold).SprintFunc()(" OK  ")
	errBadge := color.New(color.FgWhite, color.BgRed, color.Bold).SprintFunc()(" ERR ")
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(f.writer, "\n")
	for _, result := range report.Results {
		badge := okBadge
		if result.Status == timer.Failure {
			badge = errBadge
		}
		fmt.Fprintf(f.writer, "%s %s %s\n",
			badge,
			dim(fmt.Sprintf(" %.3fs ", result.Duration.Seconds())),
			oneLine(result.Query))

		if result.Status == timer.Failure || (f.verbose && result.Status == timer.Success) {
			fmt.Fprintf(f.writer, "%s\n", prettyBody(result.Response))
		}
	}

	failed := report.FailedCount()
	passed := len(report.Results) - failed

	fmt.Fprintf(f.writer, "\nQueries: ")
	if passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d ok", passed)))
	}
	if failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", failed)))
	}
	fmt.Fprintf(f.writer, "%d total\n", len(report.Results))

	if summary := report.Summary; summary.Count > 0 {
		fmt.Fprintf(f.writer, "Latency: min %s | mean %s | p50 %s | p95 %s | p99 %s | max %s\n",
			summary.Min.Round(time.Millisecond), summary.Mean.Round(time.Millisecond),
			summary.P50.Round(time.Millisecond), summary.P95.Round(time.Millisecond),
			summary.P99.Round(time.Millisecond), summary.Max.Round(time.Millisecond))
	}
	fmt.Fprintf(f.writer, "Time:  %dms\n", report.Elapsed.Milliseconds())
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

// prettyBody re-indents a JSON response for the failure dump. Bodies
// that reach a report are valid JSON by the protocol contract, but fall
// back to the raw bytes just in case.
func prettyBody(body []byte) string {
	if pretty := gjson.GetBytes(body, "@pretty"); pretty.Exists() {
		return strings.TrimRight(pretty.Raw, "\n")
	}
	return string(body)
}
