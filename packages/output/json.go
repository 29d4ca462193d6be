package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/LawnGnome/graphql-field-timer/packages/timer"
)

// JSONOutput represents the complete JSON report structure
type JSONOutput struct {
	Endpoint string       `json:"endpoint"`
	Summary  JSONSummary  `json:"summary"`
	Results  []JSONResult `json:"results"`
	Duration float64      `json:"duration"`
	Time     string       `json:"time"`
}

// JSONSummary represents counts and latency statistics for the run
type JSONSummary struct {
	Total  int     `json:"total"`
	Passed int     `json:"passed"`
	Failed int     `json:"failed"`
	MinMs  float64 `json:"minMs"`
	MeanMs float64 `json:"meanMs"`
	MaxMs  float64 `json:"maxMs"`
	P50Ms  float64 `json:"p50Ms"`
	P95Ms  float64 `json:"p95Ms"`
	P99Ms  float64 `json:"p99Ms"`
}

// JSONResult represents a single ranked query result
type JSONResult struct {
	Query      string          `json:"query"`
	Status     string          `json:"status"`
	DurationMs float64         `json:"durationMs"`
	Response   json.RawMessage `json:"response,omitempty"`
}

type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatHeader(version string) {
	// The report is a single JSON document; there is no header line.
}

func (f *JSONFormatter) FormatReport(report *Report) {
	failed := report.FailedCount()

	out := JSONOutput{
		Endpoint: report.Endpoint,
		Summary: JSONSummary{
			Total:  len(report.Results),
			Passed: len(report.Results) - failed,
			Failed: failed,
			MinMs:  ms(report.Summary.Min),
			MeanMs: ms(report.Summary.Mean),
			MaxMs:  ms(report.Summary.Max),
			P50Ms:  ms(report.Summary.P50),
			P95Ms:  ms(report.Summary.P95),
			P99Ms:  ms(report.Summary.P99),
		},
		Results:  make([]JSONResult, 0, len(report.Results)),
		Duration: report.Elapsed.Seconds(),
		Time:     time.Now().Format(time.RFC3339),
	}

	for _, result := range report.Results {
		jr := JSONResult{
			Query:      oneLine(result.Query),
			Status:     result.Status.String(),
			DurationMs: ms(result.Duration),
		}
		// Keep the raw response for failures so the report alone is
		// enough to diagnose without re-running the query.
		if result.Status == timer.Failure {
			jr.Response = json.RawMessage(result.Response)
		}
		out.Results = append(out.Results, jr)
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "error encoding JSON output: %v\n", err)
	}
}

func (f *JSONFormatter) FormatError(err error) {
	if encodeErr := json.NewEncoder(f.writer).Encode(map[string]string{"error": err.Error()}); encodeErr != nil {
		fmt.Fprintf(os.Stderr, "error encoding JSON output: %v\n", encodeErr)
	}
}

func ms(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
