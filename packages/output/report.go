package output

import (
	"time"

	"github.com/LawnGnome/graphql-field-timer/packages/timer"
)

// Report is the ranked outcome of one run, handed to a formatter once
// every query has completed.
type Report struct {
	Endpoint string
	Results  []timer.Result
	Summary  timer.Summary
	Elapsed  time.Duration
}

// FailedCount returns the number of results classified as Failure.
func (r *Report) FailedCount() int {
	failed := 0
	for _, result := range r.Results {
		if result.Status == timer.Failure {
			failed++
		}
	}
	return failed
}

// Formatter renders a run report and any fatal errors.
type Formatter interface {
	FormatHeader(version string)
	FormatReport(report *Report)
	FormatError(err error)
}
