package timer

import "time"

// Status classifies the outcome of one standalone query execution.
type Status int

const (
	// Success means the response carried a non-null data member.
	Success Status = iota
	// Failure means the response carried GraphQL errors and no data.
	Failure
)

func (s Status) String() string {
	switch s {
	case Success:
		return "OK"
	case Failure:
		return "ERR"
	}
	return "UNKNOWN"
}

// Result records the outcome of one standalone query execution. Results
// are append-only during a run and never mutated after creation.
type Result struct {
	// Query is the standalone query that was sent.
	Query string
	// Duration is the wall-clock time of the network exchange only,
	// excluding connection and handshake setup.
	Duration time.Duration
	// Response is the raw response body, retained so failures can be
	// diagnosed without re-running the query.
	Response []byte
	// Status classifies the exchange.
	Status Status
}
