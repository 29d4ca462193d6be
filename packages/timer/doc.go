// Package timer executes standalone GraphQL queries against a single
// endpoint, one at a time, and measures the round-trip latency of each
// exchange.
//
// The duration clock deliberately excludes connection establishment
// (DNS, TCP, TLS): it starts once a connection has been handed to the
// request and stops when the response body has been fully read, so the
// reported timings reflect server-side field resolution cost rather
// than per-connection overhead.
//
// Responses are classified by the GraphQL response envelope: a non-null
// "data" member means Success, a non-null "errors" member means Failure,
// and anything else is a fatal protocol violation that aborts the run.
package timer
