package timer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds each individual request. It is applied per
	// request rather than per run, so a timeout mid-run still leaves
	// earlier results intact.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxIdleConnsPerHost keeps the connection to the single
	// target endpoint pooled between sequential requests.
	DefaultMaxIdleConnsPerHost = 2
	// DefaultIdleConnTimeout is how long the pooled connection may sit
	// idle between requests.
	DefaultIdleConnTimeout = 90 * time.Second
)

// Timer issues one HTTP POST per standalone query, strictly
// sequentially, and accumulates a Result per exchange. The endpoint,
// extra headers, and shared variables are fixed at construction and
// read-only for the duration of the run.
type Timer struct {
	endpoint  string
	headers   [][2]string
	variables map[string]any

	client   *http.Client
	timeout  time.Duration
	insecure bool
	limiter  *rate.Limiter

	metrics *Metrics
	results []Result
}

// Option configures a Timer.
type Option func(*Timer)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *Timer) {
		t.timeout = d
	}
}

// WithInsecureSkipVerify disables TLS certificate validation.
func WithInsecureSkipVerify(insecure bool) Option {
	return func(t *Timer) {
		t.insecure = insecure
	}
}

// WithRate paces the sequential sends to at most rps requests per
// second. Zero or negative disables pacing.
func WithRate(rps float64) Option {
	return func(t *Timer) {
		if rps > 0 {
			t.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithHTTPClient injects a custom HTTP client, primarily for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Timer) {
		t.client = client
	}
}

// New builds a Timer for the given endpoint. Extra headers are given in
// "Name: Value" form and split on the first colon with surrounding
// whitespace trimmed. A nil variables map is treated as empty.
func New(endpoint string, headers []string, variables map[string]any, opts ...Option) (*Timer, error) {
	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}

	parsed, err := parseHeaders(headers)
	if err != nil {
		return nil, err
	}

	if variables == nil {
		variables = map[string]any{}
	}

	t := &Timer{
		endpoint:  endpoint,
		headers:   parsed,
		variables: variables,
		timeout:   DefaultTimeout,
		metrics:   newMetrics(),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.client == nil {
		transport := &http.Transport{
			MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
			IdleConnTimeout:     DefaultIdleConnTimeout,
		}
		if t.insecure {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		t.client = &http.Client{Transport: transport}
	}

	return t, nil
}

// ParseVariables decodes a JSON object string into a shared variables
// map. An empty string yields an empty map.
func ParseVariables(raw string) (map[string]any, error) {
	if raw == "" {
		raw = "{}"
	}
	var variables map[string]any
	if err := json.Unmarshal([]byte(raw), &variables); err != nil {
		return nil, fmt.Errorf("parsing variables: %w", err)
	}
	return variables, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// Send executes one standalone query and appends its Result. The clock
// starts when a connection is handed to the request (after any DNS, TCP
// and TLS setup) and stops once the response body has been fully read.
// Transport errors and protocol violations are returned as errors; a
// response with GraphQL errors is a recorded Failure, not an error.
func (t *Timer) Send(ctx context.Context, query string) (*Result, error) {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: t.variables})
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var start time.Time
	trace := &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) {
			start = time.Now()
		},
	}

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	for _, header := range t.headers {
		req.Header.Set(header[0], header[1])
	}

	fallback := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if start.IsZero() {
		start = fallback
	}
	duration := time.Since(start)

	status, err := classify(body)
	if err != nil {
		return nil, err
	}

	t.metrics.Record(duration)
	t.results = append(t.results, Result{
		Query:    query,
		Duration: duration,
		Response: body,
		Status:   status,
	})
	return &t.results[len(t.results)-1], nil
}

// Run executes each query in order, one at a time, awaiting full
// completion of each exchange before issuing the next. The progress
// callback, when non-nil, is invoked after every completed exchange.
// The first fatal error aborts the remaining run.
func (t *Timer) Run(ctx context.Context, queries []string, progress func(done, total int)) ([]Result, error) {
	for i, query := range queries {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("waiting for rate limiter: %w", err)
			}
		}
		if _, err := t.Send(ctx, query); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(i+1, len(queries))
		}
	}
	return t.Results(), nil
}

// Results ranks and returns the results accumulated so far.
func (t *Timer) Results() []Result {
	Rank(t.results)
	return t.results
}

// Summary returns latency statistics over the recorded exchanges.
func (t *Timer) Summary() Summary {
	return t.metrics.Summary()
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q (only http and https are allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

func parseHeaders(headers []string) ([][2]string, error) {
	parsed := make([][2]string, 0, len(headers))
	for _, header := range headers {
		name, value, ok := strings.Cut(header, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header %q: expected \"Name: Value\"", header)
		}
		parsed = append(parsed, [2]string{strings.TrimSpace(name), strings.TrimSpace(value)})
	}
	return parsed, nil
}
