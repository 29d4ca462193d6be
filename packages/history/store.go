// Package history persists run results to a local SQLite database so
// field timings can be compared across runs of the same document.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/LawnGnome/graphql-field-timer/packages/timer"
	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	endpoint   TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	total      INTEGER NOT NULL,
	failed     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	position    INTEGER NOT NULL,
	query       TEXT NOT NULL,
	status      TEXT NOT NULL,
	duration_us INTEGER NOT NULL
);
`

// Store is a SQLite-backed run archive.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary initializes) the archive at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores one run and its ranked results, returning the run id.
func (s *Store) RecordRun(ctx context.Context, endpoint string, startedAt time.Time, results []timer.Result) (string, error) {
	failed := 0
	for _, result := range results {
		if result.Status == timer.Failure {
			failed++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, endpoint, started_at, total, failed) VALUES (?, ?, ?, ?, ?)`,
		id, endpoint, startedAt.UTC(), len(results), failed); err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	for i, result := range results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results (run_id, position, query, status, duration_us) VALUES (?, ?, ?, ?, ?)`,
			id, i, oneLine(result.Query), result.Status.String(), result.Duration.Microseconds()); err != nil {
			return "", fmt.Errorf("failed to record result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// Run summarizes one recorded run.
type Run struct {
	ID        string
	Endpoint  string
	StartedAt time.Time
	Total     int
	Failed    int
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, endpoint, started_at, total, failed FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Endpoint, &run.StartedAt, &run.Total, &run.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunResult is one recorded query result within a run.
type RunResult struct {
	Position int
	Query    string
	Status   string
	Duration time.Duration
}

// RunResults returns the recorded results for a run in ranked order.
func (s *Store) RunResults(ctx context.Context, runID string) ([]RunResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, query, status, duration_us FROM results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var result RunResult
		var us int64
		if err := rows.Scan(&result.Position, &result.Query, &result.Status, &us); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		result.Duration = time.Duration(us) * time.Microsecond
		results = append(results, result)
	}
	return results, rows.Err()
}

func oneLine(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
