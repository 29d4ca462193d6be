// Package output provides formatters for displaying ranked run reports.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//
// Both formatters render a complete Report in one call; the engine only
// produces a report once the full sequence of queries has completed.
package output
