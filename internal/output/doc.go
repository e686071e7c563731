// Package output formats analysis reports for display or machine consumption.
//
// Four formats are supported:
//   - text     — human-readable terminal output with a per-file score table (default)
//   - json     — full structured JSON report
//   - markdown — PR-comment-friendly with collapsible sections per severity
//   - sarif    — SARIF v2.1.0 for code scanning services
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*analyze.Report]. [WriteReport]
// is a convenience helper that handles destination selection.
package output
