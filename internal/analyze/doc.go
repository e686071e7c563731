// Package analyze composes parsing, rule evaluation, and scoring into a
// single entry point.
//
// [Analyzer.Analyze] is the only operation external callers need: diff text
// in, immutable [Report] out. It performs no I/O; fetching diffs and
// rendering reports belong to the cli, server, and output packages.
package analyze
