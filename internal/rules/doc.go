// Package rules defines the heuristic checks run over a parsed diff.
//
// A [Rule] inspects one file's change at a time and emits zero or more
// [Finding] values; it holds no mutable state, so evaluation is reproducible
// and safe to parallelize. [Engine.Run] visits files in model order and rules
// in registration order, which fixes the output order regardless of how the
// work is scheduled. A rule that panics is demoted to a single error-severity
// finding rather than aborting the run.
//
// The builtin rules (builtin.go) cover line length, trailing whitespace,
// TODO/FIXME markers, oversized additions, deletion-heavy changes, and
// likely credentials.
package rules
