// Package diff parses unified diff text into a structural model.
//
// [Parse] runs a single left-to-right pass over the input, splitting it into
// file sections, hunks, and classified lines with old/new line numbers seeded
// from each hunk header. Every hunk's line tally is validated against the
// counts its header declares; any inconsistency aborts the whole parse with a
// [*MalformedError] so downstream consumers never observe a partial model.
//
// Renames (including pure renames with no content change) and binary file
// markers are represented explicitly in [FileChange.Kind].
package diff
