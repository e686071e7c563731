// Package cli wires together the Cobra command tree for the diffscope binary.
//
// It defines the root command and all subcommands (review, github, serve,
// config, version), binds flags, reads configuration, invokes the analysis
// engine, and returns deterministic exit codes for CI gating.
package cli
