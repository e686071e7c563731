// Package config loads and merges diffscope configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (DIFFSCOPE_FORMAT, DIFFSCOPE_FAIL_ON, etc.)
//  3. Config file ($XDG_CONFIG_HOME/diffscope/config.yaml)
//  4. Built-in defaults
//
// The merged [Config] is validated before it is handed to the engine, so
// out-of-range thresholds are rejected before any diff is processed.
package config
