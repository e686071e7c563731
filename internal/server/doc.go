// Package server implements the web UI: a paste form for PR URLs or raw
// diffs, HTML report rendering, a JSON API, and Prometheus metrics.
package server
