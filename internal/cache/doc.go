// Package cache provides a file-based cache for fetched pull request diffs.
//
// Cache entries are keyed by a SHA-256 hash of owner/repo#number. Each entry
// stores the raw diff text along with a creation timestamp and a TTL (in
// seconds). Expired entries are skipped on read and removed during
// cache-clear operations.
//
// The default cache directory is $XDG_CACHE_HOME/diffscope (or the
// OS-appropriate equivalent).
package cache
