// Package github provides a minimal GitHub REST API client for fetching
// pull-request diffs and metadata.
//
// Authentication is optional: when GITHUB_TOKEN is set it is sent as a
// bearer token, otherwise requests run against the unauthenticated rate
// limit. [ParsePRURL] maps a browser PR URL to its owner/repo/number triple.
package github
