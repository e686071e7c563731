// Package gitctx extracts diffs from a local git repository by shelling out
// to git. It backs the review command's --staged, --unstaged, --commit, and
// --range modes.
package gitctx
