// Diffscope is a CLI and web tool that scores the quality of code changes.
//
// It parses unified diffs from local patch files or GitHub pull requests,
// runs a set of deterministic heuristic rules over the added and removed
// lines, and emits per-file findings together with an aggregate score.
//
// Usage:
//
//	diffscope review changes.patch        # analyze a local patch file
//	git diff | diffscope review           # analyze a diff from stdin
//	diffscope github <pr-url>             # analyze a GitHub pull request
//	diffscope serve                       # run the web UI
//
// Exit codes are deterministic and suitable for CI gating: 0 on success,
// 1 when findings meet the --fail-on threshold, 2 for usage errors, 3 for
// authentication failures, 4 for runtime failures.
package main
