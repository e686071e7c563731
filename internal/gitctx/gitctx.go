package gitctx

import (
	"fmt"
	"os/exec"
	"strings"
)

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// GetRepoMeta collects repository metadata from git.
func GetRepoMeta() (RepoMeta, error) {
	root, err := gitOutput("rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput("rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// Unstaged returns the diff of working tree vs index.
func Unstaged() (string, error) {
	diff, err := gitOutput("diff")
	if err != nil {
		return "", fmt.Errorf("git diff: %w", err)
	}
	return diff, nil
}

// Staged returns the diff of index vs HEAD.
func Staged() (string, error) {
	diff, err := gitOutput("diff", "--cached")
	if err != nil {
		return "", fmt.Errorf("git diff --cached: %w", err)
	}
	return diff, nil
}

// Commit returns the diff for a specific commit vs its parent.
func Commit(sha string) (string, error) {
	diff, err := gitOutput("diff", sha+"~1", sha)
	if err != nil {
		// Might be the initial commit, try show
		diff, err = gitOutput("show", "--format=", sha)
		if err != nil {
			return "", fmt.Errorf("git show %s: %w", sha, err)
		}
	}
	return diff, nil
}

// Range returns the combined diff for a revision range. With mergeBase, a
// two-dot range is widened to three dots so the comparison starts at the
// merge base, matching how a PR diff is computed.
func Range(revRange string, mergeBase bool) (string, error) {
	diffRange := revRange
	if mergeBase && strings.Contains(revRange, "..") && !strings.Contains(revRange, "...") {
		diffRange = strings.Replace(revRange, "..", "...", 1)
	}
	diff, err := gitOutput("diff", diffRange)
	if err != nil {
		return "", fmt.Errorf("git diff %s: %w", revRange, err)
	}
	return diff, nil
}

// ChangedFiles lists the new-side paths named in a unified diff, in order of
// first appearance.
func ChangedFiles(diff string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+++ b/") {
			f := strings.TrimPrefix(line, "+++ b/")
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files
}

// Describe summarizes the repository and a diff's changed-file count in one
// line, for status output alongside a git-sourced analysis. Returns "" when
// not inside a git repository.
func Describe(diff string) string {
	meta, err := GetRepoMeta()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s (branch %s): %d changed file(s)",
		meta.Root, meta.Branch, len(ChangedFiles(diff)))
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
