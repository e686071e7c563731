package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpavel/diffscope/internal/cache"
	"github.com/mpavel/diffscope/internal/config"
	"github.com/mpavel/diffscope/internal/github"
)

var (
	flagGHOwner   string
	flagGHRepo    string
	flagGHNoCache bool
)

var githubCmd = &cobra.Command{
	Use:   "github <pr-url|pr-number>",
	Short: "Analyze a GitHub pull request",
	Long:  "Fetch a PR diff from GitHub and run the quality analysis over it. Accepts a full PR URL, or a bare number with --owner and --repo.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig, buildOverrides())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		owner, repo, number, err := resolvePRRef(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		diffCache, err := cache.New(!flagGHNoCache, "", prDiffCacheTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cache unavailable: %v\n", err)
			diffCache, _ = cache.New(false, "", 0)
		}
		cacheKey := cache.BuildCacheKey(owner, repo, number)

		diffText, hit := diffCache.Get(cacheKey)
		if !hit {
			client := github.NewClient()
			ctx := context.Background()

			fmt.Fprintf(os.Stderr, "Fetching PR #%d from %s/%s...\n", number, owner, repo)
			diffText, err = client.GetPRDiff(ctx, owner, repo, number)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				if strings.Contains(err.Error(), "authentication failed") {
					exitCode = ExitAuthError
				} else {
					exitCode = ExitRuntimeError
				}
				return nil
			}
			if err := diffCache.Put(cacheKey, diffText); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: caching diff: %v\n", err)
			}
		}

		if strings.TrimSpace(diffText) == "" {
			fmt.Fprintln(os.Stdout, "PR has no diff — nothing to analyze.")
			return nil
		}

		runAnalysis(diffText, cfg)
		return nil
	},
}

// resolvePRRef accepts a full PR URL or a bare number combined with the
// --owner/--repo flags.
func resolvePRRef(arg string) (owner, repo string, number int, err error) {
	if strings.HasPrefix(arg, "https://") {
		return github.ParsePRURL(arg)
	}
	number, err = strconv.Atoi(arg)
	if err != nil {
		return "", "", 0, fmt.Errorf("expected a PR URL or number, got %q", arg)
	}
	if flagGHOwner == "" || flagGHRepo == "" {
		return "", "", 0, fmt.Errorf("--owner and --repo are required with a bare PR number")
	}
	return flagGHOwner, flagGHRepo, number, nil
}

func init() {
	addAnalysisFlags(githubCmd)
	githubCmd.Flags().StringVar(&flagGHOwner, "owner", "", "Repository owner")
	githubCmd.Flags().StringVar(&flagGHRepo, "repo", "", "Repository name")
	githubCmd.Flags().BoolVar(&flagGHNoCache, "no-cache", false, "Bypass the PR diff cache")
}
