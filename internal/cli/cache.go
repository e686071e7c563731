package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpavel/diffscope/internal/cache"
)

// Fetched PR diffs stay valid only briefly; new pushes change them.
const prDiffCacheTTL = 900 // seconds

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the PR diff cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached PR diffs",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cache.New(true, "", prDiffCacheTTL)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		if err := c.Clear(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Cache cleared.")
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cache.New(true, "", prDiffCacheTTL)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		stats, err := c.GetStats()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Directory: %s\nEnabled:   %v\n", c.Dir(), c.Enabled())
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
