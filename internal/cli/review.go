package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpavel/diffscope/internal/analyze"
	"github.com/mpavel/diffscope/internal/config"
	"github.com/mpavel/diffscope/internal/diff"
	"github.com/mpavel/diffscope/internal/gitctx"
	"github.com/mpavel/diffscope/internal/output"
	"github.com/mpavel/diffscope/internal/rules"
)

// Git source flags for the review command
var (
	flagStaged    bool
	flagUnstaged  bool
	flagCommit    string
	flagRange     string
	flagMergeBase bool
)

// Shared analysis flags
var (
	flagConfig        string
	flagFormat        string
	flagOut           string
	flagFailOn        string
	flagLineLength    int
	flagLargeFile     int
	flagDeletionRatio float64
	flagWorkers       int
)

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Config file path")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Fail on severity threshold (none, info, warning, error)")
	cmd.Flags().IntVar(&flagLineLength, "line-length", 0, "Maximum added-line length")
	cmd.Flags().IntVar(&flagLargeFile, "large-file", 0, "Added-line count above which a file is flagged")
	cmd.Flags().Float64Var(&flagDeletionRatio, "deletion-ratio", 0, "Removed/added ratio above which a file is flagged")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "Number of files evaluated concurrently")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagLineLength > 0 {
		m["lineLength"] = fmt.Sprintf("%d", flagLineLength)
	}
	if flagLargeFile > 0 {
		m["largeFile"] = fmt.Sprintf("%d", flagLargeFile)
	}
	if flagDeletionRatio > 0 {
		m["deletionRatio"] = fmt.Sprintf("%g", flagDeletionRatio)
	}
	if flagWorkers > 0 {
		m["workers"] = fmt.Sprintf("%d", flagWorkers)
	}
	return m
}

var reviewCmd = &cobra.Command{
	Use:   "review [file]",
	Short: "Analyze a local unified diff",
	Long: "Parse a patch file (or stdin when the argument is - or omitted) and report quality findings with a score.\n" +
		"With --staged, --unstaged, --commit, or --range the diff is taken from the local git repository instead.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig, buildOverrides())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		text, err := resolveDiffSource(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		runAnalysis(text, cfg)
		return nil
	},
}

// resolveDiffSource picks the diff source: a git mode flag when one is set,
// otherwise a file argument or stdin. Git modes are mutually exclusive.
func resolveDiffSource(args []string) (string, error) {
	gitModes := 0
	if flagStaged {
		gitModes++
	}
	if flagUnstaged {
		gitModes++
	}
	if flagCommit != "" {
		gitModes++
	}
	if flagRange != "" {
		gitModes++
	}
	if gitModes > 1 {
		return "", fmt.Errorf("only one of --staged, --unstaged, --commit, --range may be used")
	}
	if gitModes == 1 && len(args) > 0 {
		return "", fmt.Errorf("cannot combine a file argument with a git source flag")
	}

	var (
		text string
		err  error
	)
	switch {
	case flagStaged:
		text, err = gitctx.Staged()
	case flagUnstaged:
		text, err = gitctx.Unstaged()
	case flagCommit != "":
		text, err = gitctx.Commit(flagCommit)
	case flagRange != "":
		text, err = gitctx.Range(flagRange, flagMergeBase)
	default:
		return readDiffArg(args)
	}
	if err != nil {
		return "", err
	}
	if desc := gitctx.Describe(text); desc != "" {
		fmt.Fprintf(os.Stderr, "Analyzing %s\n", desc)
	}
	return text, nil
}

// readDiffArg reads the diff from the named file, or stdin for "-" or no
// argument.
func readDiffArg(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading patch file: %w", err)
	}
	return string(data), nil
}

// runAnalysis is the shared tail of the review and github commands: analyze,
// write the report, set the exit code.
func runAnalysis(text string, cfg config.Config) {
	analyzer, err := analyze.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	report, err := analyzer.Analyze(text)
	if err != nil {
		var merr *diff.MalformedError
		if errors.As(err, &merr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", merr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		exitCode = ExitRuntimeError
		return
	}

	if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if rules.MeetsThreshold(report.HighestSeverity(), cfg.FailOn) {
		exitCode = ExitFindings
	}
}

func init() {
	addAnalysisFlags(reviewCmd)
	reviewCmd.Flags().BoolVar(&flagStaged, "staged", false, "Analyze staged changes (git diff --cached)")
	reviewCmd.Flags().BoolVar(&flagUnstaged, "unstaged", false, "Analyze unstaged changes (git diff)")
	reviewCmd.Flags().StringVar(&flagCommit, "commit", "", "Analyze a single commit by SHA")
	reviewCmd.Flags().StringVar(&flagRange, "range", "", "Analyze a revision range (e.g. main..HEAD)")
	reviewCmd.Flags().BoolVar(&flagMergeBase, "merge-base", false, "Diff --range against the merge base (three-dot)")
}
