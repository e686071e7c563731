package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mpavel/diffscope/internal/analyze"
	"github.com/mpavel/diffscope/internal/rules"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *analyze.Report) error {
	fmt.Fprintf(w, "## diffscope report\n\n")
	fmt.Fprintf(w, "**Score: %.1f / 100** — %d files, +%d / -%d lines\n\n",
		report.Score.Overall, report.Summary.Files, report.Summary.Added, report.Summary.Removed)

	fmt.Fprintf(w, "| Severity | Count |\n")
	fmt.Fprintf(w, "|----------|-------|\n")
	fmt.Fprintf(w, "| Error    | %d    |\n", report.Summary.Error)
	fmt.Fprintf(w, "| Warning  | %d    |\n", report.Summary.Warning)
	fmt.Fprintf(w, "| Info     | %d    |\n", report.Summary.Info)
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", report.Summary.Total)

	if report.Summary.Total == 0 {
		fmt.Fprintln(w, "No issues found. :white_check_mark:")
		return nil
	}

	grouped := groupBySeverity(report.Findings)
	for _, sev := range []rules.Severity{rules.SeverityError, rules.SeverityWarning, rules.SeverityInfo} {
		findings := grouped[sev]
		if len(findings) == 0 {
			continue
		}

		label := strings.ToUpper(string(sev))
		fmt.Fprintf(w, "<details>\n<summary>%s %s (%d)</summary>\n\n", mdIcon(sev), label, len(findings))

		sort.SliceStable(findings, func(i, j int) bool {
			if findings[i].Path != findings[j].Path {
				return findings[i].Path < findings[j].Path
			}
			return findings[i].Line < findings[j].Line
		})

		for _, f := range findings {
			if f.Line > 0 {
				fmt.Fprintf(w, "- **`%s:%d`** %s _(%s)_\n", f.Path, f.Line, f.Message, f.RuleID)
			} else {
				fmt.Fprintf(w, "- **`%s`** %s _(%s)_\n", f.Path, f.Message, f.RuleID)
			}
		}

		fmt.Fprintf(w, "\n</details>\n\n")
	}

	return nil
}

func groupBySeverity(findings []rules.Finding) map[rules.Severity][]rules.Finding {
	m := make(map[rules.Severity][]rules.Finding)
	for _, f := range findings {
		m[f.Severity] = append(m[f.Severity], f)
	}
	return m
}

func mdIcon(s rules.Severity) string {
	switch s {
	case rules.SeverityError:
		return ":red_circle:"
	case rules.SeverityWarning:
		return ":yellow_circle:"
	default:
		return ":information_source:"
	}
}
