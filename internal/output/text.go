package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mpavel/diffscope/internal/analyze"
	"github.com/mpavel/diffscope/internal/rules"
)

// TextWriter outputs a human-readable terminal report.
type TextWriter struct{}

var (
	errorLabel   = color.New(color.FgRed, color.Bold).SprintFunc()
	warningLabel = color.New(color.FgYellow).SprintFunc()
	infoLabel    = color.New(color.FgCyan).SprintFunc()
)

func (t *TextWriter) Write(w io.Writer, report *analyze.Report) error {
	ew := &errWriter{w: w}

	ew.printf("diffscope report\n")
	ew.println(strings.Repeat("─", 60))
	ew.printf("Files: %d | Lines: +%s / -%s\n",
		report.Summary.Files,
		humanize.Comma(int64(report.Summary.Added)),
		humanize.Comma(int64(report.Summary.Removed)),
	)
	ew.printf("Findings: %d total", report.Summary.Total)
	if report.Summary.Total > 0 {
		ew.printf(" (%d error, %d warning, %d info)",
			report.Summary.Error, report.Summary.Warning, report.Summary.Info)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if report.Summary.Total == 0 {
		ew.println("\nNo issues found. Looks good!")
	} else {
		t.writeFindings(ew, report.Findings)
	}

	ew.println("")
	ew.println(scoreTable(report))
	ew.printf("\nOverall score: %.1f / 100\n", report.Score.Overall)

	return ew.err
}

// writeFindings groups findings by file in model order, then prints each in
// engine order.
func (t *TextWriter) writeFindings(ew *errWriter, findings []rules.Finding) {
	byPath := make(map[string][]rules.Finding)
	var order []string
	for _, f := range findings {
		if _, seen := byPath[f.Path]; !seen {
			order = append(order, f.Path)
		}
		byPath[f.Path] = append(byPath[f.Path], f)
	}

	for _, path := range order {
		ew.printf("\n%s\n", color.New(color.Bold).Sprint(path))
		for _, f := range byPath[path] {
			loc := "file"
			if f.Line > 0 {
				loc = fmt.Sprintf("line %d", f.Line)
			}
			ew.printf("  %s %-8s %s (%s)\n", severityLabel(f.Severity), loc, f.Message, f.RuleID)
		}
	}
}

func severityLabel(s rules.Severity) string {
	switch s {
	case rules.SeverityError:
		return errorLabel("ERROR")
	case rules.SeverityWarning:
		return warningLabel("WARN ")
	default:
		return infoLabel("INFO ")
	}
}

// scoreTable renders per-file scores, worst first.
func scoreTable(report *analyze.Report) string {
	type row struct {
		path  string
		score float64
	}
	rows := make([]row, 0, len(report.Score.PerFile))
	for path, s := range report.Score.PerFile {
		rows = append(rows, row{path, s})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].score != rows[j].score {
			return rows[i].score < rows[j].score
		}
		return rows[i].path < rows[j].path
	})

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"File", "Score"})
	for _, r := range rows {
		tw.AppendRow(table.Row{r.path, fmt.Sprintf("%.1f", r.score)})
	}
	tw.AppendFooter(table.Row{"Overall", fmt.Sprintf("%.1f", report.Score.Overall)})
	return tw.Render()
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
