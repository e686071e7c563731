package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mpavel/diffscope/internal/diff"
)

// Default thresholds for the builtin rules.
const (
	DefaultLineLengthLimit    = 120
	DefaultLargeFileLimit     = 400
	DefaultDeletionRatio      = 3.0
	DefaultDeletionMinRemoved = 20
)

// LineLength flags added lines longer than Limit bytes.
type LineLength struct {
	Limit int
}

func (LineLength) ID() string { return "line-length" }

func (r LineLength) Evaluate(fc *diff.FileChange) []Finding {
	var out []Finding
	eachAddedLine(fc, func(l diff.Line) {
		if len(l.Content) > r.Limit {
			out = append(out, Finding{
				RuleID:   r.ID(),
				Severity: SeverityWarning,
				Path:     fc.Path(),
				Line:     l.NewNum,
				Message:  fmt.Sprintf("line is %d characters long (limit %d)", len(l.Content), r.Limit),
			})
		}
	})
	return out
}

// TrailingWhitespace flags added lines that end in spaces or tabs.
type TrailingWhitespace struct{}

func (TrailingWhitespace) ID() string { return "trailing-whitespace" }

func (r TrailingWhitespace) Evaluate(fc *diff.FileChange) []Finding {
	var out []Finding
	eachAddedLine(fc, func(l diff.Line) {
		if l.Content != strings.TrimRight(l.Content, " \t") {
			out = append(out, Finding{
				RuleID:   r.ID(),
				Severity: SeverityInfo,
				Path:     fc.Path(),
				Line:     l.NewNum,
				Message:  "line has trailing whitespace",
			})
		}
	})
	return out
}

// TodoMarker flags added lines that carry TODO or FIXME markers, signalling
// work the change leaves unresolved.
type TodoMarker struct{}

func (TodoMarker) ID() string { return "todo-marker" }

var todoRe = regexp.MustCompile(`\b(TODO|FIXME)\b`)

func (r TodoMarker) Evaluate(fc *diff.FileChange) []Finding {
	var out []Finding
	eachAddedLine(fc, func(l diff.Line) {
		if m := todoRe.FindString(l.Content); m != "" {
			out = append(out, Finding{
				RuleID:   r.ID(),
				Severity: SeverityInfo,
				Path:     fc.Path(),
				Line:     l.NewNum,
				Message:  fmt.Sprintf("%s marker left in added code", m),
			})
		}
	})
	return out
}

// LargeFile flags a file whose total added-line count exceeds Limit.
// The finding is file-level: a change this big is hard to review regardless
// of any single line.
type LargeFile struct {
	Limit int
}

func (LargeFile) ID() string { return "large-file" }

func (r LargeFile) Evaluate(fc *diff.FileChange) []Finding {
	added := fc.AddedCount()
	if added <= r.Limit {
		return nil
	}
	return []Finding{{
		RuleID:   r.ID(),
		Severity: SeverityWarning,
		Path:     fc.Path(),
		Message:  fmt.Sprintf("%d added lines in one file (limit %d); consider splitting the change", added, r.Limit),
	}}
}

// DeletionHeavy flags a file where removals dominate additions by at least
// Ratio, with MinRemoved as a floor so trivial deletions stay quiet.
type DeletionHeavy struct {
	Ratio      float64
	MinRemoved int
}

func (DeletionHeavy) ID() string { return "deletion-heavy" }

func (r DeletionHeavy) Evaluate(fc *diff.FileChange) []Finding {
	added := fc.AddedCount()
	removed := fc.RemovedCount()
	if removed < r.MinRemoved {
		return nil
	}
	if float64(removed) < r.Ratio*float64(max(added, 1)) {
		return nil
	}
	return []Finding{{
		RuleID:   r.ID(),
		Severity: SeverityWarning,
		Path:     fc.Path(),
		Message:  fmt.Sprintf("%d lines removed against %d added; verify the deletion is intended", removed, added),
	}}
}

// Secret flags added lines that look like they carry credentials. Patterns
// cover common key formats and assignments of long opaque values.
type Secret struct{}

func (Secret) ID() string { return "secret" }

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{20,}["']?`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`),
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE KEY-----`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
}

func (r Secret) Evaluate(fc *diff.FileChange) []Finding {
	var out []Finding
	eachAddedLine(fc, func(l diff.Line) {
		for _, pat := range secretPatterns {
			if pat.MatchString(l.Content) {
				out = append(out, Finding{
					RuleID:   r.ID(),
					Severity: SeverityError,
					Path:     fc.Path(),
					Line:     l.NewNum,
					Message:  "line appears to contain a credential",
				})
				return
			}
		}
	})
	return out
}

// eachAddedLine visits every added line of a file change in hunk order.
func eachAddedLine(fc *diff.FileChange, fn func(diff.Line)) {
	for _, h := range fc.Hunks {
		for _, l := range h.Lines {
			if l.Kind == diff.LineAdded {
				fn(l)
			}
		}
	}
}
