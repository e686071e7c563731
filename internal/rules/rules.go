package rules

import (
	"fmt"
	"sync"

	"github.com/mpavel/diffscope/internal/diff"
)

// Severity is the weight class of a finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// SeverityRank returns a numeric rank for ordering (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// MeetsThreshold reports whether s is at or above the named threshold.
// An empty or "none" threshold never matches.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	return SeverityRank(s) >= SeverityRank(Severity(threshold))
}

// Finding is one rule's observation about a location in the diff. It is a
// plain value: two findings with equal fields are the same finding.
type Finding struct {
	RuleID   string   `json:"ruleId"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Line     int      `json:"line,omitempty"` // new-side line number; 0 for file-level findings
	Message  string   `json:"message"`
}

// Rule is an independent heuristic check over a single file's change. An
// implementation must be stateless: Evaluate reads only its argument and the
// rule's fixed configuration, so identical input always yields identical
// findings.
type Rule interface {
	ID() string
	Evaluate(fc *diff.FileChange) []Finding
}

// Engine runs an ordered set of rules over a diff model. Ordering affects
// only where findings appear in the output, never their content.
type Engine struct {
	rules   []Rule
	workers int
}

// NewEngine builds an engine over the given rules, in registration order.
func NewEngine(rs ...Rule) *Engine {
	return &Engine{rules: rs}
}

// NewParallelEngine builds an engine that fans rule evaluation out across
// files with at most workers goroutines. Output is identical to the
// sequential engine.
func NewParallelEngine(workers int, rs ...Rule) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{rules: rs, workers: workers}
}

// Rules returns the registered rules in evaluation order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Run evaluates every rule against every file and returns the concatenated
// findings: model file order first, rule registration order within a file.
// A rule that panics is converted into a single error-severity finding
// attributed to that rule; remaining rules and files still run.
func (e *Engine) Run(model *diff.Model) []Finding {
	if model == nil {
		return nil
	}

	perFile := make([][]Finding, len(model.Files))
	if e.workers > 1 {
		e.runParallel(model, perFile)
	} else {
		for i := range model.Files {
			perFile[i] = e.evalFile(&model.Files[i])
		}
	}

	var all []Finding
	for _, fs := range perFile {
		all = append(all, fs...)
	}
	return all
}

// runParallel evaluates files concurrently, keyed by file index so the merge
// preserves model order.
func (e *Engine) runParallel(model *diff.Model, perFile [][]Finding) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.workers)

	for i := range model.Files {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release
			perFile[i] = e.evalFile(&model.Files[i])
		}(i)
	}
	wg.Wait()
}

func (e *Engine) evalFile(fc *diff.FileChange) []Finding {
	var out []Finding
	for _, r := range e.rules {
		out = append(out, evalOne(r, fc)...)
	}
	return out
}

// evalOne isolates a single rule invocation: a panic becomes data, not a
// crashed analysis.
func evalOne(r Rule, fc *diff.FileChange) (out []Finding) {
	defer func() {
		if rec := recover(); rec != nil {
			out = []Finding{{
				RuleID:   r.ID(),
				Severity: SeverityError,
				Path:     fc.Path(),
				Message:  fmt.Sprintf("rule failed: %v", rec),
			}}
		}
	}()
	return r.Evaluate(fc)
}
