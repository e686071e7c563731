package analyze

import (
	"fmt"

	"github.com/mpavel/diffscope/internal/config"
	"github.com/mpavel/diffscope/internal/diff"
	"github.com/mpavel/diffscope/internal/rules"
	"github.com/mpavel/diffscope/internal/score"
)

// Summary counts findings by severity.
type Summary struct {
	Info    int `json:"info"`
	Warning int `json:"warning"`
	Error   int `json:"error"`
	Total   int `json:"total"`
	Files   int `json:"files"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Report is the immutable output of one analysis run: the parsed diff, every
// finding, and the derived scores. The rendering layers consume it as-is.
type Report struct {
	Model    *diff.Model     `json:"model"`
	Findings []rules.Finding `json:"findings"`
	Score    score.Result    `json:"score"`
	Summary  Summary         `json:"summary"`
}

// Analyzer ties a validated configuration to a rule engine and aggregator.
// Construct once, reuse freely; Analyze is safe for concurrent use.
type Analyzer struct {
	cfg    config.Config
	engine *rules.Engine
	agg    *score.Aggregator
}

// New builds an Analyzer. Configuration errors surface here, before any diff
// is processed.
func New(cfg config.Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	rs := builtinRules(cfg)
	var engine *rules.Engine
	if cfg.Workers > 1 {
		engine = rules.NewParallelEngine(cfg.Workers, rs...)
	} else {
		engine = rules.NewEngine(rs...)
	}

	return &Analyzer{
		cfg:    cfg,
		engine: engine,
		agg:    score.NewAggregator(cfg.Penalties),
	}, nil
}

// Analyze parses the diff text, evaluates every rule, and aggregates scores.
// A malformed diff aborts with a *diff.MalformedError; for any parseable
// input a complete report is always produced.
func (a *Analyzer) Analyze(text string) (*Report, error) {
	model, err := diff.Parse(text)
	if err != nil {
		return nil, err
	}

	findings := a.engine.Run(model)

	return &Report{
		Model:    model,
		Findings: findings,
		Score:    a.agg.Aggregate(model, findings),
		Summary:  summarize(model, findings),
	}, nil
}

// Rules exposes the active rule set in evaluation order.
func (a *Analyzer) Rules() []rules.Rule {
	return a.engine.Rules()
}

// builtinRules assembles the default rule set in its fixed registration
// order, dropping any the config disables.
func builtinRules(cfg config.Config) []rules.Rule {
	all := []rules.Rule{
		rules.LineLength{Limit: cfg.LineLengthLimit},
		rules.TrailingWhitespace{},
		rules.TodoMarker{},
		rules.LargeFile{Limit: cfg.LargeFileLimit},
		rules.DeletionHeavy{Ratio: cfg.DeletionRatio, MinRemoved: cfg.DeletionMinRemoved},
		rules.Secret{},
	}
	var enabled []rules.Rule
	for _, r := range all {
		if cfg.RuleEnabled(r.ID()) {
			enabled = append(enabled, r)
		}
	}
	return enabled
}

func summarize(model *diff.Model, findings []rules.Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case rules.SeverityInfo:
			s.Info++
		case rules.SeverityWarning:
			s.Warning++
		case rules.SeverityError:
			s.Error++
		}
	}
	s.Total = len(findings)
	s.Files = len(model.Files)
	for i := range model.Files {
		s.Added += model.Files[i].AddedCount()
		s.Removed += model.Files[i].RemovedCount()
	}
	return s
}

// HighestSeverity returns the most severe finding severity in the report, or
// "" when there are none.
func (r *Report) HighestSeverity() rules.Severity {
	var top rules.Severity
	for _, f := range r.Findings {
		if rules.SeverityRank(f.Severity) > rules.SeverityRank(top) {
			top = f.Severity
		}
	}
	return top
}
