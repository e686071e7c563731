// Package score reduces findings into per-file and overall quality scores.
//
// Every file starts at 100 and loses a fixed penalty per finding, keyed by
// severity. The overall score is the mean of per-file scores weighted by each
// file's changed-line count, so a sprawling low-quality file drags the total
// down more than a one-line fix lifts it. The reduction is pure: identical
// input always produces an identical Result.
package score

import (
	"gonum.org/v1/gonum/stat"

	"github.com/mpavel/diffscope/internal/config"
	"github.com/mpavel/diffscope/internal/diff"
	"github.com/mpavel/diffscope/internal/rules"
)

// Result holds derived scores. Values are in [0,100]; never mutated after
// construction.
type Result struct {
	PerFile map[string]float64 `json:"perFile"`
	Overall float64            `json:"overall"`
}

// Aggregator applies a fixed penalty policy to findings.
type Aggregator struct {
	penalties config.Penalties
}

// NewAggregator builds an aggregator from validated penalties.
func NewAggregator(p config.Penalties) *Aggregator {
	return &Aggregator{penalties: p}
}

// Aggregate scores every file in the model against the findings scoped to it.
// A model with no files scores 100 overall: nothing to penalize.
func (a *Aggregator) Aggregate(model *diff.Model, findings []rules.Finding) Result {
	res := Result{PerFile: make(map[string]float64), Overall: 100}
	if model == nil || len(model.Files) == 0 {
		return res
	}

	byPath := make(map[string]int)
	for _, f := range findings {
		byPath[f.Path] += a.penalty(f.Severity)
	}

	scores := make([]float64, 0, len(model.Files))
	weights := make([]float64, 0, len(model.Files))
	for i := range model.Files {
		fc := &model.Files[i]
		s := clamp(100 - float64(byPath[fc.Path()]))
		res.PerFile[fc.Path()] = s

		scores = append(scores, s)
		// Weight floor of 1 keeps pure renames and binary changes from
		// vanishing out of the mean.
		weights = append(weights, float64(max(fc.ChangedLines(), 1)))
	}

	res.Overall = clamp(stat.Mean(scores, weights))
	return res
}

func (a *Aggregator) penalty(s rules.Severity) int {
	switch s {
	case rules.SeverityError:
		return a.penalties.Error
	case rules.SeverityWarning:
		return a.penalties.Warning
	case rules.SeverityInfo:
		return a.penalties.Info
	default:
		return 0
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
