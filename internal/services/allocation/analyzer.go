// Package allocation derives current-vs-target allocation analysis and
// rebalance plans from pie data.
package allocation

import (
	"strconv"
	"strings"

	"github.com/dkelsall/piefolio/internal/common"
	"github.com/dkelsall/piefolio/internal/models"
)

// OverallSummaryName is a sentinel pie name reserved for the portfolio-wide
// rollup. A pie carrying it is excluded from allocation analysis defensively;
// it should not normally occur in broker data.
const OverallSummaryName = "Overall Portfolio"

// ParsePieName extracts the category and target percentage from a pie name
// following the "<category> (<percent>%)" convention. Names that don't match
// the shape return ok=false and are excluded from allocation buckets.
func ParsePieName(name string) (category string, target float64, ok bool) {
	parts := strings.Split(name, " (")
	if len(parts) != 2 {
		return "", 0, false
	}

	category = parts[0]
	if category == "" {
		return "", 0, false
	}

	pct := strings.TrimSuffix(parts[1], ")")
	pct = strings.TrimSuffix(pct, "%")
	target, err := strconv.ParseFloat(pct, 64)
	if err != nil {
		return "", 0, false
	}

	return category, target, true
}

// Analyzer buckets invested value by category and computes allocation drift.
type Analyzer struct {
	logger *common.Logger
}

// NewAnalyzer creates a new allocation analyzer
func NewAnalyzer(logger *common.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// Analyze parses each pie's declared target from its name and computes
// current allocation and drift per category. Pies whose names don't match
// the convention still count in overall totals but are excluded here.
//
// Duplicate category names across pies merge their invested values into one
// bucket. A conflicting target percentage for an already-seen category is
// logged and ignored — the first parsed target wins, deterministically in
// broker list order.
func (a *Analyzer) Analyze(pies []models.PieData) *models.AllocationAnalysis {
	if len(pies) == 0 {
		return nil
	}

	analysis := &models.AllocationAnalysis{
		TargetPercent:  make(map[string]float64),
		CurrentPercent: make(map[string]float64),
		CurrentValue:   make(map[string]float64),
		Drift:          make(map[string]float64),
	}

	for _, pie := range pies {
		if pie.Name == OverallSummaryName {
			continue
		}

		category, target, ok := ParsePieName(pie.Name)
		if !ok {
			a.logger.Debug().Str("pie", pie.Name).Msg("Pie name has no target suffix, excluded from allocation buckets")
			continue
		}

		if existing, seen := analysis.TargetPercent[category]; seen {
			if existing != target {
				a.logger.Warn().
					Str("category", category).
					Float64("kept", existing).
					Float64("ignored", target).
					Msg("Conflicting target for duplicate category, first parsed target wins")
			}
		} else {
			analysis.TargetPercent[category] = target
		}

		analysis.CurrentValue[category] += pie.TotalInvested
	}

	if len(analysis.TargetPercent) == 0 {
		return nil
	}

	totalBucketed := 0.0
	for _, invested := range analysis.CurrentValue {
		totalBucketed += invested
	}

	for category, invested := range analysis.CurrentValue {
		current := 0.0
		if totalBucketed > 0 {
			current = invested / totalBucketed * 100
		}
		analysis.CurrentPercent[category] = current
		analysis.Drift[category] = analysis.TargetPercent[category] - current
	}

	return analysis
}
