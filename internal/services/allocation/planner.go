package allocation

import (
	"fmt"

	"github.com/dkelsall/piefolio/internal/models"
)

// PlanRebalance computes per-category target investment amounts that move
// the portfolio toward its targets given newCapital to deploy. Categories
// already above target receive 0 — the planner only ever recommends adding
// capital, never withdrawing.
func PlanRebalance(current map[string]float64, targets map[string]float64, newCapital float64) (models.TargetInvestments, error) {
	if len(current) == 0 || len(targets) == 0 {
		return nil, fmt.Errorf("allocation maps must be non-empty")
	}
	if newCapital <= 0 {
		return nil, fmt.Errorf("new capital must be positive, got %v", newCapital)
	}
	if len(current) != len(targets) {
		return nil, fmt.Errorf("allocation key sets differ: %d current vs %d target categories", len(current), len(targets))
	}
	for category := range current {
		if _, ok := targets[category]; !ok {
			return nil, fmt.Errorf("category %q has no target allocation", category)
		}
	}

	newTotal := newCapital
	for _, value := range current {
		newTotal += value
	}

	plan := make(models.TargetInvestments, len(targets))
	for category, targetPercent := range targets {
		targetValue := newTotal * targetPercent / 100
		investment := targetValue - current[category]
		if investment < 0 {
			investment = 0
		}
		plan[category] = investment
	}

	return plan, nil
}
