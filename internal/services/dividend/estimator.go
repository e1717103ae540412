// Package dividend projects forward dividend income from current holdings.
package dividend

import "github.com/dkelsall/piefolio/internal/models"

// EstimateAnnualDividend projects annual dividend income: each holding's
// current value times its yield, plus the yield-weighted effect of the
// annualized monthly budget allocated proportionally to current weights.
// Returns 0 when there are no holdings.
func EstimateAnnualDividend(pies []models.PieData, monthlyBudget float64) float64 {
	annualBudget := monthlyBudget * 12

	totalPortfolioValue := 0.0
	for _, pie := range pies {
		for _, inst := range pie.Instruments {
			totalPortfolioValue += inst.CurrentValue
		}
	}

	if totalPortfolioValue <= 0 {
		return 0
	}

	total := 0.0
	for _, pie := range pies {
		for _, inst := range pie.Instruments {
			holdingDividend := inst.CurrentValue * inst.DividendYield / 100
			futureDividend := annualBudget * (inst.CurrentValue / totalPortfolioValue) * inst.DividendYield / 100
			total += holdingDividend + futureDividend
		}
	}

	return total
}
