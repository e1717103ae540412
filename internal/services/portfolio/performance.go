package portfolio

import (
	"time"

	"github.com/dkelsall/piefolio/internal/models"
)

// ComputePerformance derives trailing price change percentages for the five
// standard windows from daily closes (ascending date order). Each window uses
// the most recent close on or before its boundary as the base; a window with
// no such close stays nil.
func ComputePerformance(closes []models.DailyClose, now time.Time) models.Performance {
	if len(closes) == 0 {
		return models.Performance{}
	}

	latest := closes[len(closes)-1].Close

	change := func(boundary time.Time) *float64 {
		base, ok := models.CloseAtOrBefore(closes, boundary)
		if !ok || base == 0 {
			return nil
		}
		pct := (latest - base) / base * 100
		return &pct
	}

	return models.Performance{
		Day:        change(now.AddDate(0, 0, -1)),
		Week:       change(now.AddDate(0, 0, -7)),
		Month:      change(now.AddDate(0, -1, 0)),
		ThreeMonth: change(now.AddDate(0, -3, 0)),
		Year:       change(now.AddDate(-1, 0, 0)),
	}
}
