package models

import (
	"fmt"
	"time"
)

// AllocationAnalysis holds target-vs-current allocation per category.
// Categories come from pie names following the "<category> (<percent>%)"
// convention; pies whose names don't match are excluded from the buckets.
type AllocationAnalysis struct {
	TargetPercent  map[string]float64 `json:"target_percent"`
	CurrentPercent map[string]float64 `json:"current_percent"`
	CurrentValue   map[string]float64 `json:"current_value"` // invested value per category
	Drift          map[string]float64 `json:"drift"`         // target - current, signed
}

// DriftString formats a category's drift as a signed percentage string.
func (a *AllocationAnalysis) DriftString(category string) string {
	return fmt.Sprintf("%+.2f%%", a.Drift[category])
}

// TargetInvestments maps each category to the amount of new capital to
// allocate. Values are always >= 0 — the planner only adds, never withdraws.
type TargetInvestments map[string]float64

// Snapshot states.
const (
	SnapshotComplete = "complete" // all stages succeeded
	SnapshotPartial  = "partial"  // some stages degraded
	SnapshotEmpty    = "empty"    // a required upstream stage failed
)

// SnapshotStatus records how a refresh cycle went. Notes carry one entry per
// degraded stage so clients can distinguish "provider down" from
// "not configured".
type SnapshotStatus struct {
	State string   `json:"state"`
	Notes []string `json:"notes,omitempty"`
}

// Degrade appends a note and downgrades the state (complete → partial).
func (s *SnapshotStatus) Degrade(note string) {
	if s.State == SnapshotComplete {
		s.State = SnapshotPartial
	}
	s.Notes = append(s.Notes, note)
}

// PerformanceMetrics is the engine's sole output artifact: one complete,
// structurally valid snapshot per refresh cycle. There is no partial update —
// each cycle produces a full replacement.
type PerformanceMetrics struct {
	ID                      string              `json:"id"`
	UserID                  string              `json:"user_id"`
	Pies                    []PieData           `json:"pies"`
	Summary                 *OverallSummary     `json:"summary"`
	Allocation              *AllocationAnalysis `json:"allocation"`
	PlannedInvestments      TargetInvestments   `json:"planned_investments,omitempty"`
	EstimatedAnnualDividend float64             `json:"estimated_annual_dividend"`
	FreeCash                float64             `json:"free_cash"`
	Status                  SnapshotStatus      `json:"status"`
	FetchedAt               time.Time           `json:"fetched_at"`
}
