package models

import "time"

// Response types expose a whitelisted subset of snapshot fields to HTTP
// clients. Raw broker fields (expected/current share, dividend cash action,
// broker pie IDs) stay internal.

// InstrumentResponse is the client-facing view of one holding.
type InstrumentResponse struct {
	Ticker        string      `json:"ticker"`
	Name          string      `json:"name,omitempty"`
	CurrencyCode  string      `json:"currency_code,omitempty"`
	OwnedQuantity float64     `json:"owned_quantity"`
	InvestedValue float64     `json:"invested_value"`
	CurrentValue  float64     `json:"current_value"`
	ResultValue   float64     `json:"result_value"`
	DividendYield float64     `json:"dividend_yield"`
	Performance   Performance `json:"performance"`
}

// PieResponse is the client-facing view of one pie.
type PieResponse struct {
	Name             string               `json:"name"`
	CreationDate     time.Time            `json:"creation_date"`
	Instruments      []InstrumentResponse `json:"instruments"`
	TotalInvested    float64              `json:"total_invested"`
	TotalResult      float64              `json:"total_result"`
	ReturnPercentage float64              `json:"return_percentage"`
}

// SnapshotResponse is the client-facing view of a full snapshot.
type SnapshotResponse struct {
	Pies                    []PieResponse       `json:"pies"`
	Summary                 *OverallSummary     `json:"summary"`
	Allocation              *AllocationAnalysis `json:"allocation"`
	PlannedInvestments      TargetInvestments   `json:"planned_investments,omitempty"`
	EstimatedAnnualDividend float64             `json:"estimated_annual_dividend"`
	FreeCash                float64             `json:"free_cash"`
	Status                  SnapshotStatus      `json:"status"`
	FetchedAt               time.Time           `json:"fetched_at"`
}

// ToResponse converts a snapshot to its whitelisted client-facing form.
func (m *PerformanceMetrics) ToResponse() *SnapshotResponse {
	resp := &SnapshotResponse{
		Pies:                    make([]PieResponse, len(m.Pies)),
		Summary:                 m.Summary,
		Allocation:              m.Allocation,
		PlannedInvestments:      m.PlannedInvestments,
		EstimatedAnnualDividend: m.EstimatedAnnualDividend,
		FreeCash:                m.FreeCash,
		Status:                  m.Status,
		FetchedAt:               m.FetchedAt,
	}

	for i, pie := range m.Pies {
		instruments := make([]InstrumentResponse, len(pie.Instruments))
		for j, inst := range pie.Instruments {
			instruments[j] = InstrumentResponse{
				Ticker:        inst.Ticker,
				Name:          inst.Name,
				CurrencyCode:  inst.CurrencyCode,
				OwnedQuantity: inst.OwnedQuantity,
				InvestedValue: inst.InvestedValue,
				CurrentValue:  inst.CurrentValue,
				ResultValue:   inst.ResultValue,
				DividendYield: inst.DividendYield,
				Performance:   inst.Performance,
			}
		}
		resp.Pies[i] = PieResponse{
			Name:             pie.Name,
			CreationDate:     pie.CreationDate,
			Instruments:      instruments,
			TotalInvested:    pie.TotalInvested,
			TotalResult:      pie.TotalResult,
			ReturnPercentage: pie.ReturnPercentage,
		}
	}

	return resp
}
