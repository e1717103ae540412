package models

import "time"

// PieRef identifies one pie in the broker's pie list.
type PieRef struct {
	ID int64 `json:"id"`
}

// BrokerHolding is one raw holding record inside a pie detail document,
// as reported by the broker before enrichment.
type BrokerHolding struct {
	Ticker                string  `json:"ticker"`
	OwnedQuantity         float64 `json:"ownedQuantity"`
	CurrentShare          float64 `json:"currentShare"`
	ExpectedShare         float64 `json:"expectedShare"`
	PriceAvgInvestedValue float64 `json:"priceAvgInvestedValue"`
	PriceAvgValue         float64 `json:"priceAvgValue"`
	Issues                []any   `json:"issues,omitempty"`
}

// BrokerPieDetail is the raw pie detail document from the broker.
type BrokerPieDetail struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	CreationDate       time.Time       `json:"creation_date"`
	DividendCashAction string          `json:"dividend_cash_action"`
	Holdings           []BrokerHolding `json:"holdings"`
}

// Performance holds trailing price change percentages for the five
// standard windows. A nil entry means no close was available at or before
// that window's boundary.
type Performance struct {
	Day        *float64 `json:"perf_1d"`
	Week       *float64 `json:"perf_1w"`
	Month      *float64 `json:"perf_1m"`
	ThreeMonth *float64 `json:"perf_3m"`
	Year       *float64 `json:"perf_1y"`
}

// PieInstrument is one enriched holding inside one pie.
type PieInstrument struct {
	Ticker        string      `json:"ticker"`
	Name          string      `json:"name,omitempty"`
	CurrencyCode  string      `json:"currency_code,omitempty"`
	Type          string      `json:"type,omitempty"`
	OwnedQuantity float64     `json:"owned_quantity"`
	InvestedValue float64     `json:"invested_value"`
	CurrentValue  float64     `json:"current_value"`
	ResultValue   float64     `json:"result_value"`
	CurrentShare  float64     `json:"current_share"`
	ExpectedShare float64     `json:"expected_share"`
	DividendYield float64     `json:"dividend_yield"`
	Performance   Performance `json:"performance"`
}

// PieData is one named sub-portfolio with rolled-up totals.
// Invariants: TotalInvested = Σ InvestedValue, TotalResult = Σ ResultValue,
// ReturnPercentage = TotalResult/TotalInvested×100 (0 when TotalInvested is 0).
type PieData struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	CreationDate       time.Time       `json:"creation_date"`
	DividendCashAction string          `json:"dividend_cash_action"`
	Instruments        []PieInstrument `json:"instruments"`
	TotalInvested      float64         `json:"total_invested"`
	TotalResult        float64         `json:"total_result"`
	ReturnPercentage   float64         `json:"return_percentage"`
	FetchedAt          time.Time       `json:"fetched_at"`
}

// ComputeTotals recalculates the pie-level rollups from the instrument list.
func (p *PieData) ComputeTotals() {
	p.TotalInvested = 0
	p.TotalResult = 0
	for _, inst := range p.Instruments {
		p.TotalInvested += inst.InvestedValue
		p.TotalResult += inst.ResultValue
	}
	if p.TotalInvested > 0 {
		p.ReturnPercentage = p.TotalResult / p.TotalInvested * 100
	} else {
		p.ReturnPercentage = 0
	}
}

// OverallSummary holds portfolio-wide totals summed across all pies.
type OverallSummary struct {
	TotalInvested    float64   `json:"total_invested"`
	TotalResult      float64   `json:"total_result"`
	ReturnPercentage float64   `json:"return_percentage"`
	FetchedAt        time.Time `json:"fetched_at"`
}

// Summarize rolls pie totals up into an overall summary.
func Summarize(pies []PieData, now time.Time) OverallSummary {
	summary := OverallSummary{FetchedAt: now}
	for _, pie := range pies {
		summary.TotalInvested += pie.TotalInvested
		summary.TotalResult += pie.TotalResult
	}
	if summary.TotalInvested > 0 {
		summary.ReturnPercentage = summary.TotalResult / summary.TotalInvested * 100
	}
	return summary
}
