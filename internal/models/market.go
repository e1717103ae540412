package models

import "time"

// Quote holds the market-data fields the engine consumes for one symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	DividendYield float64   `json:"dividend_yield"` // percent
	AsOf          time.Time `json:"as_of"`
}

// DailyClose is one daily close from the market-data provider.
type DailyClose struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// CloseAtOrBefore returns the most recent close on or before the boundary,
// or false when no such point exists. Closes must be in ascending date order.
func CloseAtOrBefore(closes []DailyClose, boundary time.Time) (float64, bool) {
	for i := len(closes) - 1; i >= 0; i-- {
		if !closes[i].Date.After(boundary) {
			return closes[i].Close, true
		}
	}
	return 0, false
}
