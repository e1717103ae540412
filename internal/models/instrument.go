// Package models defines data structures for Piefolio
package models

import "time"

// InstrumentMetadata describes one tradable instrument from the broker's
// reference catalogue. Immutable per refresh cycle; the catalogue is reloaded
// wholesale on a coarse cadence.
type InstrumentMetadata struct {
	Ticker           string    `json:"ticker"`
	Name             string    `json:"name"`
	CurrencyCode     string    `json:"currency_code"`
	Type             string    `json:"type"`
	AddedOn          time.Time `json:"added_on"`
	MaxOpenQuantity  float64   `json:"max_open_quantity"`
	MinTradeQuantity float64   `json:"min_trade_quantity"`
}

// Catalogue is the full instrument universe indexed by ticker.
type Catalogue map[string]InstrumentMetadata

// NewCatalogue builds a ticker-indexed catalogue from a list of instruments.
func NewCatalogue(instruments []InstrumentMetadata) Catalogue {
	catalogue := make(Catalogue, len(instruments))
	for _, inst := range instruments {
		catalogue[inst.Ticker] = inst
	}
	return catalogue
}
