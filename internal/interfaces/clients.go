// Package interfaces defines service contracts for Piefolio
package interfaces

import (
	"context"
	"time"

	"github.com/dkelsall/piefolio/internal/models"
)

// BrokerClient provides access to the brokerage API for one user's key.
type BrokerClient interface {
	// GetPies retrieves the list of pies
	GetPies(ctx context.Context) ([]models.PieRef, error)

	// GetPie retrieves one pie's detail document
	GetPie(ctx context.Context, id int64) (*models.BrokerPieDetail, error)

	// GetInstruments retrieves the full instrument reference catalogue
	GetInstruments(ctx context.Context) ([]models.InstrumentMetadata, error)

	// GetCash retrieves the free cash balance
	GetCash(ctx context.Context) (float64, error)
}

// BrokerClientFactory builds a broker client bound to one user's API key.
type BrokerClientFactory func(apiKey string) BrokerClient

// MarketDataClient provides quotes and daily price history.
type MarketDataClient interface {
	// GetQuote retrieves the current quote (price, dividend yield) for a symbol
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetDailyHistory retrieves daily closes for a symbol in ascending date order
	GetDailyHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.DailyClose, error)
}
