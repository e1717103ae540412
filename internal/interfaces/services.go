package interfaces

import (
	"context"

	"github.com/dkelsall/piefolio/internal/models"
)

// PortfolioService orchestrates a full refresh cycle and serves snapshots.
type PortfolioService interface {
	// Refresh runs one full refresh cycle for a user. It always returns a
	// structurally valid snapshot; stage failures degrade fields instead of
	// surfacing as errors.
	Refresh(ctx context.Context, userID string, budget float64) *models.PerformanceMetrics

	// GetSnapshot returns the last persisted snapshot for a user.
	GetSnapshot(ctx context.Context, userID string) (*models.PerformanceMetrics, error)

	// ReloadCatalogue refreshes the cached instrument catalogue.
	ReloadCatalogue(ctx context.Context, userID string) error
}
