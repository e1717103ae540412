package interfaces

import (
	"context"
	"errors"

	"github.com/dkelsall/piefolio/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotConfigured is returned when a user has no stored credential for a
// service. It is a user-actionable condition, distinct from network failure.
var ErrNotConfigured = errors.New("credential not configured")

// SnapshotStore persists the computed snapshot per user. Each save is a full
// replacement; there are no partial updates.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *models.PerformanceMetrics) error
	GetSnapshot(ctx context.Context, userID string) (*models.PerformanceMetrics, error)
}

// CredentialStore supplies decrypted broker API keys per user.
type CredentialStore interface {
	// GetUserAPIKey returns the decrypted key, or ErrNotConfigured.
	GetUserAPIKey(ctx context.Context, userID, service string) (string, error)

	// SetUserAPIKey seals and stores a key.
	SetUserAPIKey(ctx context.Context, userID, service, key string) error
}

// Store combines the storage areas behind one manager.
type Store interface {
	SnapshotStore
	CredentialStore

	Close() error
}
