// Package common provides shared utilities for Piefolio
package common

import "time"

// Freshness TTLs for data components
const (
	FreshnessResponse  = 5 * time.Minute     // cached HTTP responses
	FreshnessCatalogue = 6 * time.Hour       // instrument catalogue — universes change slowly
	FreshnessSnapshot  = 1 * time.Hour       // persisted portfolio snapshot
	FreshnessQuote     = 15 * time.Minute    // dividend yield quotes
	FreshnessHistory   = 24 * time.Hour      // daily close history
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
