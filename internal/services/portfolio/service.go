// Package portfolio aggregates pie holdings with market data into a
// single consistent snapshot per refresh cycle.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkelsall/piefolio/internal/common"
	"github.com/dkelsall/piefolio/internal/interfaces"
	"github.com/dkelsall/piefolio/internal/models"
	"github.com/dkelsall/piefolio/internal/services/allocation"
	"github.com/dkelsall/piefolio/internal/services/dividend"
)

// BrokerService names the credential store entry for the brokerage API key.
const BrokerService = "trading212"

// Service implements PortfolioService
type Service struct {
	store          interfaces.Store
	brokerFactory  interfaces.BrokerClientFactory
	market         interfaces.MarketDataClient
	analyzer       *allocation.Analyzer
	logger         *common.Logger
	now            func() time.Time // injectable clock for testing
	deadline       time.Duration
	pieConcurrency int
	fallbackKey    string // config-level broker key used when a user has none stored

	catMu       sync.RWMutex
	catalogue   models.Catalogue
	catalogueAt time.Time
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithDeadline sets the overall budget for one refresh cycle
func WithDeadline(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.deadline = d
		}
	}
}

// WithPieConcurrency caps how many pies are fetched in parallel
func WithPieConcurrency(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.pieConcurrency = n
		}
	}
}

// WithFallbackAPIKey sets a config-level broker key used when a user has no
// stored credential
func WithFallbackAPIKey(key string) ServiceOption {
	return func(s *Service) {
		s.fallbackKey = key
	}
}

// WithClock sets the time source (tests)
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new portfolio service
func NewService(
	store interfaces.Store,
	brokerFactory interfaces.BrokerClientFactory,
	market interfaces.MarketDataClient,
	logger *common.Logger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		store:          store,
		brokerFactory:  brokerFactory,
		market:         market,
		analyzer:       allocation.NewAnalyzer(logger),
		logger:         logger,
		now:            time.Now,
		deadline:       5 * time.Minute,
		pieConcurrency: 3,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// resolveAPIKey returns the user's stored broker key, falling back to the
// config-level key. A missing credential is a distinct, user-actionable
// condition and is reported as ErrNotConfigured.
func (s *Service) resolveAPIKey(ctx context.Context, userID string) (string, error) {
	key, err := s.store.GetUserAPIKey(ctx, userID, BrokerService)
	if err == nil && key != "" {
		return key, nil
	}
	if err != nil && !errors.Is(err, interfaces.ErrNotConfigured) {
		return "", err
	}
	if s.fallbackKey != "" {
		return s.fallbackKey, nil
	}
	return "", interfaces.ErrNotConfigured
}

// loadCatalogue returns the cached instrument catalogue, reloading it from
// the broker when stale. A stale cache is still served if the reload fails.
func (s *Service) loadCatalogue(ctx context.Context, broker interfaces.BrokerClient) (models.Catalogue, error) {
	s.catMu.RLock()
	cached := s.catalogue
	fresh := common.IsFresh(s.catalogueAt, common.FreshnessCatalogue)
	s.catMu.RUnlock()

	if cached != nil && fresh {
		return cached, nil
	}

	instruments, err := broker.GetInstruments(ctx)
	if err != nil {
		if cached != nil {
			s.logger.Warn().Err(err).Msg("Catalogue reload failed, serving stale catalogue")
			return cached, nil
		}
		return nil, err
	}

	catalogue := models.NewCatalogue(instruments)

	s.catMu.Lock()
	s.catalogue = catalogue
	s.catalogueAt = s.now()
	s.catMu.Unlock()

	s.logger.Info().Int("instruments", len(catalogue)).Msg("Instrument catalogue loaded")
	return catalogue, nil
}

// ReloadCatalogue refreshes the cached instrument catalogue. With an empty
// userID the config-level fallback key is used (scheduler path).
func (s *Service) ReloadCatalogue(ctx context.Context, userID string) error {
	var apiKey string
	var err error

	if userID == "" {
		if s.fallbackKey == "" {
			return interfaces.ErrNotConfigured
		}
		apiKey = s.fallbackKey
	} else {
		apiKey, err = s.resolveAPIKey(ctx, userID)
		if err != nil {
			return err
		}
	}

	broker := s.brokerFactory(apiKey)
	instruments, err := broker.GetInstruments(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload catalogue: %w", err)
	}

	catalogue := models.NewCatalogue(instruments)

	s.catMu.Lock()
	s.catalogue = catalogue
	s.catalogueAt = s.now()
	s.catMu.Unlock()

	s.logger.Info().Int("instruments", len(catalogue)).Msg("Instrument catalogue reloaded")
	return nil
}

// Refresh runs one full refresh cycle for a user: cash, catalogue, pies,
// allocation analysis, rebalance plan, dividend estimate. Every stage failure
// degrades the snapshot instead of failing it — the caller always receives a
// structurally valid PerformanceMetrics.
func (s *Service) Refresh(ctx context.Context, userID string, budget float64) *models.PerformanceMetrics {
	ctx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	snapshot := &models.PerformanceMetrics{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    models.SnapshotStatus{State: models.SnapshotComplete},
		FetchedAt: s.now(),
	}

	apiKey, err := s.resolveAPIKey(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotConfigured) {
			snapshot.Status = models.SnapshotStatus{
				State: models.SnapshotEmpty,
				Notes: []string{"broker credential not configured"},
			}
		} else {
			snapshot.Status = models.SnapshotStatus{
				State: models.SnapshotEmpty,
				Notes: []string{"credential store unavailable: " + err.Error()},
			}
		}
		return snapshot
	}

	broker := s.brokerFactory(apiKey)

	cash, err := broker.GetCash(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("Cash balance unavailable, aborting refresh")
		snapshot.Status = models.SnapshotStatus{
			State: models.SnapshotEmpty,
			Notes: []string{"cash balance unavailable"},
		}
		return snapshot
	}
	snapshot.FreeCash = cash

	catalogue, err := s.loadCatalogue(ctx, broker)
	if err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("Instrument catalogue unavailable, aborting refresh")
		snapshot.Status = models.SnapshotStatus{
			State: models.SnapshotEmpty,
			Notes: []string{"instrument catalogue unavailable"},
		}
		return snapshot
	}

	pies, summary, err := s.fetchAllPies(ctx, broker, catalogue)
	if err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("Pie list unavailable")
		snapshot.Status.Degrade("pie list unavailable")
		return snapshot
	}
	snapshot.Pies = pies
	snapshot.Summary = summary

	if analysis := s.analyzer.Analyze(pies); analysis != nil {
		snapshot.Allocation = analysis

		if budget > 0 {
			plan, err := allocation.PlanRebalance(analysis.CurrentValue, analysis.TargetPercent, budget)
			if err != nil {
				s.logger.Warn().Err(err).Str("user", userID).Msg("Rebalance planning failed")
				snapshot.Status.Degrade("rebalance plan unavailable")
			} else {
				snapshot.PlannedInvestments = plan
			}
		}
	}

	snapshot.EstimatedAnnualDividend = dividend.EstimateAnnualDividend(pies, budget)

	if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.Error().Err(err).Str("user", userID).Msg("Failed to persist snapshot")
		snapshot.Status.Degrade("snapshot not persisted")
	}

	s.logger.Info().
		Str("user", userID).
		Int("pies", len(pies)).
		Str("state", snapshot.Status.State).
		Msg("Portfolio refresh complete")

	return snapshot
}

// GetSnapshot returns the last persisted snapshot for a user.
func (s *Service) GetSnapshot(ctx context.Context, userID string) (*models.PerformanceMetrics, error) {
	return s.store.GetSnapshot(ctx, userID)
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
