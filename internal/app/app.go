// Package app wires configuration, storage, clients, and services into a
// runnable application core shared by cmd/piefolio-server.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dkelsall/piefolio/internal/cache"
	"github.com/dkelsall/piefolio/internal/clients/httpx"
	"github.com/dkelsall/piefolio/internal/clients/trading212"
	"github.com/dkelsall/piefolio/internal/clients/yahoo"
	"github.com/dkelsall/piefolio/internal/common"
	"github.com/dkelsall/piefolio/internal/interfaces"
	"github.com/dkelsall/piefolio/internal/services/portfolio"
	"github.com/dkelsall/piefolio/internal/storage/sqlite"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Store            interfaces.Store
	MarketClient     interfaces.MarketDataClient
	PortfolioService interfaces.PortfolioService

	scheduler *scheduler
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services from configuration.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	// Config resolution: explicit path, PIEFOLIO_CONFIG, binary dir, dev fallback
	if configPath == "" {
		configPath = os.Getenv("PIEFOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "piefolio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/piefolio.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if err := os.MkdirAll(filepath.Dir(config.Storage.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	store, err := sqlite.NewStore(config.Storage.Path, config.Storage.CredentialKey, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// One shared response cache behind both upstream clients. Broker
	// responses are partitioned per API key inside the HTTP layer.
	responseCache := cache.NewMemory()

	brokerHTTP := httpx.NewClient(
		httpx.WithCache(responseCache, config.Refresh.GetCacheTTL()),
		httpx.WithRetries(config.Refresh.MaxRetries, config.Refresh.GetInitialBackoff()),
		httpx.WithTimeout(config.Clients.Trading212.GetTimeout()),
		httpx.WithLogger(logger),
	)
	marketHTTP := httpx.NewClient(
		httpx.WithCache(responseCache, config.Refresh.GetCacheTTL()),
		httpx.WithRetries(config.Refresh.MaxRetries, config.Refresh.GetInitialBackoff()),
		httpx.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		httpx.WithLogger(logger),
	)

	brokerFactory := func(apiKey string) interfaces.BrokerClient {
		return trading212.NewClient(apiKey,
			trading212.WithBaseURL(config.Clients.Trading212.BaseURL),
			trading212.WithRateLimit(config.Clients.Trading212.RateLimit),
			trading212.WithHTTPClient(brokerHTTP),
			trading212.WithLogger(logger),
		)
	}

	marketClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithHTTPClient(marketHTTP),
		yahoo.WithLogger(logger),
	)

	portfolioService := portfolio.NewService(store, brokerFactory, marketClient, logger,
		portfolio.WithDeadline(config.Refresh.GetDeadline()),
		portfolio.WithPieConcurrency(config.Refresh.PieConcurrency),
		portfolio.WithFallbackAPIKey(config.Clients.Trading212.APIKey),
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		Store:            store,
		MarketClient:     marketClient,
		PortfolioService: portfolioService,
	}

	logger.Info().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Str("storage", config.Storage.Path).
		Msg("Application initialized")

	return a, nil
}

// StartCatalogueScheduler starts the periodic instrument catalogue reload.
// It is a no-op when no cron spec or fallback broker key is configured.
func (a *App) StartCatalogueScheduler() {
	if a.Config.Refresh.CatalogueRefresh == "" {
		return
	}
	if a.Config.Clients.Trading212.APIKey == "" {
		a.Logger.Info().Msg("Catalogue scheduler disabled: no fallback broker key configured")
		return
	}

	s, err := newScheduler(a.Config.Refresh.CatalogueRefresh, a.PortfolioService, a.Logger)
	if err != nil {
		a.Logger.Warn().Err(err).
			Str("spec", a.Config.Refresh.CatalogueRefresh).
			Msg("Invalid catalogue refresh schedule, scheduler disabled")
		return
	}

	a.scheduler = s
	a.scheduler.start()
}

// Close releases all resources held by the app.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.stop()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}
}
