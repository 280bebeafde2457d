package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mcoot/fitness-tracking/internal/dependencies/clock"
	"github.com/mcoot/fitness-tracking/internal/dependencies/ids"
	"github.com/mcoot/fitness-tracking/internal/metrics"
	"github.com/mcoot/fitness-tracking/internal/services/docstore"
	"github.com/mcoot/fitness-tracking/internal/services/gate"
	"github.com/mcoot/fitness-tracking/internal/services/identity"
	"github.com/mcoot/fitness-tracking/internal/services/signup"
	"github.com/mcoot/fitness-tracking/internal/storage"
	"github.com/mcoot/fitness-tracking/internal/storage/memory"
	redisstorage "github.com/mcoot/fitness-tracking/internal/storage/redis"
	"github.com/mcoot/fitness-tracking/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   ids.Generator

	// Metrics
	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	// Services
	Provider   *identity.Provider
	Docs       *docstore.Client
	Signup     *signup.Flow
	Gate       *gate.Gate
	HubManager *sse.HubManager
	Navigator  *sse.Navigator

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// IdentityConfig holds configuration for the identity provider (optional)
	// Zero fields fall back to identity.DefaultConfig()
	IdentityConfig identity.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return newWithDependencies(store, clock.New(), ids.New(), registry, cfg.IdentityConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, gen ids.Generator, registry *prometheus.Registry, identityCfg identity.Config, logger *slog.Logger) *App {
	collector := metrics.NewCollector(registry)

	provider := identity.New(store, clk, gen, logger, identityCfg)
	docs := docstore.New(store, logger)
	flow := signup.New(provider, docs, clk, collector, logger)
	hubManager := sse.NewHubManager(logger, collector)
	navigator := sse.NewNavigator(hubManager, logger)
	g := gate.New(provider, navigator, clk, collector, logger, gate.Config{
		OnError: navigator.NotifyStreamError,
	})

	return &App{
		Storage:    store,
		Clock:      clk,
		IDs:        gen,
		Registry:   registry,
		Metrics:    collector,
		Provider:   provider,
		Docs:       docs,
		Signup:     flow,
		Gate:       g,
		HubManager: hubManager,
		Navigator:  navigator,
		logger:     logger,
	}
}

// Start subscribes the gate to session changes
func (a *App) Start() error {
	return a.Gate.Start()
}

// Sweep expires sessions and drops idle per-client state (call periodically)
func (a *App) Sweep(idle time.Duration) {
	cutoff := a.Clock.Now().Add(-idle)
	expired := a.Provider.SweepExpired()
	pruned := a.Gate.Store().Prune(cutoff)
	forms := a.Signup.Prune(cutoff)
	hubs := a.HubManager.CleanupEmptyHubs()
	if expired+pruned+forms+hubs > 0 {
		a.logger.Info("sweep completed",
			slog.Int("expired_sessions", expired),
			slog.Int("pruned_clients", pruned),
			slog.Int("pruned_forms", forms),
			slog.Int("removed_hubs", hubs))
	}
}

// Close releases everything in reverse order of construction
func (a *App) Close() error {
	a.Gate.Close()
	a.HubManager.Close()
	a.Provider.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
