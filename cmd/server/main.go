package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/mcoot/fitness-tracking/internal/api"
	"github.com/mcoot/fitness-tracking/internal/config"
	"github.com/mcoot/fitness-tracking/internal/factory"
	"github.com/mcoot/fitness-tracking/internal/metrics"
	"github.com/mcoot/fitness-tracking/internal/middleware"
	"github.com/mcoot/fitness-tracking/internal/services/identity"
	redisstorage "github.com/mcoot/fitness-tracking/internal/storage/redis"
	"github.com/mcoot/fitness-tracking/internal/web"
	webmiddleware "github.com/mcoot/fitness-tracking/internal/web/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Build factory config
	identityCfg := identity.DefaultConfig()
	identityCfg.SessionDuration = cfg.SessionDuration
	factoryCfg := factory.Config{
		IdentityConfig: identityCfg,
		Logger:         logger,
		StorageType:    cfg.StorageType,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.KeyPrefix = cfg.RedisPrefix
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close error", slog.String("error", err.Error()))
		}
	}()

	if err := app.Start(); err != nil {
		logger.Error("failed to start application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Find static files directory
	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findStaticDir()
	}

	limiter := webmiddleware.NewRateLimiter(rate.Limit(cfg.FormRateLimit), cfg.FormRateBurst, logger)

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Provider:    app.Provider,
		Signup:      app.Signup,
		Gate:        app.Gate,
		Docs:        app.Docs,
		IDs:         app.IDs,
		CORSOrigins: cfg.CORSOrigins,
	})

	// Create web router
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:       logger,
		Provider:     app.Provider,
		Signup:       app.Signup,
		Gate:         app.Gate,
		Docs:         app.Docs,
		HubManager:   app.HubManager,
		IDs:          app.IDs,
		CookieSecure: cfg.CookieSecure,
		RateLimiter:  limiter,
		StaticDir:    staticDir,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", metrics.Handler(app.Registry))
	}
	mux.Handle("/", webRouter)

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.ListenAddr
	server := api.NewServer(middleware.RequestID()(mux), serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Expire sessions and forget idle clients
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				app.Sweep(cfg.SessionDuration)
				limiter.Cleanup(cfg.SessionDuration)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			cancel()
			return
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		// End open SSE streams so shutdown does not wait on them
		app.HubManager.Close()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}

// findStaticDir looks for the static files directory
func findStaticDir() string {
	// Try common locations
	candidates := []string{
		"internal/web/static",
		"./internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	// Default to relative path
	return "internal/web/static"
}
