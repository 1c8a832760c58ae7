// Package app wires the gateway together: configuration, logging, the nonce
// store, services, HTTP server and graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/sessiongate/internal/gateway/http"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/service"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/store"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/store/memory"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/upstream"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gateway with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	nonces   store.NonceStore
	upstream *upstream.Client

	authService         *service.AuthService
	federatedService    *service.FederatedService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "session-gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initNonceStore(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("session gateway starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"upstream", app.cfg.UpstreamBaseURL,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down session gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.nonces.Close(); err != nil {
		app.logger.Error("error closing nonce store", "error", err)
		return err
	}

	app.logger.Info("session gateway stopped")
	return nil
}

// initNonceStore picks the nonce store driver. SQLite keeps pending
// federated logins across restarts; memory is fine everywhere else.
func (app *Application) initNonceStore() error {
	switch app.cfg.NonceStoreDriver {
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.NonceDatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize nonce store: %w", err)
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply nonce store migrations: %w", err)
		}
		app.logger.Info("nonce store migrations applied successfully")
		app.nonces = db
	default:
		app.nonces = memory.NewStore()
	}
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.upstream = upstream.New(app.cfg.UpstreamBaseURL, app.cfg.UpstreamTimeout)

	app.authService = &service.AuthService{Upstream: app.upstream}
	app.federatedService = &service.FederatedService{
		Upstream: app.upstream,
		Nonces:   app.nonces,
		NonceTTL: app.cfg.OIDCNonceTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.nonces,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	cookies := &httpapi.CookieJar{
		AccessTTL:  app.cfg.AccessCookieTTL,
		RefreshTTL: app.cfg.RefreshCookieTTL,
		Secure:     app.cfg.CookiesSecure(),
		SameSite:   app.cfg.SameSite(),
	}

	router := httpapi.NewRouter(
		cookies,
		httpapi.NewMetrics(prometheus.DefaultRegisterer),
		app.nonces,
		app.cfg.RevalidationSecret,
		BuildVersion,
		app.logger,
	)

	router.AuthService = app.authService
	router.FederatedService = app.federatedService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
