package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	httpapi "github.com/aussiebroadwan/ut4master/internal/auth/http"
	"github.com/aussiebroadwan/ut4master/internal/auth/service"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/cryptox"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// NewLogger builds the process logger from cfg and installs it as the
// slog default.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "ut4master-auth",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// Application encapsulates the account service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db             store.Store
	tracerProvider *sdktrace.TracerProvider

	// Services
	sessionService      *service.SessionService
	codeService         *service.CodeService
	accountService      *service.AccountService
	clientService       *service.ClientService
	tokenService        *service.TokenService
	authenticator       *service.Authenticator
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New connects the store, migrates it, seeds the well-known clients and
// builds the HTTP server. Nothing is listening yet; call Run.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Application, error) {
	app := &Application{cfg: cfg, logger: logger}

	cryptox.SetPepperPath(cfg.PepperFile)
	app.tracerProvider = newTracerProvider(cfg.TraceSampleRatio)

	db, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := Migrate(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	app.initServices()

	if _, err := app.bootstrapService.EnsureClients(slogx.WithContext(ctx, logger), cfg.SeedClients()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to seed clients: %w", err)
	}

	app.initHTTP()
	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		slog.Int("port", app.cfg.Port),
		slog.String("driver", app.cfg.DatabaseDriver),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops housekeeping and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.tracerProvider.Shutdown(ctx); err != nil {
		app.logger.Warn("tracer provider shutdown failed", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initServices() {
	lifetimes := app.cfg.Lifetimes()

	app.sessionService = &service.SessionService{Store: app.db, Lifetimes: lifetimes}
	app.codeService = &service.CodeService{Store: app.db, Lifetimes: lifetimes}
	app.accountService = &service.AccountService{Store: app.db}
	app.clientService = &service.ClientService{Store: app.db}

	app.tokenService = &service.TokenService{
		Sessions: app.sessionService,
		Codes:    app.codeService,
		Accounts: app.accountService,
		Clients:  app.clientService,

		StoreTimeout: app.cfg.StoreTimeout,
	}
	app.authenticator = &service.Authenticator{
		Sessions: app.sessionService,
		Clients:  app.clientService,

		StoreTimeout: app.cfg.StoreTimeout,
	}
	app.bootstrapService = &service.BootstrapService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	// A nil clock reads the wall clock.
	router := httpapi.NewRouter(BuildVersion, app.db, nil, app.logger)

	router.TokenService = app.tokenService
	router.SessionService = app.sessionService
	router.CodeService = app.codeService
	router.AccountService = app.accountService
	router.Authenticator = app.authenticator
	router.StoreTimeout = app.cfg.StoreTimeout
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
