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

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	httpapi "github.com/aussiebroadwan/tokenauth/internal/auth/http"
	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	key    *jwtx.SigningKey
	users  *sqlite.Store
	tokens store.TokenStore

	// Services
	tokenService        *service.TokenService
	validator           *service.TokenValidator
	resolver            *service.AuthResolver
	housekeepingService *service.HousekeepingService // nil unless the token store needs sweeping

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	key, err := jwtx.NewSigningKey(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_SECRET_KEY: %w", err)
	}
	app.key = key

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initTokenStore(context.Background()); err != nil {
		_ = app.users.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, mostly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// CreateUser provisions an account in the user database.
func (app *Application) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	return app.users.CreateUser(ctx, u)
}

// IssueFor mints a token pair for an existing user without going through
// HTTP. The bootstrap admin gets its first token this way.
func (app *Application) IssueFor(ctx context.Context, realID string) (*domain.TokenPair, error) {
	return app.tokenService.IssueFor(ctx, realID)
}

// Close releases the stores of an application that was never Run.
func (app *Application) Close() error {
	return errors.Join(app.tokens.Close(), app.users.Close())
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
	}

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store_driver", app.cfg.StoreDriver,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingService != nil {
		app.housekeepingService.Stop()
	}

	var errs []error
	if err := app.tokens.Close(); err != nil {
		app.logger.Error("error closing token store", "error", err)
		errs = append(errs, err)
	}
	if err := app.users.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}

	app.logger.Info("auth service stopped")
	return errors.Join(errs...)
}

// initDatabase opens the user database and applies migrations
func (app *Application) initDatabase() error {
	dsn := app.cfg.DatabaseFile
	if dsn != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dsn)
	}

	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.users = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initTokenStore connects the refresh-token and revocation store. Only the
// memory driver needs the housekeeping sweeper; Redis expires keys itself.
func (app *Application) initTokenStore(ctx context.Context) error {
	switch app.cfg.StoreDriver {
	case StoreDriverMemory:
		m := memory.New(time.Now)
		app.tokens = m
		app.housekeepingService = service.NewHousekeepingService(
			app.logger,
			app.cfg.HousekeepingInterval,
			m,
		)
		app.logger.Warn("using in-memory token store, tokens are lost on restart")

	case StoreDriverRedis:
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		r, err := redis.New(ctx, app.cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect token store: %w", err)
		}
		app.tokens = r
		app.logger.Info("redis token store connected", "addr", app.cfg.Redis.Addr)

	default:
		return fmt.Errorf("unknown store driver %q", app.cfg.StoreDriver)
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	verifier := jwtx.NewVerifierHS256(app.key, time.Now)

	app.tokenService = &service.TokenService{
		Signer:        jwtx.NewSignerHS256(app.key),
		Verifier:      verifier,
		RefreshTokens: app.tokens,
		Revocations:   app.tokens,
		Users:         app.users,
		AccessTTL:     app.cfg.AccessTTL(),
		RefreshTTL:    app.cfg.RefreshTTL(),
		Now:           time.Now,
	}
	app.validator = &service.TokenValidator{
		Verifier:    verifier,
		Revocations: app.tokens,
	}
	app.resolver = &service.AuthResolver{Users: app.users}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.users,
		app.tokens,
		httpapi.Limits{
			Strict:            app.cfg.RateLimit.Strict(),
			Moderate:          app.cfg.RateLimit.Moderate(),
			TrustProxyHeaders: app.cfg.TrustProxyHeaders,
		},
		app.logger,
	)

	// Wire services to router
	router.TokenService = app.tokenService
	router.Validator = app.validator
	router.Resolver = app.resolver
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
