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

	"github.com/ifrsconsole/console/internal/gateway/domain"
	httpapi "github.com/ifrsconsole/console/internal/gateway/http"
	"github.com/ifrsconsole/console/internal/gateway/service"
	"github.com/ifrsconsole/console/internal/gateway/store"
	"github.com/ifrsconsole/console/internal/gateway/store/drivers/sqlite"
	"github.com/ifrsconsole/console/pkg/consolesdk"
	"github.com/ifrsconsole/console/pkg/cryptox"
	"github.com/ifrsconsole/console/pkg/httpx"
	"github.com/ifrsconsole/console/pkg/jwtx"
	"github.com/ifrsconsole/console/pkg/slogx"
	"github.com/ifrsconsole/console/pkg/totpx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	sessionIssuer = "ifrs-console"
)

// Application encapsulates the gateway with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	sealer  *cryptox.Sealer
	tokens  *jwtx.HS256
	backend service.Backend

	// Services
	authService         *service.AuthService
	twoFactorService    *service.TwoFactorService
	permissionService   *service.PermissionService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "console-gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initKeys(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.backend = &service.SDKBackend{Client: consolesdk.NewSDKClient(cfg.BackendURL)}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("console gateway starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"backend", app.cfg.BackendURL,
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down console gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("console gateway stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initKeys sets up the sealing key for data at rest and the session signer.
func (app *Application) initKeys() error {
	material, ephemeral, err := cryptox.LoadKeyMaterial(app.cfg.MasterKeyPath, MasterKeyEnv)
	if err != nil {
		return err
	}
	if ephemeral {
		app.logger.Warn("no master key configured, enrollments and sessions will not survive a restart")
	}
	if app.sealer, err = cryptox.NewSealer(material); err != nil {
		return fmt.Errorf("failed to initialize sealer: %w", err)
	}

	key := app.cfg.SessionKey
	if key == "" {
		if key, err = cryptox.GenerateToken(cryptox.TokenSize256); err != nil {
			return fmt.Errorf("failed to generate session key: %w", err)
		}
		app.logger.Warn("no session key configured, sessions end on restart")
	}
	if app.tokens, err = jwtx.NewHS256([]byte(key), sessionIssuer, nil); err != nil {
		return fmt.Errorf("failed to initialize session signer: %w", err)
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.twoFactorService = &service.TwoFactorService{
		Store:  app.db,
		Sealer: app.sealer,
		Issuer: app.cfg.TOTPIssuer,
		Policy: domain.LockoutPolicy{
			Threshold: app.cfg.LockoutThreshold,
			Duration:  app.cfg.LockoutDuration,
		},
		Verify:   totpx.DefaultVerifyOptions,
		SetupTTL: app.cfg.SetupTTL,
		Logger:   app.logger,
	}

	app.permissionService = &service.PermissionService{
		Backend:       app.backend,
		Store:         app.db,
		AdminUsername: app.cfg.AdminUsername,
		CacheTTL:      app.cfg.PermissionCacheTTL,
		Logger:        app.logger,
	}

	app.authService = &service.AuthService{
		Backend:     app.backend,
		Store:       app.db,
		Sealer:      app.sealer,
		Tokens:      app.tokens,
		TwoFactor:   app.twoFactorService,
		Permissions: app.permissionService,
		SessionTTL:  app.cfg.SessionTTL,
		Logger:      app.logger,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.twoFactorService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		httpx.LoadRateLimits(),
		app.cfg.SecureCookies(),
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.TwoFactorService = app.twoFactorService
	router.PermissionService = app.permissionService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
