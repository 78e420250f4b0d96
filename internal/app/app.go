// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bissquit/sports-inventory/internal/config"
	"github.com/bissquit/sports-inventory/internal/identity"
	"github.com/bissquit/sports-inventory/internal/identity/filestore"
	"github.com/bissquit/sports-inventory/internal/identity/jwt"
	identitypostgres "github.com/bissquit/sports-inventory/internal/identity/postgres"
	"github.com/bissquit/sports-inventory/internal/identity/revocation"
	"github.com/bissquit/sports-inventory/internal/inventory"
	inventorypostgres "github.com/bissquit/sports-inventory/internal/inventory/postgres"
	"github.com/bissquit/sports-inventory/internal/pkg/httputil"
	"github.com/bissquit/sports-inventory/internal/pkg/metrics"
	"github.com/bissquit/sports-inventory/internal/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	db            *sqlx.DB
	closers       []io.Closer
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer connectCancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		metricsCancel: metricsCancel,
	}

	router, err := app.setupRouter()
	if err != nil {
		_ = app.closeResources()
		metricsCancel()
		return nil, fmt.Errorf("setup router: %w", err)
	}

	go app.collectDBMetrics(metricsCtx)

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	// Start metrics server in background
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	// Start main server
	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	var g errgroup.Group
	g.Go(func() error {
		if err := a.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		return nil
	})

	// Resources are released even when a server fails to drain in time.
	errs := []error{g.Wait()}

	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

func (a *App) closeResources() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) collectDBMetrics(ctx context.Context) {
	// Collect immediately on start
	metrics.RecordDBPoolMetrics(a.db)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.RecordDBPoolMetrics(a.db)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) setupRouter() (*chi.Mux, error) {
	store, err := a.credentialStore()
	if err != nil {
		return nil, err
	}

	revocations, err := a.revocationList()
	if err != nil {
		return nil, err
	}

	authenticator, err := jwt.NewAuthenticator(jwt.Config{
		SecretKey: a.config.JWT.SecretKey,
		TokenTTL:  a.config.JWT.TokenTTL,
		Leeway:    a.config.JWT.Leeway,
		Issuer:    a.config.JWT.Issuer,
	}, revocations)
	if err != nil {
		return nil, fmt.Errorf("create authenticator: %w", err)
	}

	identityService := identity.NewService(store, authenticator, identity.ServiceConfig{
		BcryptCost: a.config.Credentials.BcryptCost,
	})

	inventoryService := inventory.NewService(inventorypostgres.NewRepository(a.db))

	var loginLimiter *httputil.IPRateLimiter
	if a.config.RateLimit.LoginRPS > 0 {
		loginLimiter = httputil.NewIPRateLimiter(a.config.RateLimit.LoginRPS, a.config.RateLimit.LoginBurst)
		if a.config.RateLimit.TrustProxyHeaders {
			loginLimiter.TrustProxyHeaders()
		}
	}

	a.logger.Info("identity configured",
		"credentials_backend", a.config.Credentials.Backend,
		"revocation_backend", a.config.Revocation.Backend,
		"token_ttl", a.config.JWT.TokenTTL,
		"login_rate_limited", loginLimiter != nil,
	)

	return NewRouter(RouterDeps{
		Logger:         a.logger,
		Identity:       identityService,
		Inventory:      inventoryService,
		LoginLimiter:   loginLimiter,
		CORSOrigins:    a.config.CORS.AllowedOrigins,
		RequestTimeout: a.config.Server.RequestTimeout,
		OpenAPIPath:    a.config.Server.OpenAPIPath,
		Ready:          a.db.PingContext,
	}), nil
}

func (a *App) credentialStore() (identity.CredentialStore, error) {
	switch a.config.Credentials.Backend {
	case config.CredentialsPostgres:
		return identitypostgres.NewStore(a.db), nil
	case config.CredentialsFile:
		store, err := filestore.Open(a.config.Credentials.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open credential file: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown credentials backend %q", a.config.Credentials.Backend)
	}
}

func (a *App) revocationList() (jwt.RevocationList, error) {
	switch a.config.Revocation.Backend {
	case config.RevocationRedis:
		list := revocation.NewRedis(revocation.RedisConfig{
			Addr:     a.config.Revocation.Redis.Addr,
			Password: a.config.Revocation.Redis.Password,
			DB:       a.config.Revocation.Redis.DB,
		})
		a.closers = append(a.closers, list)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := list.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return list, nil
	case config.RevocationMemory:
		return revocation.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown revocation backend %q", a.config.Revocation.Backend)
	}
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
