package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/core"
	httpx "github.com/target/printbroker-api/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// NewHTTPServer builds the API server without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Jobs:           cfg.Services.Jobs,
		Financials:     cfg.Services.Financials,
		PurchaseOrders: cfg.Services.PurchaseOrders,
		Payments:       cfg.Services.Payments,
		Webhooks:       cfg.Services.Webhooks,
		Health:         healthChecks(cfg.DB, cfg.Services.Cache),
		MaxBodyBytes:   appCfg.HTTP.MaxBodyBytes,
		Logger:         logger,
	})

	addr := appCfg.HTTP.Addr
	// guard against listening on the Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: appCfg.HTTP.ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
}

// healthChecks probes Postgres as a required dependency and Redis as an optional one.
func healthChecks(db *sql.DB, cache core.CacheRepository) []httpx.HealthCheck {
	var checks []httpx.HealthCheck
	if db != nil {
		checks = append(checks, httpx.HealthCheck{Name: "postgres", Required: true, Check: db.PingContext})
	}
	if cache != nil {
		checks = append(checks, httpx.HealthCheck{Name: "redis", Check: cache.Health})
	}
	return checks
}

// ServeHTTP runs srv until ctx is cancelled, then drains in-flight requests within the configured
// shutdown timeout.
func ServeHTTP(ctx context.Context, srv *http.Server, cfg config.HTTPConfig, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "starting HTTP server", "addr", ln.Addr().String())
		if serveErr := srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
		close(errCh)
	}()

	select {
	case serveErr := <-errCh:
		return serveErr
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}
