package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/adapters/auditor"
	"golang.org/x/sync/errgroup"
)

// ServiceOrchestrationConfig carries what RunServicesWithShutdown starts.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// backgroundService describes a startable component tied to one service mode.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// RunServicesWithShutdown starts every enabled service and blocks until SIGINT/SIGTERM or until one
// of them fails. Either way the rest are cancelled and awaited.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(sigCtx)
	for _, svc := range buildBackgroundServices(cfg, logger) {
		if !enabled[svc.mode] {
			continue
		}
		logger.InfoContext(gctx, "service started", "service", svc.name)
		group.Go(func() error {
			if runErr := svc.start(gctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
				return fmt.Errorf("%s failed: %w", svc.name, runErr)
			}
			logger.Info(svc.name + " stopped")
			return nil
		})
	}

	err = group.Wait()
	if err != nil {
		logger.Error("service error", "error", err)
	}
	return err
}

func buildBackgroundServices(cfg *ServiceOrchestrationConfig, logger *slog.Logger) []backgroundService {
	return []backgroundService{
		{
			mode: config.ServiceModeHTTP,
			name: "http server",
			start: func(ctx context.Context) error {
				srv := NewHTTPServer(&HTTPServerConfig{
					Config:   cfg.Config,
					Services: cfg.Services,
					DB:       cfg.DB,
					Logger:   logger,
				})
				return ServeHTTP(ctx, srv, cfg.Config.HTTP, logger)
			},
		},
		{
			mode: config.ServiceModeIntegrityAuditor,
			name: "integrity auditor",
			start: func(ctx context.Context) error {
				return RunIntegrityAuditor(ctx, cfg, logger)
			},
		},
	}
}

// RunIntegrityAuditor runs the periodic missing-identity scan until ctx is cancelled.
func RunIntegrityAuditor(ctx context.Context, cfg *ServiceOrchestrationConfig, logger *slog.Logger) error {
	runner, err := NewIntegrityAuditor(cfg, logger)
	if err != nil {
		return err
	}
	return runner.Run(ctx)
}

// NewIntegrityAuditor builds the auditor from the application configuration.
func NewIntegrityAuditor(cfg *ServiceOrchestrationConfig, logger *slog.Logger) (*auditor.Runner, error) {
	opts := auditor.RunnerOptions{
		DB:      cfg.DB,
		Config:  cfg.Config.Integrity,
		Cutover: cfg.Config.Jobs.IdentityCutover,
		Alerts:  cfg.Services.Observability.Alerts,
		Logger:  logger,
		Metrics: cfg.Services.Observability.metrics(),
	}
	if cfg.Services.Store != nil {
		opts.Tx = cfg.Services.Store
	}
	runner, err := auditor.NewRunner(opts)
	if err != nil {
		return nil, fmt.Errorf("create integrity auditor: %w", err)
	}
	return runner, nil
}
