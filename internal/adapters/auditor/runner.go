// Package auditor runs the periodic job identity integrity scan as a service mode.
package auditor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/data"
	"github.com/target/printbroker-api/internal/observability/statsd"
	"github.com/target/printbroker-api/internal/service"
	"github.com/target/printbroker-api/internal/service/alerting"
)

// Runner owns an IntegrityService and drives its loop.
type Runner struct {
	svc    *service.IntegrityService
	logger *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	DB      *sql.DB
	Config  config.IntegrityConfig
	Cutover time.Time
	Alerts  *alerting.Service
	Logger  *slog.Logger
	Metrics statsd.Sink

	// Tx replaces the database-backed transaction manager, mainly for tests.
	Tx core.TxManager
}

// NewRunner creates an auditor runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.DB == nil && opts.Tx == nil {
		return nil, errors.New("database connection is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	tx := opts.Tx
	if tx == nil {
		tx = data.NewStore(opts.DB, data.StoreOptions{Logger: opts.Logger})
	}
	svc, err := service.NewIntegrityService(service.IntegrityServiceOptions{
		Tx:      tx,
		Alerts:  opts.Alerts,
		Config:  opts.Config,
		Cutover: opts.Cutover,
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("wire integrity service: %w", err)
	}
	return &Runner{svc: svc, logger: opts.Logger}, nil
}

// Run scans until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting integrity auditor")
	return r.svc.Run(ctx)
}

// ScanOnce runs a single scan, used by the admin CLI.
func (r *Runner) ScanOnce(ctx context.Context) (*service.IntegrityReport, error) {
	return r.svc.Scan(ctx)
}
