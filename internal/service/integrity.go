package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/observability/metrics"
	"github.com/target/printbroker-api/internal/observability/notify"
	"github.com/target/printbroker-api/internal/observability/statsd"
	"github.com/target/printbroker-api/internal/service/alerting"
)

// IntegrityServiceOptions groups dependencies for IntegrityService.
type IntegrityServiceOptions struct {
	Tx      core.TxManager         // Required: transaction manager
	Alerts  *alerting.Service      // Optional: alert fan-out; violations are always logged
	Config  config.IntegrityConfig // Required: interval and batch size
	Cutover time.Time              // Required: jobs created at or after this must carry identity
	Logger  *slog.Logger           // Optional: structured logger
	Metrics statsd.Sink            // Optional: metrics sink
}

// IntegrityService finds post-cutover jobs missing their base identifier or pathway.
//
// Violations are never patched. Each one is logged at ERROR and raised as an alert so an operator
// can investigate how the row was written.
type IntegrityService struct {
	tx      core.TxManager
	alerts  *alerting.Service
	cfg     config.IntegrityConfig
	cutover time.Time
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewIntegrityService constructs a new IntegrityService.
func NewIntegrityService(opts IntegrityServiceOptions) (*IntegrityService, error) {
	if opts.Tx == nil {
		return nil, errors.New("TxManager is required")
	}
	if opts.Cutover.IsZero() {
		return nil, errors.New("identity cutover is required")
	}
	if opts.Config.Interval <= 0 {
		return nil, errors.New("Config.Interval must be positive")
	}

	logger := componentLogger(opts.Logger, "integrity_service")
	logger.Debug("IntegrityService initialized",
		"interval", opts.Config.Interval,
		"batch_size", opts.Config.BatchSize,
		"cutover", opts.Cutover,
	)
	return &IntegrityService{
		tx:      opts.Tx,
		alerts:  opts.Alerts,
		cfg:     opts.Config,
		cutover: opts.Cutover,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// MustNewIntegrityService constructs a new IntegrityService and panics on error.
func MustNewIntegrityService(opts IntegrityServiceOptions) *IntegrityService {
	svc, err := NewIntegrityService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create IntegrityService: %v", err))
	}
	return svc
}

// IntegrityReport is the outcome of one scan.
type IntegrityReport struct {
	Cutover    time.Time    `json:"cutover"`
	ScannedAt  time.Time    `json:"scanned_at"`
	Violations []*model.Job `json:"violations"`
	// Truncated is set when the batch limit was hit and more violations may exist.
	Truncated bool `json:"truncated"`
}

// Scan lists violating jobs and raises one alert per job.
func (s *IntegrityService) Scan(ctx context.Context) (*IntegrityReport, error) {
	start := time.Now()
	var jobs []*model.Job
	err := s.tx.WithinTx(ctx, core.TxOptions{ReadOnly: true}, func(ctx context.Context, r core.Repos) error {
		var err error
		jobs, err = r.Jobs.ListMissingIdentity(ctx, s.cutover, s.cfg.BatchSize)
		return err
	})
	metrics.Emit(s.metrics, metrics.Event{Name: metrics.IntegrityScan, Duration: time.Since(start), Err: err})
	if err != nil {
		return nil, fmt.Errorf("integrity scan: %w", err)
	}
	if s.metrics != nil {
		s.metrics.Gauge(metrics.IntegrityScan+".violations", float64(len(jobs)), nil)
	}

	report := &IntegrityReport{
		Cutover:    s.cutover,
		ScannedAt:  time.Now().UTC(),
		Violations: jobs,
		Truncated:  len(jobs) >= s.cfg.BatchSize,
	}
	for _, job := range jobs {
		s.raise(ctx, job)
	}
	if len(jobs) > 0 {
		s.logger.ErrorContext(ctx, "integrity scan found violations",
			"count", len(jobs),
			"truncated", report.Truncated,
			"cutover", s.cutover,
		)
	} else {
		s.logger.DebugContext(ctx, "integrity scan clean", "cutover", s.cutover)
	}
	return report, nil
}

func (s *IntegrityService) raise(ctx context.Context, job *model.Job) {
	err := job.CheckIdentity(s.cutover)
	if err == nil {
		return
	}
	if s.alerts == nil {
		s.logger.ErrorContext(ctx, "integrity violation", "job_id", job.ID, "job_no", job.JobNo, "error", err)
		return
	}
	s.alerts.NotifyIntegrity(ctx, notify.IntegrityAlert{
		Kind:    notify.KindMissingIdentity,
		JobID:   job.ID,
		JobNo:   job.JobNo,
		Message: err.Error(),
		Details: map[string]string{
			"created_at": job.CreatedAt.UTC().Format(time.RFC3339),
			"source":     "integrity_auditor",
		},
	})
}

// Run scans at the configured interval until ctx is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *IntegrityService) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting integrity auditor", "interval", s.cfg.Interval)

	// Add jitter so several instances started together do not scan in lockstep
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	if _, err := s.Scan(ctx); err != nil {
		s.logScanError(ctx, err)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "integrity auditor stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Scan(ctx); err != nil {
				s.logScanError(ctx, err)
			}
		}
	}
}

// waitWithJitter adds a random delay up to 10% of the interval.
func (s *IntegrityService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.cfg.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}
	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

func (s *IntegrityService) logScanError(ctx context.Context, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.DebugContext(ctx, "integrity scan interrupted", "error", err)
		return
	}
	s.logger.ErrorContext(ctx, "integrity scan failed", "error", err)
}
