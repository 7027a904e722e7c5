// Package alerting fans integrity alerts out to every configured sink.
package alerting

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/observability/metrics"
	"github.com/target/printbroker-api/internal/observability/notify"
	"github.com/target/printbroker-api/internal/observability/statsd"
)

// SinkRegistration pairs a sink with a name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the alerting service.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
	// Cache suppresses repeats of the same kind for the same job within SuppressFor. Optional.
	Cache       core.CacheRepository
	SuppressFor time.Duration
	Metrics     statsd.Sink
	Now         func() time.Time
}

// Service dispatches integrity alerts.
type Service struct {
	logger      *slog.Logger
	sinks       []SinkRegistration
	cache       core.CacheRepository
	suppressFor time.Duration
	metrics     statsd.Sink
	now         func() time.Time
}

// NewService constructs an alerting service. Nil sinks are skipped.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		if entry.Name == "" {
			entry.Name = "sink"
		}
		sinks = append(sinks, entry)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		logger:      logger.With("component", "alerting"),
		sinks:       sinks,
		cache:       opts.Cache,
		suppressFor: opts.SuppressFor,
		metrics:     opts.Metrics,
		now:         now,
	}
}

// NotifyIntegrity logs the violation at ERROR and delivers it to every sink. Delivery failures are
// logged, never returned: alerting must not change the outcome of the request that found the problem.
func (s *Service) NotifyIntegrity(ctx context.Context, alert notify.IntegrityAlert) {
	if alert.Severity == "" {
		alert.Severity = notify.SeverityCritical
	}
	if alert.OccurredAt.IsZero() {
		alert.OccurredAt = s.now().UTC()
	}

	s.logger.ErrorContext(ctx, "integrity violation",
		"kind", alert.Kind,
		"job_id", alert.JobID,
		"job_no", alert.JobNo,
		"message", alert.Message,
	)
	metrics.Emit(s.metrics, metrics.Event{
		Name:   metrics.IntegrityViolation,
		Result: metrics.ResultError,
		Tags:   map[string]string{"kind": alert.Kind},
	})

	if len(s.sinks) == 0 || s.suppressed(ctx, alert) {
		return
	}

	var wg sync.WaitGroup
	for _, entry := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := entry.Sink.SendIntegrityAlert(ctx, alert); err != nil {
				s.logger.ErrorContext(ctx, "integrity alert delivery failed",
					"sink", entry.Name,
					"job_id", alert.JobID,
					"kind", alert.Kind,
					"error", err,
				)
			}
		}()
	}
	wg.Wait()
}

// suppressed claims the alert's key. A cache failure never suppresses.
func (s *Service) suppressed(ctx context.Context, alert notify.IntegrityAlert) bool {
	if s.cache == nil || s.suppressFor <= 0 || alert.JobID == "" {
		return false
	}
	claimed, err := s.cache.SetIfNotExists(ctx, core.AlertKey(alert.Kind, alert.JobID),
		[]byte(alert.OccurredAt.Format(time.RFC3339)), s.suppressFor)
	if err != nil {
		s.logger.WarnContext(ctx, "alert suppression check failed", "error", err)
		return false
	}
	if !claimed {
		s.logger.DebugContext(ctx, "integrity alert suppressed", "job_id", alert.JobID, "kind", alert.Kind)
	}
	return !claimed
}

// Enabled reports whether any sink is registered.
func (s *Service) Enabled() bool {
	return len(s.sinks) > 0
}
