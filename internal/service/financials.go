package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/domain/pricing"
	apperrors "github.com/target/printbroker-api/internal/errors"
	"github.com/target/printbroker-api/internal/observability/metrics"
	"github.com/target/printbroker-api/internal/observability/statsd"
	"golang.org/x/sync/singleflight"
)

// FinancialsServiceOptions groups dependencies for FinancialsService.
type FinancialsServiceOptions struct {
	Tx      core.TxManager          // Required: transaction manager
	Cache   core.CacheRepository    // Optional: read-through split cache
	Config  config.FinancialsConfig // Optional: cache TTL and tx timeout
	Logger  *slog.Logger            // Optional: structured logger
	Metrics statsd.Sink             // Optional: metrics sink
	Now     func() time.Time        // Optional: clock override for tests
}

// FinancialsService owns the memoised ProfitSplit of each job.
//
// The database row is authoritative. Every write that changes a split input (sell price or
// purchase order costs) recomputes and upserts the row in the writing transaction, then drops the
// cached copy after commit.
type FinancialsService struct {
	tx      core.TxManager
	cache   core.CacheRepository
	cfg     config.FinancialsConfig
	logger  *slog.Logger
	metrics statsd.Sink
	now     func() time.Time
	fills   singleflight.Group
}

// NewFinancialsService constructs a FinancialsService.
func NewFinancialsService(opts FinancialsServiceOptions) (*FinancialsService, error) {
	if opts.Tx == nil {
		return nil, errors.New("TxManager is required")
	}
	return &FinancialsService{
		tx:      opts.Tx,
		cache:   opts.Cache,
		cfg:     opts.Config,
		logger:  componentLogger(opts.Logger, "financials_service"),
		metrics: opts.Metrics,
		now:     utcClock(opts.Now),
	}, nil
}

// MustNewFinancialsService constructs a FinancialsService and panics on error.
func MustNewFinancialsService(opts FinancialsServiceOptions) *FinancialsService {
	svc, err := NewFinancialsService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create FinancialsService: %v", err))
	}
	return svc
}

func (s *FinancialsService) txOptions(readOnly bool) core.TxOptions {
	return core.TxOptions{ReadOnly: readOnly, Timeout: s.cfg.TxTimeout}
}

// ComputeSplit derives a job's split. Broker purchase orders win; without them the tier-2 estimate
// is used, which needs a priceable size.
func ComputeSplit(job *model.Job, pos []model.PurchaseOrder, at time.Time) (*model.ProfitSplit, error) {
	in, ok := pricing.SplitForPurchaseOrders(job.SellPrice, pos)
	source := model.SplitSourcePurchaseOrders
	if !ok {
		snap, err := pricing.Calculate(pricing.InputForJob(job))
		if err != nil {
			return nil, apperrors.Precondition(
				"job has no broker purchase orders and cannot be priced from the table: "+err.Error(),
				"create_purchase_order")
		}
		in = pricing.SplitForEstimate(job.SellPrice, snap)
		source = model.SplitSourceEstimate
	}
	split := pricing.Split(in)
	split.JobID = job.ID
	split.Source = source
	split.CalculatedAt = at
	return &split, nil
}

// RecomputeWithin recomputes and upserts the split of job inside the caller's transaction.
// Callers must invalidate the cache after commit.
func (s *FinancialsService) RecomputeWithin(ctx context.Context, r core.Repos, job *model.Job) (*model.ProfitSplit, error) {
	pos, err := r.PurchaseOrders.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	split, err := ComputeSplit(job, pos, s.now())
	if err != nil {
		return nil, err
	}
	saved, err := r.ProfitSplits.Upsert(ctx, split)
	if err != nil {
		return nil, fmt.Errorf("upsert profit split: %w", err)
	}
	if !saved.IsHealthy {
		s.logger.WarnContext(ctx, "unhealthy profit split",
			"job_id", job.ID,
			"margin_percent", saved.MarginPercent.String(),
			"warnings", saved.Warnings,
		)
	}
	return saved, nil
}

// SplitWithin returns the stored split, computing it first when none exists yet.
func (s *FinancialsService) SplitWithin(ctx context.Context, r core.Repos, job *model.Job) (*model.ProfitSplit, error) {
	split, err := r.ProfitSplits.GetByJob(ctx, job.ID)
	if err == nil {
		return split, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("get profit split: %w", err)
	}
	return s.RecomputeWithin(ctx, r, job)
}

// Recompute recomputes a job's split in its own transaction. The job row is locked so concurrent
// purchase-order writes serialise behind it.
func (s *FinancialsService) Recompute(ctx context.Context, jobID string) (*model.ProfitSplit, error) {
	start := time.Now()
	var split *model.ProfitSplit
	err := s.tx.WithinTx(ctx, s.txOptions(false), func(ctx context.Context, r core.Repos) error {
		job, err := r.Jobs.GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		split, err = s.RecomputeWithin(ctx, r, job)
		return err
	})
	metrics.Emit(s.metrics, metrics.Event{Name: metrics.SplitRecompute, Duration: time.Since(start), Err: err})
	if err != nil {
		return nil, fmt.Errorf("recompute split: %w", err)
	}
	s.Invalidate(ctx, jobID)
	return split, nil
}

// GetSplit serves the split from cache, falling back to the database. Concurrent misses for the
// same job share one database read.
func (s *FinancialsService) GetSplit(ctx context.Context, jobID string) (*model.ProfitSplit, error) {
	if cached := s.cached(ctx, jobID); cached != nil {
		return cached, nil
	}

	v, err, _ := s.fills.Do(jobID, func() (any, error) {
		var split *model.ProfitSplit
		err := s.tx.WithinTx(ctx, s.txOptions(false), func(ctx context.Context, r core.Repos) error {
			job, err := r.Jobs.GetByID(ctx, jobID)
			if err != nil {
				return err
			}
			split, err = s.SplitWithin(ctx, r, job)
			return err
		})
		if err != nil {
			return nil, err
		}
		s.store(ctx, split)
		return split, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get split: %w", err)
	}
	split, _ := v.(*model.ProfitSplit)
	return split, nil
}

// Invalidate drops the cached split. Failures are logged; the TTL bounds staleness.
func (s *FinancialsService) Invalidate(ctx context.Context, jobID string) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Delete(ctx, core.ProfitSplitKey(jobID)); err != nil {
		s.logger.WarnContext(ctx, "split cache invalidation failed", "job_id", jobID, "error", err)
	}
}

func (s *FinancialsService) cached(ctx context.Context, jobID string) *model.ProfitSplit {
	if s.cache == nil || s.cfg.SplitCacheTTL <= 0 {
		return nil
	}
	raw, err := s.cache.Get(ctx, core.ProfitSplitKey(jobID))
	if err != nil {
		s.logger.WarnContext(ctx, "split cache read failed", "job_id", jobID, "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}
	var split model.ProfitSplit
	if err := json.Unmarshal(raw, &split); err != nil {
		s.logger.WarnContext(ctx, "discarding undecodable cached split", "job_id", jobID, "error", err)
		return nil
	}
	return &split
}

func (s *FinancialsService) store(ctx context.Context, split *model.ProfitSplit) {
	if s.cache == nil || s.cfg.SplitCacheTTL <= 0 || split == nil {
		return
	}
	raw, err := json.Marshal(split)
	if err != nil {
		s.logger.WarnContext(ctx, "encode split for cache", "job_id", split.JobID, "error", err)
		return
	}
	if err := s.cache.Set(ctx, core.ProfitSplitKey(split.JobID), raw, s.cfg.SplitCacheTTL); err != nil {
		s.logger.WarnContext(ctx, "split cache write failed", "job_id", split.JobID, "error", err)
	}
}
