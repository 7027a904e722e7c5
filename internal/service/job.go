package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/domain/jobid"
	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/domain/pathway"
	"github.com/target/printbroker-api/internal/domain/pricing"
	apperrors "github.com/target/printbroker-api/internal/errors"
	"github.com/target/printbroker-api/internal/observability/metrics"
	"github.com/target/printbroker-api/internal/observability/notify"
	"github.com/target/printbroker-api/internal/observability/statsd"
	"github.com/target/printbroker-api/internal/service/alerting"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Tx         core.TxManager     // Required: transaction manager
	Config     config.JobsConfig  // Required: creation bounds and identity cutover
	Financials *FinancialsService // Optional: initial split after creation, split on reads
	Alerts     *alerting.Service  // Optional: integrity alert fan-out
	Logger     *slog.Logger       // Optional: structured logger
	Metrics    statsd.Sink        // Optional: metrics sink
}

// JobService creates and reads jobs.
//
// Creation is one unit of work: both sequence counters, the pathway, the job row and its
// components commit together or not at all.
type JobService struct {
	tx         core.TxManager
	cfg        config.JobsConfig
	financials *FinancialsService
	alerts     *alerting.Service
	logger     *slog.Logger
	metrics    statsd.Sink
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Tx == nil {
		return nil, errors.New("TxManager is required")
	}
	if opts.Config.CreateTimeout <= 0 {
		return nil, errors.New("Config.CreateTimeout must be positive")
	}

	logger := componentLogger(opts.Logger, "job_service")
	logger.Debug("JobService initialized",
		"create_timeout", opts.Config.CreateTimeout,
		"acquire_timeout", opts.Config.CreateAcquireTimeout,
		"identity_cutover", opts.Config.IdentityCutover,
	)

	return &JobService{
		tx:         opts.Tx,
		cfg:        opts.Config,
		financials: opts.Financials,
		alerts:     opts.Alerts,
		logger:     logger,
		metrics:    opts.Metrics,
	}, nil
}

// MustNewJobService constructs a new JobService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewJobService(opts JobServiceOptions) *JobService {
	svc, err := NewJobService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create JobService: %v", err))
	}
	return svc
}

func (s *JobService) createTxOptions() core.TxOptions {
	return core.TxOptions{
		AcquireTimeout:   s.cfg.CreateAcquireTimeout,
		Timeout:          s.cfg.CreateTimeout,
		StatementTimeout: s.cfg.CreateTimeout,
		LockTimeout:      s.cfg.LockTimeout,
	}
}

// Create allocates identifiers, classifies and persists one job.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.CreateJobResult, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	var job *model.Job
	err := s.tx.WithinTx(ctx, s.createTxOptions(), func(ctx context.Context, r core.Repos) error {
		var err error
		job, err = s.CreateWithin(ctx, r, req)
		return err
	})
	s.emitCreated(job, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.afterCreate(ctx, job)
	return resultFor(job), nil
}

// CreateBatch creates every request in one transaction. Job numbers and base sequences are each
// allocated as one contiguous range, in request order.
func (s *JobService) CreateBatch(ctx context.Context, reqs []*model.CreateJobRequest) ([]*model.CreateJobResult, error) {
	if len(reqs) == 0 {
		return nil, apperrors.ValidationField("items", "at least one job is required")
	}
	if len(reqs) > s.cfg.MaxBatchSize {
		return nil, apperrors.ValidationField("items",
			fmt.Sprintf("batch of %d exceeds the maximum of %d", len(reqs), s.cfg.MaxBatchSize))
	}
	for i, req := range reqs {
		if req == nil {
			return nil, apperrors.ValidationField("items", fmt.Sprintf("items[%d] is empty", i))
		}
		if err := req.Validate(); err != nil {
			return nil, prefixValidation(err, i)
		}
	}

	start := time.Now()
	jobs := make([]*model.Job, 0, len(reqs))
	err := s.tx.WithinTx(ctx, s.createTxOptions(), func(ctx context.Context, r core.Repos) error {
		jobs = jobs[:0]
		n := len(reqs)
		lastNumber, err := r.Sequences.NextRange(ctx, core.SequenceJobNumber, n)
		if err != nil {
			return fmt.Errorf("allocate job numbers: %w", err)
		}
		lastSeq, err := r.Sequences.NextRange(ctx, core.SequenceBaseJobID, n)
		if err != nil {
			return fmt.Errorf("allocate base sequences: %w", err)
		}
		firstNumber, firstSeq := lastNumber-int64(n)+1, lastSeq-int64(n)+1
		for i, req := range reqs {
			job, err := s.insert(ctx, r, req, firstNumber+int64(i), firstSeq+int64(i))
			if err != nil {
				return prefixValidation(err, i)
			}
			jobs = append(jobs, job)
		}
		return nil
	})
	elapsed := time.Since(start)
	if err != nil {
		s.emitCreated(nil, elapsed, err)
		return nil, fmt.Errorf("create job batch: %w", err)
	}

	out := make([]*model.CreateJobResult, 0, len(jobs))
	for _, job := range jobs {
		s.emitCreated(job, elapsed, nil)
		s.afterCreate(ctx, job)
		out = append(out, resultFor(job))
	}
	s.logger.InfoContext(ctx, "job batch created",
		"count", len(jobs),
		"first_job_no", jobs[0].JobNo,
		"last_job_no", jobs[len(jobs)-1].JobNo,
	)
	return out, nil
}

// CreateWithin allocates one job number and one base sequence and persists the job inside the
// caller's transaction. req must already be validated.
func (s *JobService) CreateWithin(ctx context.Context, r core.Repos, req *model.CreateJobRequest) (*model.Job, error) {
	number, err := r.Sequences.Next(ctx, core.SequenceJobNumber)
	if err != nil {
		return nil, fmt.Errorf("allocate job number: %w", err)
	}
	seq, err := r.Sequences.Next(ctx, core.SequenceBaseJobID)
	if err != nil {
		return nil, fmt.Errorf("allocate base sequence: %w", err)
	}
	return s.insert(ctx, r, req, number, seq)
}

func (s *JobService) insert(ctx context.Context, r core.Repos, req *model.CreateJobRequest, number, seq int64) (*model.Job, error) {
	code := jobid.TypeCode(jobid.Meta{
		MailFormat:     req.MailFormat,
		ComponentCount: len(req.Components),
		JobType:        req.JobType,
	})
	baseID := jobid.Compose(code, seq)
	pw := pathway.Classify(req.RoutingType, pathway.SignalsFromRequest(req))

	job, err := r.Jobs.Insert(ctx, &model.Job{
		JobNumber:   number,
		JobNo:       model.FormatJobNo(number),
		BaseJobID:   &baseID,
		Pathway:     &pw,
		RoutingType: req.RoutingType,
		Title:       req.Title,
		CustomerID:  req.CustomerID,
		VendorID:    req.VendorID,
		ExternalID:  req.ExternalID,
		Quantity:    req.Quantity,
		SizeName:    req.SizeName,
		PaperSource: req.PaperSource,
		SellPrice:   pricing.RoundCents(req.SellPrice),
		MailFormat:  req.MailFormat,
		JobType:     req.JobType,
		Specs:       req.Specs,
		DueDate:     req.DueDate,
		MailDate:    req.MailDate,
		Status:      model.JobStatusActive,
	})
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	if len(req.Components) > 0 {
		comps, err := r.Components.InsertMany(ctx, job.ID, req.Components)
		if err != nil {
			return nil, fmt.Errorf("insert components: %w", err)
		}
		job.Components = comps
	}
	return job, nil
}

// afterCreate stores the estimate split. A job without a priceable size simply has no split yet.
func (s *JobService) afterCreate(ctx context.Context, job *model.Job) {
	s.logger.DebugContext(ctx, "job created",
		"id", job.ID,
		"job_no", job.JobNo,
		"base_job_id", deref(job.BaseJobID),
		"pathway", derefPathway(job.Pathway),
	)
	if s.financials == nil {
		return
	}
	split, err := s.financials.Recompute(ctx, job.ID)
	switch {
	case err == nil:
		job.Split = split
	case apperrors.IsPrecondition(err):
		s.logger.DebugContext(ctx, "no initial split", "job_id", job.ID, "reason", err.Error())
	default:
		s.logger.WarnContext(ctx, "initial split failed", "job_id", job.ID, "error", err)
	}
}

// Get returns a job with its components, pricing snapshot and split. A post-cutover job missing
// its identity is reported as an integrity error and alerted on.
func (s *JobService) Get(ctx context.Context, id string) (*model.Job, error) {
	var job *model.Job
	err := s.tx.WithinTx(ctx, core.TxOptions{ReadOnly: true}, func(ctx context.Context, r core.Repos) error {
		var err error
		if job, err = r.Jobs.GetByID(ctx, id); err != nil {
			return err
		}
		job.Components, err = r.Components.ListByJob(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	if err := s.CheckIdentity(ctx, job); err != nil {
		return nil, err
	}

	if snap, perr := pricing.Calculate(pricing.InputForJob(job)); perr == nil {
		job.Pricing = &snap
	}
	if s.financials != nil {
		split, serr := s.financials.GetSplit(ctx, id)
		switch {
		case serr == nil:
			job.Split = split
		case !apperrors.IsPrecondition(serr):
			s.logger.WarnContext(ctx, "load split failed", "job_id", id, "error", serr)
		}
	}
	return job, nil
}

// CheckIdentity enforces the identity cutover on a loaded job and raises an alert on violation.
func (s *JobService) CheckIdentity(ctx context.Context, job *model.Job) error {
	err := job.CheckIdentity(s.cfg.IdentityCutover)
	if err == nil {
		return nil
	}
	if s.alerts != nil {
		s.alerts.NotifyIntegrity(ctx, notify.IntegrityAlert{
			Kind:    notify.KindMissingIdentity,
			JobID:   job.ID,
			JobNo:   job.JobNo,
			Message: err.Error(),
		})
	} else {
		s.logger.ErrorContext(ctx, "integrity violation", "job_id", job.ID, "error", err)
	}
	return err
}

// List returns jobs newest first. Identity violations are alerted on but still listed.
func (s *JobService) List(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error) {
	var jobs []*model.Job
	err := s.tx.WithinTx(ctx, core.TxOptions{ReadOnly: true}, func(ctx context.Context, r core.Repos) error {
		var err error
		jobs, err = r.Jobs.List(ctx, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	for _, job := range jobs {
		_ = s.CheckIdentity(ctx, job)
	}
	return jobs, nil
}

// CostOrderEligibility is the result of the cost purchase-order precheck.
type CostOrderEligibility struct {
	JobID    string                  `json:"job_id"`
	Eligible bool                    `json:"eligible"`
	Reason   pricing.CostOrderReason `json:"reason,omitempty"`
}

// CostOrderEligibility reports whether the job has enough data to generate its cost order.
func (s *JobService) CostOrderEligibility(ctx context.Context, id string) (*CostOrderEligibility, error) {
	var job *model.Job
	err := s.tx.WithinTx(ctx, core.TxOptions{ReadOnly: true}, func(ctx context.Context, r core.Repos) error {
		var err error
		job, err = r.Jobs.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("cost order eligibility: %w", err)
	}
	ok, reason := pricing.CanGenerateCostOrder(job.Quantity, job.SizeName, job.SellPrice)
	return &CostOrderEligibility{JobID: job.ID, Eligible: ok, Reason: reason}, nil
}

func (s *JobService) emitCreated(job *model.Job, d time.Duration, err error) {
	pw := "unknown"
	if job != nil {
		pw = derefPathway(job.Pathway)
	}
	metrics.Emit(s.metrics, metrics.JobCreatedEvent(pw, d, err))
}

func resultFor(job *model.Job) *model.CreateJobResult {
	return &model.CreateJobResult{
		ID:        job.ID,
		JobNo:     job.JobNo,
		JobNumber: job.JobNumber,
		BaseJobID: deref(job.BaseJobID),
		Pathway:   model.Pathway(derefPathway(job.Pathway)),
		Job:       job,
	}
}

// prefixValidation points a validation error at the batch item that caused it.
func prefixValidation(err error, index int) error {
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeValidation {
		return err
	}
	field := fmt.Sprintf("items[%d]", index)
	if appErr.Field != "" {
		field += "." + appErr.Field
	}
	return apperrors.ValidationField(field, appErr.Message)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefPathway(p *model.Pathway) string {
	if p == nil {
		return ""
	}
	return string(*p)
}
