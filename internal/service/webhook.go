package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/data/cryptoutil"
	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/domain/pricing"
	apperrors "github.com/target/printbroker-api/internal/errors"
	"github.com/target/printbroker-api/internal/observability/metrics"
	"github.com/target/printbroker-api/internal/observability/statsd"
)

var (
	// ErrWebhookDisabled is returned when no shared secret is configured.
	ErrWebhookDisabled = errors.New("webhooks are disabled")
	// ErrWebhookUnauthorized is returned when the shared secret does not match.
	ErrWebhookUnauthorized = errors.New("webhook secret mismatch")
)

// Webhook outcomes reported in metrics.
const (
	webhookCreated   = "created"
	webhookUpdated   = "updated"
	webhookDuplicate = "duplicate"
	webhookRejected  = "rejected"
)

// WebhookServiceOptions groups dependencies for WebhookService.
type WebhookServiceOptions struct {
	Tx         core.TxManager       // Required
	Jobs       *JobService          // Required: identity allocation for new jobs
	Financials *FinancialsService   // Required: split recompute on updates
	Cache      core.CacheRepository // Optional: delivery dedupe
	Config     config.WebhookConfig
	Logger     *slog.Logger
	Metrics    statsd.Sink
}

// WebhookService ingests order webhooks from the ordering portal and upserts jobs by external id.
type WebhookService struct {
	tx         core.TxManager
	jobs       *JobService
	financials *FinancialsService
	cache      core.CacheRepository
	cfg        config.WebhookConfig
	mapper     *payloadMapper
	logger     *slog.Logger
	metrics    statsd.Sink
}

// NewWebhookService constructs a WebhookService. Every mapping expression is compiled here.
func NewWebhookService(opts WebhookServiceOptions) (*WebhookService, error) {
	if opts.Tx == nil {
		return nil, errors.New("TxManager is required")
	}
	if opts.Jobs == nil || opts.Financials == nil {
		return nil, errors.New("JobService and FinancialsService are required")
	}
	mapping := opts.Config.Mapping
	if len(mapping) == 0 {
		mapping = config.DefaultWebhookMapping()
	}
	mapper, err := newPayloadMapper(mapping)
	if err != nil {
		return nil, err
	}
	return &WebhookService{
		tx:         opts.Tx,
		jobs:       opts.Jobs,
		financials: opts.Financials,
		cache:      opts.Cache,
		cfg:        opts.Config,
		mapper:     mapper,
		logger:     componentLogger(opts.Logger, "webhook_service"),
		metrics:    opts.Metrics,
	}, nil
}

// MustNewWebhookService constructs a WebhookService and panics on error.
func MustNewWebhookService(opts WebhookServiceOptions) *WebhookService {
	svc, err := NewWebhookService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create WebhookService: %v", err))
	}
	return svc
}

// Enabled reports whether deliveries are accepted.
func (s *WebhookService) Enabled() bool { return s.cfg.Enabled() }

// WebhookDelivery is one inbound delivery.
type WebhookDelivery struct {
	Secret     string
	DeliveryID string
	Body       []byte
}

// WebhookResult reports what a delivery did.
type WebhookResult struct {
	Created   bool       `json:"created"`
	Duplicate bool       `json:"duplicate"`
	Job       *model.Job `json:"job,omitempty"`
}

// Handle authenticates, deduplicates, maps and upserts one delivery.
func (s *WebhookService) Handle(ctx context.Context, d WebhookDelivery) (*WebhookResult, error) {
	if !s.cfg.Enabled() {
		return nil, ErrWebhookDisabled
	}
	if !cryptoutil.SecretEqual(s.cfg.Secret, d.Secret) {
		s.emit(webhookRejected, ErrWebhookUnauthorized)
		return nil, ErrWebhookUnauthorized
	}

	deliveryID := strings.TrimSpace(d.DeliveryID)
	claimed, dup := s.claim(ctx, deliveryID)
	if dup {
		s.logger.InfoContext(ctx, "duplicate webhook delivery ignored", "delivery_id", deliveryID)
		s.emit(webhookDuplicate, nil)
		return &WebhookResult{Duplicate: true}, nil
	}

	res, err := s.process(ctx, d.Body)
	if err != nil {
		if claimed {
			s.release(ctx, deliveryID)
		}
		s.emit(webhookRejected, err)
		return nil, err
	}

	outcome := webhookUpdated
	if res.Created {
		outcome = webhookCreated
	}
	s.emit(outcome, nil)
	s.logger.InfoContext(ctx, "webhook processed",
		"delivery_id", deliveryID,
		"outcome", outcome,
		"job_id", res.Job.ID,
		"job_no", res.Job.JobNo,
		"external_id", deref(res.Job.ExternalID),
	)
	return res, nil
}

// claim marks the delivery as seen. Without a cache or an id every delivery is processed; a cache
// failure also lets the delivery through because the upsert is idempotent by external id.
func (s *WebhookService) claim(ctx context.Context, deliveryID string) (claimed, duplicate bool) {
	if s.cache == nil || deliveryID == "" {
		return false, false
	}
	ok, err := s.cache.SetIfNotExists(ctx, core.WebhookDeliveryKey(deliveryID), []byte("1"), s.cfg.DedupeTTL)
	if err != nil {
		s.logger.WarnContext(ctx, "webhook dedupe unavailable", "delivery_id", deliveryID, "error", err)
		return false, false
	}
	return ok, !ok
}

func (s *WebhookService) release(ctx context.Context, deliveryID string) {
	if _, err := s.cache.Delete(ctx, core.WebhookDeliveryKey(deliveryID)); err != nil {
		s.logger.WarnContext(ctx, "release webhook delivery claim", "delivery_id", deliveryID, "error", err)
	}
}

func (s *WebhookService) process(ctx context.Context, body []byte) (*WebhookResult, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, apperrors.Validationf("webhook body is not valid JSON: %v", err)
	}

	req, err := s.mapper.Map(payload)
	if err != nil {
		return nil, err
	}
	if req.ExternalID == nil {
		return nil, apperrors.ValidationField("external_id", "payload does not carry an external order id")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.SellPrice = pricing.RoundCents(req.SellPrice)

	res, err := s.upsert(ctx, req)
	// a concurrent delivery for the same order won the insert; the retry takes the update path
	if apperrors.IsConflict(err) {
		res, err = s.upsert(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert job for external order %s: %w", *req.ExternalID, err)
	}

	if res.Created {
		s.jobs.afterCreate(ctx, res.Job)
	} else {
		s.financials.Invalidate(ctx, res.Job.ID)
	}
	return res, nil
}

func (s *WebhookService) upsert(ctx context.Context, req *model.CreateJobRequest) (*WebhookResult, error) {
	var res WebhookResult
	err := s.tx.WithinTx(ctx, s.jobs.createTxOptions(), func(ctx context.Context, r core.Repos) error {
		res = WebhookResult{}
		existing, err := r.Jobs.GetByExternalIDForUpdate(ctx, *req.ExternalID)
		switch {
		case apperrors.IsNotFound(err):
			res.Job, err = s.jobs.CreateWithin(ctx, r, req)
			res.Created = err == nil
			return err
		case err != nil:
			return err
		}

		if res.Job, err = r.Jobs.UpdateDetails(ctx, existing.ID, req); err != nil {
			return fmt.Errorf("update job: %w", err)
		}
		split, err := s.financials.RecomputeWithin(ctx, r, res.Job)
		switch {
		case err == nil:
			res.Job.Split = split
		case !apperrors.IsPrecondition(err):
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *WebhookService) emit(outcome string, err error) {
	ev := metrics.Event{
		Name: metrics.WebhookDelivery,
		Err:  err,
		Tags: map[string]string{"outcome": outcome},
	}
	if outcome == webhookDuplicate {
		ev.Result = metrics.ResultNoop
	}
	metrics.Emit(s.metrics, ev)
}
