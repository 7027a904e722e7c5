package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/domain/payment"
	"github.com/target/printbroker-api/internal/domain/pricing"
	apperrors "github.com/target/printbroker-api/internal/errors"
	"github.com/target/printbroker-api/internal/observability/metrics"
	"github.com/target/printbroker-api/internal/observability/statsd"
)

// Payment operation names used for metrics and logs.
const (
	opCustomerPaid      = "customer_paid"
	opCustomerUnpaid    = "customer_unpaid"
	opPartnerPaid       = "partner_paid"
	opPartnerUnpaid     = "partner_unpaid"
	opPartnerNotice     = "partner_notice"
	opDownstreamInvoice = "downstream_invoice"
	opDownstreamPaid    = "downstream_paid"
	opDownstreamUnpaid  = "downstream_unpaid"
)

const defaultAuditListLimit = 200

// PaymentServiceOptions groups dependencies for PaymentService.
type PaymentServiceOptions struct {
	Tx         core.TxManager     // Required: transaction manager
	Financials *FinancialsService // Required: partner amounts come from the job's split
	Notices    core.NoticeSender  // Optional: without it steps are recorded but nothing is delivered
	Config     config.NoticeConfig
	TxTimeout  time.Duration
	Logger     *slog.Logger
	Metrics    statsd.Sink
	Now        func() time.Time
}

// PaymentService runs the four-step payment workflow.
//
// Each step locks the job row, evaluates its guard against the locked state, writes the payment
// columns with one audit row per changed field, and commits. Notices are delivered after commit
// and their outcome is stored in a separate transaction, so a failed notice never undoes a payment.
type PaymentService struct {
	tx         core.TxManager
	financials *FinancialsService
	notices    core.NoticeSender
	cfg        config.NoticeConfig
	txTimeout  time.Duration
	logger     *slog.Logger
	metrics    statsd.Sink
	now        func() time.Time
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(opts PaymentServiceOptions) (*PaymentService, error) {
	if opts.Tx == nil {
		return nil, errors.New("TxManager is required")
	}
	if opts.Financials == nil {
		return nil, errors.New("FinancialsService is required")
	}
	logger := componentLogger(opts.Logger, "payment_service")
	if opts.Notices == nil {
		logger.Info("no notice sender configured; notices will be recorded but not delivered")
	}
	return &PaymentService{
		tx:         opts.Tx,
		financials: opts.Financials,
		notices:    opts.Notices,
		cfg:        opts.Config,
		txTimeout:  opts.TxTimeout,
		logger:     logger,
		metrics:    opts.Metrics,
		now:        utcClock(opts.Now),
	}, nil
}

// MustNewPaymentService constructs a PaymentService and panics on error.
func MustNewPaymentService(opts PaymentServiceOptions) *PaymentService {
	svc, err := NewPaymentService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create PaymentService: %v", err))
	}
	return svc
}

// transition computes the next payment state from the locked job.
type transition func(ctx context.Context, r core.Repos, job *model.Job, s model.PaymentState) (model.PaymentState, error)

type stepResult struct {
	job     *model.Job
	split   *model.ProfitSplit
	changed bool
}

func (s *PaymentService) txOptions(readOnly bool) core.TxOptions {
	return core.TxOptions{ReadOnly: readOnly, Timeout: s.txTimeout}
}

// runStep applies next to the locked job. A transition that changes nothing writes nothing.
func (s *PaymentService) runStep(ctx context.Context, op, jobID, actor string, next transition) (*stepResult, error) {
	var res stepResult
	err := s.tx.WithinTx(ctx, s.txOptions(false), func(ctx context.Context, r core.Repos) error {
		res = stepResult{}
		job, err := r.Jobs.GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		before := job.PaymentState()
		after, err := next(ctx, r, job, before)
		if err != nil {
			return err
		}

		entries := payment.AuditEntries(job.ID, actor, before, after)
		if len(entries) > 0 {
			if job, err = r.Jobs.UpdatePayments(ctx, job.ID, after); err != nil {
				return fmt.Errorf("update payments: %w", err)
			}
			if err := r.Audit.Insert(ctx, entries); err != nil {
				return fmt.Errorf("write audit log: %w", err)
			}
			res.changed = true
		}
		res.job = job
		res.split, err = s.optionalSplit(ctx, r, job)
		return err
	})
	metrics.Emit(s.metrics, metrics.PaymentStepEvent(op, err == nil && !res.changed, err))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if res.changed {
		s.logger.InfoContext(ctx, "payment step recorded",
			"op", op,
			"job_id", res.job.ID,
			"job_no", res.job.JobNo,
			"status", res.job.Status,
			"actor", actor,
		)
	}
	return &res, nil
}

// optionalSplit loads the split for the snapshot. An unpriceable job simply has none.
func (s *PaymentService) optionalSplit(ctx context.Context, r core.Repos, job *model.Job) (*model.ProfitSplit, error) {
	split, err := s.financials.SplitWithin(ctx, r, job)
	if apperrors.IsPrecondition(err) {
		return nil, nil
	}
	return split, err
}

func (s *PaymentService) dateOf(req *model.PaymentRequest) time.Time {
	if req != nil && req.Date != nil {
		return req.Date.UTC()
	}
	return s.now()
}

func overrideOf(req *model.PaymentRequest) *decimal.Decimal {
	if req == nil {
		return nil
	}
	return req.Amount
}

func snapshotOf(res *stepResult) *model.FinancialSnapshot {
	return model.NewFinancialSnapshot(res.job, res.split)
}

// MarkCustomerPaid records step 1. The amount defaults to the sell price; re-recording overwrites.
func (s *PaymentService) MarkCustomerPaid(ctx context.Context, jobID string, req *model.PaymentRequest) (*model.FinancialSnapshot, error) {
	at := s.dateOf(req)
	res, err := s.runStep(ctx, opCustomerPaid, jobID, req.ActorOrDefault(),
		func(_ context.Context, _ core.Repos, job *model.Job, st model.PaymentState) (model.PaymentState, error) {
			return payment.RecordCustomer(st, payment.CustomerAmount(job.SellPrice, overrideOf(req)), at)
		})
	if err != nil {
		return nil, err
	}
	return snapshotOf(res), nil
}

// MarkCustomerUnpaid clears step 1.
func (s *PaymentService) MarkCustomerUnpaid(ctx context.Context, jobID, actor string) (*model.FinancialSnapshot, error) {
	res, err := s.runStep(ctx, opCustomerUnpaid, jobID, actorOrSystem(actor),
		func(_ context.Context, _ core.Repos, _ *model.Job, st model.PaymentState) (model.PaymentState, error) {
			return payment.UnmarkCustomer(st)
		})
	if err != nil {
		return nil, err
	}
	return snapshotOf(res), nil
}

// MarkPartnerPaid records step 2 and then notifies the partner. The guards run before the amount is
// derived so a rejected call has no side effects.
func (s *PaymentService) MarkPartnerPaid(ctx context.Context, jobID string, req *model.PaymentRequest) (*model.FinancialSnapshot, error) {
	at := s.dateOf(req)
	actor := req.ActorOrDefault()
	res, err := s.runStep(ctx, opPartnerPaid, jobID, actor,
		func(ctx context.Context, r core.Repos, job *model.Job, st model.PaymentState) (model.PaymentState, error) {
			if err := payment.CheckPartner(st); err != nil {
				return st, err
			}
			override := overrideOf(req)
			var split *model.ProfitSplit
			if override == nil {
				var err error
				if split, err = s.financials.SplitWithin(ctx, r, job); err != nil {
					return st, err
				}
			}
			return payment.RecordPartner(st, payment.PartnerAmount(split, override), at)
		})
	if err != nil {
		return nil, err
	}
	return s.notifyPartner(ctx, res, actor)
}

// MarkPartnerUnpaid clears step 2.
func (s *PaymentService) MarkPartnerUnpaid(ctx context.Context, jobID, actor string) (*model.FinancialSnapshot, error) {
	res, err := s.runStep(ctx, opPartnerUnpaid, jobID, actorOrSystem(actor),
		func(_ context.Context, _ core.Repos, _ *model.Job, st model.PaymentState) (model.PaymentState, error) {
			return payment.UnmarkPartner(st), nil
		})
	if err != nil {
		return nil, err
	}
	return snapshotOf(res), nil
}

// ResendPartnerNotice delivers the partner notice again for an already recorded step 2.
func (s *PaymentService) ResendPartnerNotice(ctx context.Context, jobID, actor string) (*model.FinancialSnapshot, error) {
	var res stepResult
	err := s.tx.WithinTx(ctx, s.txOptions(true), func(ctx context.Context, r core.Repos) error {
		job, err := r.Jobs.GetByID(ctx, jobID)
		if err != nil {
			return err
		}
		if err := payment.CheckResendPartnerNotice(job.PaymentState()); err != nil {
			return err
		}
		res.job = job
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", payment.OpResendPartnerNotice, err)
	}
	return s.notifyPartner(ctx, &res, actorOrSystem(actor))
}

// notifyPartner delivers the partner notice for a committed step 2 and records the outcome.
func (s *PaymentService) notifyPartner(ctx context.Context, res *stepResult, actor string) (*model.FinancialSnapshot, error) {
	job := res.job
	if s.notices == nil || job.PartnerPaymentDate == nil {
		return snapshotOf(res), nil
	}

	notice := model.PartnerNotice{
		JobID:     job.ID,
		JobNo:     job.JobNo,
		BaseJobID: deref(job.BaseJobID),
		PaidAt:    *job.PartnerPaymentDate,
	}
	if job.PartnerPaymentAmount != nil {
		notice.Amount = *job.PartnerPaymentAmount
	}
	start := time.Now()
	sendErr := s.notices.SendPartnerPaymentNotice(ctx, notice)
	metrics.Emit(s.metrics, metrics.Event{Name: metrics.PartnerNotice, Duration: time.Since(start), Err: sendErr})
	if sendErr != nil {
		s.logger.WarnContext(ctx, "partner notice failed", "job_id", job.ID, "job_no", job.JobNo, "error", sendErr)
	}

	at := s.now()
	recorded, err := s.runStep(context.WithoutCancel(ctx), opPartnerNotice, job.ID, actor,
		func(_ context.Context, _ core.Repos, _ *model.Job, st model.PaymentState) (model.PaymentState, error) {
			// the payment may have been cleared while the notice was in flight
			if !st.PartnerPaid() {
				return st, nil
			}
			return payment.RecordPartnerNotice(st, at, sendErr), nil
		})
	if err != nil {
		s.logger.ErrorContext(ctx, "recording partner notice outcome failed", "job_id", job.ID, "error", err)
		job.ApplyPaymentState(payment.RecordPartnerNotice(job.PaymentState(), at, sendErr))
		return snapshotOf(res), nil
	}
	return snapshotOf(recorded), nil
}

// SendDownstreamInvoice delivers the invoice notice (step 3) and records the last send. Sending is
// always allowed; a failed delivery records nothing and is reported as retryable.
func (s *PaymentService) SendDownstreamInvoice(ctx context.Context, jobID string, req *model.PaymentRequest) (*model.FinancialSnapshot, error) {
	recipient := s.cfg.DefaultRecipient
	if req != nil && req.Recipient != nil && strings.TrimSpace(*req.Recipient) != "" {
		recipient = strings.TrimSpace(*req.Recipient)
	}
	at := s.dateOf(req)

	if s.notices != nil {
		notice, err := s.invoiceNotice(ctx, jobID, recipient, at, overrideOf(req))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opDownstreamInvoice, err)
		}
		if err := s.notices.SendDownstreamInvoice(ctx, *notice); err != nil {
			s.logger.WarnContext(ctx, "downstream invoice failed", "job_id", jobID, "recipient", recipient, "error", err)
			metrics.Emit(s.metrics, metrics.PaymentStepEvent(opDownstreamInvoice, false, err))
			return nil, apperrors.Wrap(err, apperrors.ErrCodeTransient, "downstream invoice delivery failed")
		}
	}

	res, err := s.runStep(ctx, opDownstreamInvoice, jobID, req.ActorOrDefault(),
		func(_ context.Context, _ core.Repos, _ *model.Job, st model.PaymentState) (model.PaymentState, error) {
			return payment.RecordInvoiceSent(st, recipient, at)
		})
	if err != nil {
		return nil, err
	}
	return snapshotOf(res), nil
}

func (s *PaymentService) invoiceNotice(ctx context.Context, jobID, recipient string, at time.Time, override *decimal.Decimal) (*model.InvoiceNotice, error) {
	var notice *model.InvoiceNotice
	err := s.tx.WithinTx(ctx, s.txOptions(true), func(ctx context.Context, r core.Repos) error {
		job, err := r.Jobs.GetByID(ctx, jobID)
		if err != nil {
			return err
		}
		pos, err := r.PurchaseOrders.ListByJob(ctx, jobID)
		if err != nil {
			return err
		}
		amount, err := downstreamAmount(job, pos, override)
		if err != nil {
			// the invoice is informational; an unknown amount is sent as zero
			amount = decimal.Zero
		}
		notice = &model.InvoiceNotice{
			JobID:     job.ID,
			JobNo:     job.JobNo,
			BaseJobID: deref(job.BaseJobID),
			Recipient: recipient,
			Amount:    amount,
			SentAt:    at,
		}
		return nil
	})
	return notice, err
}

// MarkDownstreamPaid records step 4. The amount comes from the partner-to-downstream purchase orders,
// else the tier-1 estimate. No ordering guard relative to the invoice.
func (s *PaymentService) MarkDownstreamPaid(ctx context.Context, jobID string, req *model.PaymentRequest) (*model.FinancialSnapshot, error) {
	at := s.dateOf(req)
	res, err := s.runStep(ctx, opDownstreamPaid, jobID, req.ActorOrDefault(),
		func(ctx context.Context, r core.Repos, job *model.Job, st model.PaymentState) (model.PaymentState, error) {
			pos, err := r.PurchaseOrders.ListByJob(ctx, job.ID)
			if err != nil {
				return st, fmt.Errorf("list purchase orders: %w", err)
			}
			amount, err := downstreamAmount(job, pos, overrideOf(req))
			if err != nil {
				return st, err
			}
			return payment.RecordDownstream(st, amount, at)
		})
	if err != nil {
		return nil, err
	}
	return snapshotOf(res), nil
}

// MarkDownstreamUnpaid clears step 4.
func (s *PaymentService) MarkDownstreamUnpaid(ctx context.Context, jobID, actor string) (*model.FinancialSnapshot, error) {
	res, err := s.runStep(ctx, opDownstreamUnpaid, jobID, actorOrSystem(actor),
		func(_ context.Context, _ core.Repos, _ *model.Job, st model.PaymentState) (model.PaymentState, error) {
			return payment.UnmarkDownstream(st), nil
		})
	if err != nil {
		return nil, err
	}
	return snapshotOf(res), nil
}

func downstreamAmount(job *model.Job, pos []model.PurchaseOrder, override *decimal.Decimal) (decimal.Decimal, error) {
	if override != nil || hasDownstreamOrder(pos) {
		return payment.DownstreamAmount(pos, decimal.Zero, override), nil
	}
	snap, err := pricing.Calculate(pricing.InputForJob(job))
	if err != nil {
		return decimal.Zero, apperrors.ValidationField("amount",
			"amount is required: the job has no downstream purchase order and cannot be priced from the table")
	}
	return payment.DownstreamAmount(nil, snap.Tier1.TotalCost, nil), nil
}

func hasDownstreamOrder(pos []model.PurchaseOrder) bool {
	for i := range pos {
		if pos[i].OriginParty == model.PartyPartner && pos[i].TargetParty == model.PartyDownstream {
			return true
		}
	}
	return false
}

// Snapshot returns the current financial view of a job.
func (s *PaymentService) Snapshot(ctx context.Context, jobID string) (*model.FinancialSnapshot, error) {
	var job *model.Job
	err := s.tx.WithinTx(ctx, s.txOptions(true), func(ctx context.Context, r core.Repos) error {
		var err error
		job, err = r.Jobs.GetByID(ctx, jobID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("financial snapshot: %w", err)
	}
	split, err := s.financials.GetSplit(ctx, jobID)
	if err != nil && !apperrors.IsPrecondition(err) {
		return nil, err
	}
	return model.NewFinancialSnapshot(job, split), nil
}

// ListAudit returns the newest audit rows of a job.
func (s *PaymentService) ListAudit(ctx context.Context, jobID string, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditListLimit
	}
	var entries []model.AuditEntry
	err := s.tx.WithinTx(ctx, s.txOptions(true), func(ctx context.Context, r core.Repos) error {
		if _, err := r.Jobs.GetByID(ctx, jobID); err != nil {
			return err
		}
		var err error
		entries, err = r.Audit.ListByJob(ctx, jobID, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	return entries, nil
}

func actorOrSystem(actor string) string {
	return (&model.PaymentRequest{Actor: actor}).ActorOrDefault()
}
