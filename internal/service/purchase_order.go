package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/domain/model"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

// PurchaseOrderServiceOptions groups dependencies for PurchaseOrderService.
type PurchaseOrderServiceOptions struct {
	Tx         core.TxManager     // Required
	Financials *FinancialsService // Required: split recompute on every write
	Logger     *slog.Logger
}

// PurchaseOrderService writes purchase orders and keeps the job's ProfitSplit in step with them.
type PurchaseOrderService struct {
	tx         core.TxManager
	financials *FinancialsService
	logger     *slog.Logger
}

// NewPurchaseOrderService constructs a PurchaseOrderService.
func NewPurchaseOrderService(opts PurchaseOrderServiceOptions) (*PurchaseOrderService, error) {
	if opts.Tx == nil {
		return nil, errors.New("TxManager is required")
	}
	if opts.Financials == nil {
		return nil, errors.New("FinancialsService is required")
	}
	return &PurchaseOrderService{
		tx:         opts.Tx,
		financials: opts.Financials,
		logger:     componentLogger(opts.Logger, "purchase_order_service"),
	}, nil
}

// MustNewPurchaseOrderService constructs a PurchaseOrderService and panics on error.
func MustNewPurchaseOrderService(opts PurchaseOrderServiceOptions) *PurchaseOrderService {
	svc, err := NewPurchaseOrderService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create PurchaseOrderService: %v", err))
	}
	return svc
}

// PurchaseOrderResult is a written purchase order and the split recomputed from it.
type PurchaseOrderResult struct {
	PurchaseOrder *model.PurchaseOrder `json:"purchase_order"`
	Split         *model.ProfitSplit   `json:"profit_split"`
}

// Create adds a purchase order to a job and recomputes the job's split in the same transaction.
func (s *PurchaseOrderService) Create(ctx context.Context, req *model.CreatePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var res PurchaseOrderResult
	err := s.tx.WithinTx(ctx, s.financials.txOptions(false), func(ctx context.Context, r core.Repos) error {
		job, err := r.Jobs.GetForUpdate(ctx, req.JobID)
		if err != nil {
			return err
		}
		if res.PurchaseOrder, err = r.PurchaseOrders.Create(ctx, req); err != nil {
			return fmt.Errorf("insert purchase order: %w", err)
		}
		res.Split, err = s.financials.RecomputeWithin(ctx, r, job)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}
	s.financials.Invalidate(ctx, req.JobID)

	s.logger.InfoContext(ctx, "purchase order created",
		"job_id", req.JobID,
		"purchase_order_id", res.PurchaseOrder.ID,
		"origin", res.PurchaseOrder.OriginParty,
		"target", res.PurchaseOrder.TargetParty,
		"buy_cost", res.PurchaseOrder.BuyCost.StringFixed(2),
	)
	return &res, nil
}

// Update changes a purchase order. The owning job is locked before the order is written so split
// recomputes for one job never interleave.
func (s *PurchaseOrderService) Update(ctx context.Context, id string, req *model.UpdatePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var res PurchaseOrderResult
	var jobID string
	err := s.tx.WithinTx(ctx, s.financials.txOptions(false), func(ctx context.Context, r core.Repos) error {
		current, err := r.PurchaseOrders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		jobID = current.JobID
		job, err := r.Jobs.GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if res.PurchaseOrder, err = r.PurchaseOrders.Update(ctx, id, req); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		res.Split, err = s.financials.RecomputeWithin(ctx, r, job)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update purchase order %s: %w", id, err)
	}
	s.financials.Invalidate(ctx, jobID)
	return &res, nil
}

// ListByJob returns a job's purchase orders oldest first.
func (s *PurchaseOrderService) ListByJob(ctx context.Context, jobID string) ([]model.PurchaseOrder, error) {
	var pos []model.PurchaseOrder
	err := s.tx.WithinTx(ctx, s.financials.txOptions(true), func(ctx context.Context, r core.Repos) error {
		if _, err := r.Jobs.GetByID(ctx, jobID); err != nil {
			return err
		}
		var err error
		pos, err = r.PurchaseOrders.ListByJob(ctx, jobID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	return pos, nil
}
