package data

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/domain/model"
)

// PurchaseOrderRepo stores purchase orders.
type PurchaseOrderRepo struct {
	q     dbtx
	clock TimeProvider
}

var _ core.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseOrderColumns = `
  id, job_id, origin_party, target_party, target_vendor_id, buy_cost, paper_cost,
  paper_markup, description, created_at, updated_at`

func (r *PurchaseOrderRepo) queryOne(ctx context.Context, id, q string, args ...any) (*model.PurchaseOrder, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, notFound(err, "purchase order", id)
	}
	po, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.PurchaseOrder])
	if err != nil {
		return nil, notFound(err, "purchase order", id)
	}
	return po, nil
}

// Create inserts a purchase order for req.JobID.
func (r *PurchaseOrderRepo) Create(ctx context.Context, req *model.CreatePurchaseOrderRequest) (*model.PurchaseOrder, error) {
	jobID, err := parseID("job", req.JobID)
	if err != nil {
		return nil, err
	}
	now := r.clock.Now()
	rows, err := r.q.Query(ctx, `
INSERT INTO purchase_orders (
  job_id, origin_party, target_party, target_vendor_id, buy_cost, paper_cost, paper_markup,
  description, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
RETURNING`+purchaseOrderColumns,
		jobID, req.OriginParty, req.TargetParty, req.TargetVendorID, req.BuyCost, req.PaperCost,
		req.PaperMarkup, req.Description, now,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.PurchaseOrder])
}

// Update replaces the fields set in req and keeps the rest.
func (r *PurchaseOrderRepo) Update(ctx context.Context, id string, req *model.UpdatePurchaseOrderRequest) (*model.PurchaseOrder, error) {
	uid, err := parseID("purchase order", id)
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, id, `
UPDATE purchase_orders SET
  target_vendor_id = COALESCE($2, target_vendor_id),
  buy_cost = COALESCE($3, buy_cost),
  paper_cost = COALESCE($4, paper_cost),
  paper_markup = COALESCE($5, paper_markup),
  description = COALESCE($6, description),
  updated_at = $7
WHERE id = $1
RETURNING`+purchaseOrderColumns,
		uid, req.TargetVendorID, req.BuyCost, req.PaperCost, req.PaperMarkup, req.Description, r.clock.Now(),
	)
}

// GetByID returns one purchase order.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	uid, err := parseID("purchase order", id)
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, id, `SELECT`+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1`, uid)
}

// ListByJob returns a job's purchase orders oldest first.
func (r *PurchaseOrderRepo) ListByJob(ctx context.Context, jobID string) ([]model.PurchaseOrder, error) {
	uid, err := parseID("job", jobID)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx,
		`SELECT`+purchaseOrderColumns+` FROM purchase_orders WHERE job_id = $1 ORDER BY created_at, id`, uid)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.PurchaseOrder])
}
