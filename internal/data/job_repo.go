package data

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/data/database"
	"github.com/target/printbroker-api/internal/domain/model"
)

const (
	defaultJobListLimit = 50
	maxJobListLimit     = 500
)

// JobRepo provides job row operations bound to one transaction.
type JobRepo struct {
	q     dbtx
	clock TimeProvider
}

var _ core.JobRepository = (*JobRepo)(nil)

var jobColumnList = []string{
	"id", "job_number", "job_no", "base_job_id", "pathway", "routing_type", "title",
	"customer_id", "vendor_id", "external_id", "quantity", "size_name", "paper_source",
	"sell_price", "mail_format", "job_type", "specs", "due_date", "mail_date", "status",
	"created_at", "updated_at",
	"customer_payment_amount", "customer_payment_date",
	"partner_payment_amount", "partner_payment_date",
	"partner_notice_sent_at", "partner_notice_error",
	"downstream_invoice_sent_at", "downstream_invoice_recipient",
	"downstream_payment_amount", "downstream_payment_date",
}

const jobColumns = `
  id, job_number, job_no, base_job_id, pathway, routing_type, title,
  customer_id, vendor_id, external_id, quantity, size_name, paper_source,
  sell_price, mail_format, job_type, specs, due_date, mail_date, status,
  created_at, updated_at,
  customer_payment_amount, customer_payment_date,
  partner_payment_amount, partner_payment_date,
  partner_notice_sent_at, partner_notice_error,
  downstream_invoice_sent_at, downstream_invoice_recipient,
  downstream_payment_amount, downstream_payment_date`

func collectJob(rows pgx.Rows) (*model.Job, error) {
	return pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Job])
}

func (r *JobRepo) queryOne(ctx context.Context, id, q string, args ...any) (*model.Job, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, notFound(err, "job", id)
	}
	job, err := collectJob(rows)
	if err != nil {
		return nil, notFound(err, "job", id)
	}
	return job, nil
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

// Insert writes a new job row. Identity fields must already be assigned.
func (r *JobRepo) Insert(ctx context.Context, job *model.Job) (*model.Job, error) {
	now := r.clock.Now()
	status := job.Status
	if status == "" {
		status = model.JobStatusActive
	}
	q := `
INSERT INTO jobs (
  job_number, job_no, base_job_id, pathway, routing_type, title, customer_id, vendor_id,
  external_id, quantity, size_name, paper_source, sell_price, mail_format, job_type, specs,
  due_date, mail_date, status, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $20)
RETURNING` + jobColumns

	rows, err := r.q.Query(ctx, q,
		job.JobNumber, job.JobNo, job.BaseJobID, job.Pathway, job.RoutingType, job.Title,
		job.CustomerID, job.VendorID, job.ExternalID, job.Quantity, job.SizeName, job.PaperSource,
		job.SellPrice, job.MailFormat, job.JobType, nullJSON(job.Specs),
		job.DueDate, job.MailDate, status, now,
	)
	if err != nil {
		return nil, err
	}
	return collectJob(rows)
}

// GetByID returns the job with the given id.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	uid, err := parseID("job", id)
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, id, `SELECT`+jobColumns+` FROM jobs WHERE id = $1`, uid)
}

// GetForUpdate reads the job and locks its row until the transaction ends.
func (r *JobRepo) GetForUpdate(ctx context.Context, id string) (*model.Job, error) {
	uid, err := parseID("job", id)
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, id, `SELECT`+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, uid)
}

// GetByExternalIDForUpdate locks the job linked to an external order.
func (r *JobRepo) GetByExternalIDForUpdate(ctx context.Context, externalID string) (*model.Job, error) {
	return r.queryOne(ctx, externalID,
		`SELECT`+jobColumns+` FROM jobs WHERE external_id = $1 FOR UPDATE`, externalID)
}

// UpdateDetails replaces the caller-editable fields. Identity, routing, and payment columns are untouched.
func (r *JobRepo) UpdateDetails(ctx context.Context, id string, req *model.CreateJobRequest) (*model.Job, error) {
	uid, err := parseID("job", id)
	if err != nil {
		return nil, err
	}
	q := `
UPDATE jobs SET
  title = $2, customer_id = $3, vendor_id = $4, quantity = $5, size_name = $6,
  paper_source = $7, sell_price = $8, mail_format = $9, job_type = $10, specs = $11,
  due_date = $12, mail_date = $13, updated_at = $14
WHERE id = $1
RETURNING` + jobColumns
	return r.queryOne(ctx, id, q, uid,
		req.Title, req.CustomerID, req.VendorID, req.Quantity, req.SizeName,
		req.PaperSource, req.SellPrice, req.MailFormat, req.JobType, nullJSON(req.Specs),
		req.DueDate, req.MailDate, r.clock.Now(),
	)
}

// UpdatePayments writes the payment columns and status.
func (r *JobRepo) UpdatePayments(ctx context.Context, id string, s model.PaymentState) (*model.Job, error) {
	uid, err := parseID("job", id)
	if err != nil {
		return nil, err
	}
	q := `
UPDATE jobs SET
  customer_payment_amount = $2, customer_payment_date = $3,
  partner_payment_amount = $4, partner_payment_date = $5,
  partner_notice_sent_at = $6, partner_notice_error = $7,
  downstream_invoice_sent_at = $8, downstream_invoice_recipient = $9,
  downstream_payment_amount = $10, downstream_payment_date = $11,
  status = $12, updated_at = $13
WHERE id = $1
RETURNING` + jobColumns
	return r.queryOne(ctx, id, q, uid,
		s.CustomerAmount, s.CustomerDate,
		s.PartnerAmount, s.PartnerDate,
		s.PartnerNoticeSentAt, s.PartnerNoticeError,
		s.DownstreamInvoiceSentAt, s.DownstreamInvoiceRecipient,
		s.DownstreamAmount, s.DownstreamDate,
		s.Status, r.clock.Now(),
	)
}

// List returns jobs newest first, filtered by opts.
func (r *JobRepo) List(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultJobListLimit
	}
	limit = min(limit, maxJobListLimit)

	qopts := []database.ListQueryOption{
		database.WithColumns(jobColumnList...),
		database.WithOrderBy("DESC", "created_at", "id"),
		database.WithLimit(limit),
		database.WithOffset(max(opts.Offset, 0)),
	}
	if opts.Pathway != nil {
		qopts = append(qopts, database.WithCondition(database.WhereCond("pathway", database.Equal, *opts.Pathway)))
	}
	if opts.Status != nil {
		qopts = append(qopts, database.WithCondition(database.WhereCond("status", database.Equal, *opts.Status)))
	}
	if opts.CustomerID != nil {
		qopts = append(qopts, database.WithCondition(database.WhereCond("customer_id", database.Equal, *opts.CustomerID)))
	}
	return r.list(ctx, database.NewListQueryOptions("jobs", qopts...))
}

// ListMissingIdentity returns jobs created at or after cutover that lack a base id or pathway.
func (r *JobRepo) ListMissingIdentity(ctx context.Context, cutover time.Time, limit int) ([]*model.Job, error) {
	if limit <= 0 {
		limit = defaultJobListLimit
	}
	return r.list(ctx, database.NewListQueryOptions("jobs",
		database.WithColumns(jobColumnList...),
		database.WithCondition(database.WhereCond("created_at", database.GreaterThanOrEqual, cutover)),
		database.WithAnyOf(
			database.WhereCond("base_job_id", database.IsNull, nil),
			database.WhereCond("pathway", database.IsNull, nil),
		),
		database.WithOrderBy("ASC", "created_at", "id"),
		database.WithLimit(limit),
	))
}

func (r *JobRepo) list(ctx context.Context, opts *database.ListQueryOptions) ([]*model.Job, error) {
	q, args := database.BuildListQuery(opts)
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	jobs, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Job])
	if err != nil {
		return nil, err
	}
	return jobs, nil
}
