// Package core defines the ports between the print broker services and their adapters.
package core

import (
	"context"
	"time"

	"github.com/target/printbroker-api/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// Services depend on these interfaces; the data layer provides pgx-backed implementations
// bound to a single transaction.

// Sequence counter names.
const (
	SequenceJobNumber = "job_number"
	SequenceBaseJobID = "base_job_id"
)

// SequenceRepository issues strictly increasing integers from named counters.
type SequenceRepository interface {
	// Next atomically increments the counter and returns the new value.
	Next(ctx context.Context, name string) (int64, error)
	// NextRange reserves n contiguous values and returns the first.
	NextRange(ctx context.Context, name string, n int) (int64, error)
	// Current returns the last issued value without incrementing.
	Current(ctx context.Context, name string) (int64, error)
}

// JobRepository defines job row operations.
type JobRepository interface {
	Insert(ctx context.Context, job *model.Job) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	// GetForUpdate reads the job row and holds a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id string) (*model.Job, error)
	GetByExternalIDForUpdate(ctx context.Context, externalID string) (*model.Job, error)
	UpdateDetails(ctx context.Context, id string, req *model.CreateJobRequest) (*model.Job, error)
	UpdatePayments(ctx context.Context, id string, state model.PaymentState) (*model.Job, error)
	List(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error)
	// ListMissingIdentity returns jobs created at or after cutover lacking a base id or pathway.
	ListMissingIdentity(ctx context.Context, cutover time.Time, limit int) ([]*model.Job, error)
}

// ComponentRepository defines job component operations.
type ComponentRepository interface {
	InsertMany(ctx context.Context, jobID string, in []model.JobComponentInput) ([]model.JobComponent, error)
	ListByJob(ctx context.Context, jobID string) ([]model.JobComponent, error)
}

// PurchaseOrderRepository defines purchase order operations.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, req *model.CreatePurchaseOrderRequest) (*model.PurchaseOrder, error)
	Update(ctx context.Context, id string, req *model.UpdatePurchaseOrderRequest) (*model.PurchaseOrder, error)
	GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error)
	ListByJob(ctx context.Context, jobID string) ([]model.PurchaseOrder, error)
}

// ProfitSplitRepository stores the memoised split, one row per job.
type ProfitSplitRepository interface {
	Upsert(ctx context.Context, split *model.ProfitSplit) (*model.ProfitSplit, error)
	GetByJob(ctx context.Context, jobID string) (*model.ProfitSplit, error)
}

// AuditRepository appends workflow audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entries []model.AuditEntry) error
	ListByJob(ctx context.Context, jobID string, limit int) ([]model.AuditEntry, error)
}

// Repos bundles repositories bound to one transaction.
type Repos struct {
	Sequences      SequenceRepository
	Jobs           JobRepository
	Components     ComponentRepository
	PurchaseOrders PurchaseOrderRepository
	ProfitSplits   ProfitSplitRepository
	Audit          AuditRepository
}

// TxOptions bounds a unit of work. Zero durations mean no limit.
type TxOptions struct {
	ReadOnly bool
	// AcquireTimeout bounds the wait for a pooled connection.
	AcquireTimeout time.Duration
	// Timeout bounds the whole unit of work, including commit.
	Timeout time.Duration
	// StatementTimeout and LockTimeout are applied with SET LOCAL inside the transaction.
	StatementTimeout time.Duration
	LockTimeout      time.Duration
}

// TxManager runs fn inside one database transaction. fn's error rolls everything back.
type TxManager interface {
	WithinTx(ctx context.Context, opts TxOptions, fn func(ctx context.Context, r Repos) error) error
}

// NoticeSender delivers payment workflow notices to external parties.
type NoticeSender interface {
	SendPartnerPaymentNotice(ctx context.Context, notice model.PartnerNotice) error
	SendDownstreamInvoice(ctx context.Context, notice model.InvoiceNotice) error
}
