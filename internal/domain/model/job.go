// Package model defines the core data types shared by the print broker service layers.
//
//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

const maxJobTitleLen = 255

// Pathway is the routing classification that fixes who contracts with whom.
type Pathway string

const (
	// PathwayPartner routes the job through the print partner as intermediary.
	PathwayPartner Pathway = "P1"
	// PathwaySingleVendor contracts a single external vendor.
	PathwaySingleVendor Pathway = "P2"
	// PathwayMultiVendor splits production across several vendors.
	PathwayMultiVendor Pathway = "P3"
)

// Valid reports whether the pathway is one of the three known variants.
func (p Pathway) Valid() bool {
	return p == PathwayPartner || p == PathwaySingleVendor || p == PathwayMultiVendor
}

// RoutingType is the caller's routing choice for a job.
type RoutingType string

const (
	// RoutingPartnerIntermediary sends the job through the partner to its downstream printer.
	RoutingPartnerIntermediary RoutingType = "BRADFORD_JD"
	// RoutingThirdPartyVendor sends the job to one or more external vendors.
	RoutingThirdPartyVendor RoutingType = "THIRD_PARTY_VENDOR"
)

// Valid reports whether the routing type is supported.
func (r RoutingType) Valid() bool {
	return r == RoutingPartnerIntermediary || r == RoutingThirdPartyVendor
}

// PaperSource identifies which party supplies the paper stock.
type PaperSource string

const (
	// PaperSelfSupplied means the intermediary supplies paper and applies its markup.
	PaperSelfSupplied PaperSource = "SELF_SUPPLIED"
	// PaperVendorSupplied means the printing vendor supplies paper at cost.
	PaperVendorSupplied PaperSource = "VENDOR_SUPPLIED"
	// PaperCustomerSupplied means the customer ships its own stock.
	PaperCustomerSupplied PaperSource = "CUSTOMER_SUPPLIED"
)

// Valid reports whether the paper source is supported.
func (p PaperSource) Valid() bool {
	return p == PaperSelfSupplied || p == PaperVendorSupplied || p == PaperCustomerSupplied
}

// JobStatus is the coarse workflow status of a job.
type JobStatus string

const (
	JobStatusActive    JobStatus = "ACTIVE"
	JobStatusPaid      JobStatus = "PAID"
	JobStatusCancelled JobStatus = "CANCELLED"
)

// Valid reports whether the status is supported.
func (s JobStatus) Valid() bool {
	return s == JobStatusActive || s == JobStatusPaid || s == JobStatusCancelled
}

// Job is the central print job record.
type Job struct {
	ID          string           `json:"id"                     db:"id"`
	JobNumber   int64            `json:"job_number"             db:"job_number"`
	JobNo       string           `json:"job_no"                 db:"job_no"`
	BaseJobID   *string          `json:"base_job_id"            db:"base_job_id"`
	Pathway     *Pathway         `json:"pathway"                db:"pathway"`
	RoutingType RoutingType      `json:"routing_type"           db:"routing_type"`
	Title       string           `json:"title"                  db:"title"`
	CustomerID  string           `json:"customer_id"            db:"customer_id"`
	VendorID    *string          `json:"vendor_id,omitempty"    db:"vendor_id"`
	ExternalID  *string          `json:"external_id,omitempty"  db:"external_id"`
	Quantity    int              `json:"quantity"               db:"quantity"`
	SizeName    *string          `json:"size_name,omitempty"    db:"size_name"`
	PaperSource PaperSource      `json:"paper_source"           db:"paper_source"`
	SellPrice   decimal.Decimal  `json:"sell_price"             db:"sell_price"`
	MailFormat  *string          `json:"mail_format,omitempty"  db:"mail_format"`
	JobType     *string          `json:"job_type,omitempty"     db:"job_type"`
	Specs       json.RawMessage  `json:"specs,omitempty"        db:"specs"`
	DueDate     *time.Time       `json:"due_date,omitempty"     db:"due_date"`
	MailDate    *time.Time       `json:"mail_date,omitempty"    db:"mail_date"`
	Status      JobStatus        `json:"status"                 db:"status"`
	CreatedAt   time.Time        `json:"created_at"             db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"             db:"updated_at"`
	Components  []JobComponent   `json:"components,omitempty"   db:"-"`
	Split       *ProfitSplit     `json:"profit_split,omitempty" db:"-"`
	Pricing     *PricingSnapshot `json:"pricing,omitempty"      db:"-"`

	CustomerPaymentAmount      *decimal.Decimal `json:"customer_payment_amount,omitempty"      db:"customer_payment_amount"`
	CustomerPaymentDate        *time.Time       `json:"customer_payment_date,omitempty"        db:"customer_payment_date"`
	PartnerPaymentAmount       *decimal.Decimal `json:"partner_payment_amount,omitempty"       db:"partner_payment_amount"`
	PartnerPaymentDate         *time.Time       `json:"partner_payment_date,omitempty"         db:"partner_payment_date"`
	PartnerNoticeSentAt        *time.Time       `json:"partner_notice_sent_at,omitempty"       db:"partner_notice_sent_at"`
	PartnerNoticeError         *string          `json:"partner_notice_error,omitempty"         db:"partner_notice_error"`
	DownstreamInvoiceSentAt    *time.Time       `json:"downstream_invoice_sent_at,omitempty"   db:"downstream_invoice_sent_at"`
	DownstreamInvoiceRecipient *string          `json:"downstream_invoice_recipient,omitempty" db:"downstream_invoice_recipient"`
	DownstreamPaymentAmount    *decimal.Decimal `json:"downstream_payment_amount,omitempty"    db:"downstream_payment_amount"`
	DownstreamPaymentDate      *time.Time       `json:"downstream_payment_date,omitempty"      db:"downstream_payment_date"`
}

// JobComponent is a named sub-component of a job, optionally produced by a specific vendor.
type JobComponent struct {
	ID            string    `json:"id"                  db:"id"`
	JobID         string    `json:"job_id"              db:"job_id"`
	Name          string    `json:"name"                db:"name"`
	VendorID      *string   `json:"vendor_id,omitempty" db:"vendor_id"`
	OwnedByVendor bool      `json:"owned_by_vendor"     db:"owned_by_vendor"`
	Quantity      *int      `json:"quantity,omitempty"  db:"quantity"`
	CreatedAt     time.Time `json:"created_at"          db:"created_at"`
}

// JobComponentInput describes a sub-component supplied at creation time.
type JobComponentInput struct {
	Name          string  `json:"name"`
	VendorID      *string `json:"vendor_id,omitempty"`
	OwnedByVendor bool    `json:"owned_by_vendor,omitempty"`
	Quantity      *int    `json:"quantity,omitempty"`
}

// CreateJobRequest carries the caller-supplied fields for a new job.
type CreateJobRequest struct {
	Title       string              `json:"title"`
	CustomerID  string              `json:"customer_id"`
	VendorID    *string             `json:"vendor_id,omitempty"`
	Quantity    int                 `json:"quantity"`
	SellPrice   decimal.Decimal     `json:"sell_price"`
	SizeName    *string             `json:"size_name,omitempty"`
	PaperSource PaperSource         `json:"paper_source,omitempty"`
	RoutingType RoutingType         `json:"routing_type,omitempty"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
	MailDate    *time.Time          `json:"mail_date,omitempty"`
	MailFormat  *string             `json:"mail_format,omitempty"`
	JobType     *string             `json:"job_type,omitempty"`
	Specs       json.RawMessage     `json:"specs,omitempty"`
	Components  []JobComponentInput `json:"components,omitempty"`
	// ExternalID links the job to an order in the external ordering portal.
	ExternalID *string `json:"external_id,omitempty"`
}

// Validate checks required fields and normalizes enum defaults in place.
func (r *CreateJobRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return apperrors.ValidationField("title", "title is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Title) > maxJobTitleLen {
		return apperrors.ValidationField("title", "title cannot exceed 255 characters")
	}
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	if r.CustomerID == "" {
		return apperrors.ValidationField("customer_id", "customer_id is required")
	}
	if r.Quantity <= 0 {
		return apperrors.ValidationField("quantity", "quantity must be greater than 0")
	}
	if r.SellPrice.IsNegative() {
		return apperrors.ValidationField("sell_price", "sell_price must be non-negative")
	}

	r.PaperSource = PaperSource(strings.ToUpper(strings.TrimSpace(string(r.PaperSource))))
	if r.PaperSource == "" {
		r.PaperSource = PaperSelfSupplied
	}
	if !r.PaperSource.Valid() {
		return apperrors.ValidationField("paper_source", fmt.Sprintf("invalid paper_source %q", r.PaperSource))
	}

	r.RoutingType = RoutingType(strings.ToUpper(strings.TrimSpace(string(r.RoutingType))))
	if r.RoutingType == "" {
		r.RoutingType = RoutingPartnerIntermediary
	}
	if !r.RoutingType.Valid() {
		return apperrors.ValidationField("routing_type", fmt.Sprintf("invalid routing_type %q", r.RoutingType))
	}

	for i := range r.Components {
		r.Components[i].Name = strings.TrimSpace(r.Components[i].Name)
		if r.Components[i].Name == "" {
			return apperrors.ValidationField("components", fmt.Sprintf("components[%d].name cannot be empty", i))
		}
	}
	if len(r.Specs) > 0 && !json.Valid(r.Specs) {
		return apperrors.ValidationField("specs", "specs must be valid JSON")
	}
	return nil
}

// JobListOptions controls paging and filtering for listing jobs.
type JobListOptions struct {
	Limit      int
	Offset     int
	Pathway    *Pathway
	Status     *JobStatus
	CustomerID *string
}

// CheckIdentity enforces that jobs created at or after cutover carry a base identifier and pathway.
// A zero cutover disables the check.
func (j *Job) CheckIdentity(cutover time.Time) error {
	if cutover.IsZero() || j.CreatedAt.Before(cutover) {
		return nil
	}
	if j.BaseJobID == nil || strings.TrimSpace(*j.BaseJobID) == "" {
		return apperrors.Integrityf("job %s (%s) created %s has no base identifier",
			j.ID, j.JobNo, j.CreatedAt.UTC().Format(time.RFC3339))
	}
	if j.Pathway == nil || !j.Pathway.Valid() {
		return apperrors.Integrityf("job %s (%s) created %s has no pathway",
			j.ID, j.JobNo, j.CreatedAt.UTC().Format(time.RFC3339))
	}
	return nil
}

// FormatJobNo renders the human-facing job number.
func FormatJobNo(n int64) string {
	return fmt.Sprintf("J-%d", n)
}

// CreateJobResult is the identifier bundle returned by job creation.
type CreateJobResult struct {
	ID        string  `json:"id"`
	JobNo     string  `json:"job_no"`
	JobNumber int64   `json:"job_number"`
	BaseJobID string  `json:"base_job_id"`
	Pathway   Pathway `json:"pathway"`
	Job       *Job    `json:"job"`
}
