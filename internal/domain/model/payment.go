//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStep names one step of the payment workflow.
type PaymentStep string

const (
	PaymentStepCustomer          PaymentStep = "customer_payment"
	PaymentStepPartner           PaymentStep = "partner_payment"
	PaymentStepDownstreamInvoice PaymentStep = "downstream_invoice"
	PaymentStepDownstream        PaymentStep = "downstream_payment"
)

// PaymentRequest is the optional input accepted by every payment step.
type PaymentRequest struct {
	Date      *time.Time       `json:"date,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Recipient *string          `json:"recipient,omitempty"`
	Actor     string           `json:"-"`
}

// ActorOrDefault returns the acting principal, falling back to "system".
func (r *PaymentRequest) ActorOrDefault() string {
	if r == nil || strings.TrimSpace(r.Actor) == "" {
		return "system"
	}
	return strings.TrimSpace(r.Actor)
}

// PaymentState is the set of payment columns carried by a job row.
type PaymentState struct {
	CustomerAmount             *decimal.Decimal
	CustomerDate               *time.Time
	PartnerAmount              *decimal.Decimal
	PartnerDate                *time.Time
	PartnerNoticeSentAt        *time.Time
	PartnerNoticeError         *string
	DownstreamInvoiceSentAt    *time.Time
	DownstreamInvoiceRecipient *string
	DownstreamAmount           *decimal.Decimal
	DownstreamDate             *time.Time
	Status                     JobStatus
}

// CustomerPaid reports whether step 1 is recorded.
func (s PaymentState) CustomerPaid() bool { return s.CustomerDate != nil }

// PartnerPaid reports whether step 2 is recorded.
func (s PaymentState) PartnerPaid() bool { return s.PartnerDate != nil }

// DownstreamPaid reports whether step 4 is recorded.
func (s PaymentState) DownstreamPaid() bool { return s.DownstreamDate != nil }

// PaymentState extracts the payment columns of the job.
func (j *Job) PaymentState() PaymentState {
	return PaymentState{
		CustomerAmount:             j.CustomerPaymentAmount,
		CustomerDate:               j.CustomerPaymentDate,
		PartnerAmount:              j.PartnerPaymentAmount,
		PartnerDate:                j.PartnerPaymentDate,
		PartnerNoticeSentAt:        j.PartnerNoticeSentAt,
		PartnerNoticeError:         j.PartnerNoticeError,
		DownstreamInvoiceSentAt:    j.DownstreamInvoiceSentAt,
		DownstreamInvoiceRecipient: j.DownstreamInvoiceRecipient,
		DownstreamAmount:           j.DownstreamPaymentAmount,
		DownstreamDate:             j.DownstreamPaymentDate,
		Status:                     j.Status,
	}
}

// ApplyPaymentState copies s onto the job's payment columns.
func (j *Job) ApplyPaymentState(s PaymentState) {
	j.CustomerPaymentAmount = s.CustomerAmount
	j.CustomerPaymentDate = s.CustomerDate
	j.PartnerPaymentAmount = s.PartnerAmount
	j.PartnerPaymentDate = s.PartnerDate
	j.PartnerNoticeSentAt = s.PartnerNoticeSentAt
	j.PartnerNoticeError = s.PartnerNoticeError
	j.DownstreamInvoiceSentAt = s.DownstreamInvoiceSentAt
	j.DownstreamInvoiceRecipient = s.DownstreamInvoiceRecipient
	j.DownstreamPaymentAmount = s.DownstreamAmount
	j.DownstreamPaymentDate = s.DownstreamDate
	j.Status = s.Status
}

// PaymentRecord is a recorded payment in a financial snapshot.
type PaymentRecord struct {
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

// NoticeRecord is the outcome of the most recent notice send.
type NoticeRecord struct {
	SentAt    *time.Time `json:"sent_at,omitempty"`
	Recipient *string    `json:"recipient,omitempty"`
	Error     *string    `json:"error,omitempty"`
}

// FinancialSnapshot is the payment and profit view of a job returned by every payment step.
type FinancialSnapshot struct {
	JobID             string          `json:"job_id"`
	JobNo             string          `json:"job_no"`
	Status            JobStatus       `json:"status"`
	SellPrice         decimal.Decimal `json:"sell_price"`
	Split             *ProfitSplit    `json:"profit_split,omitempty"`
	CustomerPayment   *PaymentRecord  `json:"customer_payment,omitempty"`
	PartnerPayment    *PaymentRecord  `json:"partner_payment,omitempty"`
	PartnerNotice     *NoticeRecord   `json:"partner_notice,omitempty"`
	DownstreamInvoice *NoticeRecord   `json:"downstream_invoice,omitempty"`
	DownstreamPayment *PaymentRecord  `json:"downstream_payment,omitempty"`
}

// NewFinancialSnapshot builds the snapshot view of a job and its current split.
func NewFinancialSnapshot(j *Job, split *ProfitSplit) *FinancialSnapshot {
	out := &FinancialSnapshot{
		JobID:     j.ID,
		JobNo:     j.JobNo,
		Status:    j.Status,
		SellPrice: j.SellPrice,
		Split:     split,
	}
	out.CustomerPayment = paymentRecord(j.CustomerPaymentAmount, j.CustomerPaymentDate)
	out.PartnerPayment = paymentRecord(j.PartnerPaymentAmount, j.PartnerPaymentDate)
	out.DownstreamPayment = paymentRecord(j.DownstreamPaymentAmount, j.DownstreamPaymentDate)
	if j.PartnerNoticeSentAt != nil || j.PartnerNoticeError != nil {
		out.PartnerNotice = &NoticeRecord{SentAt: j.PartnerNoticeSentAt, Error: j.PartnerNoticeError}
	}
	if j.DownstreamInvoiceSentAt != nil {
		out.DownstreamInvoice = &NoticeRecord{
			SentAt:    j.DownstreamInvoiceSentAt,
			Recipient: j.DownstreamInvoiceRecipient,
		}
	}
	return out
}

func paymentRecord(amount *decimal.Decimal, date *time.Time) *PaymentRecord {
	if date == nil {
		return nil
	}
	rec := &PaymentRecord{Date: *date}
	if amount != nil {
		rec.Amount = *amount
	}
	return rec
}

// PartnerNotice is the payload sent to the partner when a payment is recorded.
type PartnerNotice struct {
	JobID     string          `json:"job_id"`
	JobNo     string          `json:"job_no"`
	BaseJobID string          `json:"base_job_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paid_at"`
}

// InvoiceNotice is the payload sent to the downstream printer for invoicing.
type InvoiceNotice struct {
	JobID     string          `json:"job_id"`
	JobNo     string          `json:"job_no"`
	BaseJobID string          `json:"base_job_id,omitempty"`
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
	SentAt    time.Time       `json:"sent_at"`
}
