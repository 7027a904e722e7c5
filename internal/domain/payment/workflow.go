// Package payment holds the pure guards and transitions of the four-step payment workflow:
// customer payment, partner payment, downstream invoice notice and downstream payment.
//
// Callers must evaluate these against a job row locked in the same transaction that writes
// the result.
package payment

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/target/printbroker-api/internal/domain/model"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

// Operation names surfaced as hints on precondition and conflict errors.
const (
	OpMarkCustomerPaid    = "mark_customer_paid"
	OpMarkPartnerUnpaid   = "mark_partner_unpaid"
	OpResendPartnerNotice = "resend_partner_notice"
)

func validAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.ValidationField(field, field+" must be non-negative")
	}
	return nil
}

// RecordCustomer sets step 1. Re-recording overwrites the amount and date.
func RecordCustomer(s model.PaymentState, amount decimal.Decimal, at time.Time) (model.PaymentState, error) {
	if err := validAmount("amount", amount); err != nil {
		return s, err
	}
	s.CustomerAmount = &amount
	s.CustomerDate = &at
	s.Status = DeriveStatus(s)
	return s, nil
}

// UnmarkCustomer clears step 1. It refuses while the partner payment that depends on it is recorded.
func UnmarkCustomer(s model.PaymentState) (model.PaymentState, error) {
	if s.PartnerPaid() {
		return s, apperrors.Precondition(
			"cannot mark customer unpaid while partner payment is recorded", OpMarkPartnerUnpaid)
	}
	s.CustomerAmount = nil
	s.CustomerDate = nil
	s.Status = DeriveStatus(s)
	return s, nil
}

// CheckPartner evaluates the step 2 guards in order: customer paid first, then no duplicate.
func CheckPartner(s model.PaymentState) error {
	if !s.CustomerPaid() {
		return apperrors.Precondition("cannot pay partner before customer payment", OpMarkCustomerPaid)
	}
	if s.PartnerPaid() {
		details := map[string]any{"date": s.PartnerDate.UTC()}
		if s.PartnerAmount != nil {
			details["amount"] = *s.PartnerAmount
		}
		return apperrors.Conflict("partner payment already recorded").
			WithHint(OpResendPartnerNotice).
			WithDetails(details)
	}
	return nil
}

// RecordPartner sets step 2 after CheckPartner passes. Notice outcome fields are reset.
func RecordPartner(s model.PaymentState, amount decimal.Decimal, at time.Time) (model.PaymentState, error) {
	if err := CheckPartner(s); err != nil {
		return s, err
	}
	if err := validAmount("amount", amount); err != nil {
		return s, err
	}
	s.PartnerAmount = &amount
	s.PartnerDate = &at
	s.PartnerNoticeSentAt = nil
	s.PartnerNoticeError = nil
	s.Status = DeriveStatus(s)
	return s, nil
}

// UnmarkPartner clears step 2.
func UnmarkPartner(s model.PaymentState) model.PaymentState {
	s.PartnerAmount = nil
	s.PartnerDate = nil
	s.Status = DeriveStatus(s)
	return s
}

// CheckResendPartnerNotice requires a recorded partner payment.
func CheckResendPartnerNotice(s model.PaymentState) error {
	if !s.PartnerPaid() {
		return apperrors.Precondition("no partner payment recorded to send a notice for", "mark_partner_paid")
	}
	return nil
}

// RecordPartnerNotice stores the outcome of a notice send. A nil sendErr records success.
func RecordPartnerNotice(s model.PaymentState, at time.Time, sendErr error) model.PaymentState {
	if sendErr != nil {
		msg := sendErr.Error()
		s.PartnerNoticeError = &msg
		return s
	}
	s.PartnerNoticeSentAt = &at
	s.PartnerNoticeError = nil
	return s
}

// RecordInvoiceSent sets step 3. Always allowed; repeated sends move the timestamp forward.
func RecordInvoiceSent(s model.PaymentState, recipient string, at time.Time) (model.PaymentState, error) {
	if recipient == "" {
		return s, apperrors.ValidationField("recipient", "recipient is required")
	}
	s.DownstreamInvoiceSentAt = &at
	s.DownstreamInvoiceRecipient = &recipient
	return s, nil
}

// RecordDownstream sets step 4. No ordering guard relative to the invoice notice.
func RecordDownstream(s model.PaymentState, amount decimal.Decimal, at time.Time) (model.PaymentState, error) {
	if err := validAmount("amount", amount); err != nil {
		return s, err
	}
	s.DownstreamAmount = &amount
	s.DownstreamDate = &at
	s.Status = DeriveStatus(s)
	return s, nil
}

// UnmarkDownstream clears step 4.
func UnmarkDownstream(s model.PaymentState) model.PaymentState {
	s.DownstreamAmount = nil
	s.DownstreamDate = nil
	s.Status = DeriveStatus(s)
	return s
}

// DeriveStatus is PAID once every party has been paid. Cancelled jobs stay cancelled.
func DeriveStatus(s model.PaymentState) model.JobStatus {
	if s.Status == model.JobStatusCancelled {
		return s.Status
	}
	if s.CustomerPaid() && s.PartnerPaid() && s.DownstreamPaid() {
		return model.JobStatusPaid
	}
	return model.JobStatusActive
}
