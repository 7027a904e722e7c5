package payment

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/target/printbroker-api/internal/domain/model"
)

func fmtDecimal(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	v := d.StringFixed(2)
	return &v
}

func fmtTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}

func fmtStatus(s model.JobStatus) *string {
	v := string(s)
	return &v
}

func sameValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// AuditEntries lists one entry per changed payment column. Unchanged columns produce nothing,
// so a no-op step writes no audit rows.
func AuditEntries(jobID, actor string, before, after model.PaymentState) []model.AuditEntry {
	pairs := []struct {
		field    string
		from, to *string
	}{
		{"customer_payment_amount", fmtDecimal(before.CustomerAmount), fmtDecimal(after.CustomerAmount)},
		{"customer_payment_date", fmtTime(before.CustomerDate), fmtTime(after.CustomerDate)},
		{"partner_payment_amount", fmtDecimal(before.PartnerAmount), fmtDecimal(after.PartnerAmount)},
		{"partner_payment_date", fmtTime(before.PartnerDate), fmtTime(after.PartnerDate)},
		{"partner_notice_sent_at", fmtTime(before.PartnerNoticeSentAt), fmtTime(after.PartnerNoticeSentAt)},
		{"partner_notice_error", before.PartnerNoticeError, after.PartnerNoticeError},
		{"downstream_invoice_sent_at", fmtTime(before.DownstreamInvoiceSentAt), fmtTime(after.DownstreamInvoiceSentAt)},
		{"downstream_invoice_recipient", before.DownstreamInvoiceRecipient, after.DownstreamInvoiceRecipient},
		{"downstream_payment_amount", fmtDecimal(before.DownstreamAmount), fmtDecimal(after.DownstreamAmount)},
		{"downstream_payment_date", fmtTime(before.DownstreamDate), fmtTime(after.DownstreamDate)},
		{"status", fmtStatus(before.Status), fmtStatus(after.Status)},
	}

	var out []model.AuditEntry
	for _, p := range pairs {
		if sameValue(p.from, p.to) {
			continue
		}
		out = append(out, model.AuditEntry{
			JobID:    jobID,
			Field:    p.field,
			OldValue: p.from,
			NewValue: p.to,
			Actor:    actor,
		})
	}
	return out
}
