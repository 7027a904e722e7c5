package payment

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/printbroker-api/internal/domain/model"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

var (
	day1 = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	day2 = day1.Add(24 * time.Hour)
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fresh() model.PaymentState { return model.PaymentState{Status: model.JobStatusActive} }

func TestCheckPartner_BeforeCustomerIsPrecondition(t *testing.T) {
	s := fresh()
	after, err := RecordPartner(s, money("100"), day1)

	require.Error(t, err)
	assert.True(t, apperrors.IsPrecondition(err))
	app, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, OpMarkCustomerPaid, app.Hint)
	assert.Nil(t, after.PartnerAmount)
	assert.Nil(t, after.PartnerDate)
}

func TestRecordPartner_SecondCallConflicts(t *testing.T) {
	s, err := RecordCustomer(fresh(), money("750"), day1)
	require.NoError(t, err)
	s, err = RecordPartner(s, money("640.00"), day1)
	require.NoError(t, err)

	again, err := RecordPartner(s, money("1.00"), day2)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	app, _ := apperrors.AsAppError(err)
	assert.Equal(t, OpResendPartnerNotice, app.Hint)
	assert.True(t, money("640.00").Equal(app.Details["amount"].(decimal.Decimal)))
	assert.Equal(t, day1, app.Details["date"])
	assert.True(t, money("640.00").Equal(*again.PartnerAmount), "existing amount unchanged")
	assert.Equal(t, day1, *again.PartnerDate)
}

func TestRecordPartner_ClearsPreviousNoticeOutcome(t *testing.T) {
	msg := "old failure"
	s, _ := RecordCustomer(fresh(), money("10"), day1)
	s.PartnerNoticeError = &msg
	s, err := RecordPartner(s, money("5"), day2)
	require.NoError(t, err)
	assert.Nil(t, s.PartnerNoticeError)
	assert.Nil(t, s.PartnerNoticeSentAt)
}

func TestUnmarkCustomer_BlockedByPartner(t *testing.T) {
	s, _ := RecordCustomer(fresh(), money("10"), day1)
	s, _ = RecordPartner(s, money("5"), day1)

	_, err := UnmarkCustomer(s)
	assert.True(t, apperrors.IsPrecondition(err))

	s = UnmarkPartner(s)
	s, err = UnmarkCustomer(s)
	require.NoError(t, err)
	assert.False(t, s.CustomerPaid())
	assert.False(t, s.PartnerPaid())
}

func TestDeriveStatus(t *testing.T) {
	s, _ := RecordCustomer(fresh(), money("10"), day1)
	s, _ = RecordPartner(s, money("5"), day1)
	assert.Equal(t, model.JobStatusActive, s.Status)

	s, _ = RecordDownstream(s, money("3"), day2)
	assert.Equal(t, model.JobStatusPaid, s.Status)

	s = UnmarkDownstream(s)
	assert.Equal(t, model.JobStatusActive, s.Status)

	cancelled := model.PaymentState{Status: model.JobStatusCancelled}
	cancelled, _ = RecordCustomer(cancelled, money("1"), day1)
	assert.Equal(t, model.JobStatusCancelled, cancelled.Status)
}

func TestRecordInvoiceSent_AlwaysAllowed(t *testing.T) {
	s, err := RecordInvoiceSent(fresh(), "ap@jd.example", day1)
	require.NoError(t, err)
	s, err = RecordInvoiceSent(s, "ap@jd.example", day2)
	require.NoError(t, err)
	assert.Equal(t, day2, *s.DownstreamInvoiceSentAt)

	_, err = RecordInvoiceSent(s, "", day2)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRecordDownstream_NoOrderingGuard(t *testing.T) {
	s, err := RecordDownstream(fresh(), money("502.00"), day1)
	require.NoError(t, err)
	assert.True(t, s.DownstreamPaid())
	assert.Nil(t, s.DownstreamInvoiceSentAt)
}

func TestNegativeAmountsRejected(t *testing.T) {
	_, err := RecordCustomer(fresh(), money("-1"), day1)
	assert.True(t, apperrors.IsValidation(err))
	_, err = RecordDownstream(fresh(), money("-1"), day1)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRecordPartnerNotice(t *testing.T) {
	s := RecordPartnerNotice(fresh(), day1, errors.New("connection refused"))
	require.NotNil(t, s.PartnerNoticeError)
	assert.Nil(t, s.PartnerNoticeSentAt)

	s = RecordPartnerNotice(s, day2, nil)
	assert.Nil(t, s.PartnerNoticeError)
	assert.Equal(t, day2, *s.PartnerNoticeSentAt)

	assert.True(t, apperrors.IsPrecondition(CheckResendPartnerNotice(fresh())))
}

func TestAuditEntries_SuppressesNoOps(t *testing.T) {
	s, _ := RecordCustomer(fresh(), money("750"), day1)
	same, _ := RecordCustomer(s, money("750.00"), day1)
	assert.Empty(t, AuditEntries("job-1", "alice", s, same))

	changed, _ := RecordCustomer(s, money("700"), day1)
	entries := AuditEntries("job-1", "alice", s, changed)
	require.Len(t, entries, 1)
	assert.Equal(t, "customer_payment_amount", entries[0].Field)
	assert.Equal(t, "750.00", *entries[0].OldValue)
	assert.Equal(t, "700.00", *entries[0].NewValue)
	assert.Equal(t, "alice", entries[0].Actor)
}

func TestAuditEntries_FirstRecord(t *testing.T) {
	before := fresh()
	after, _ := RecordCustomer(before, money("10"), day1)
	entries := AuditEntries("job-1", "system", before, after)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].OldValue)
	assert.Equal(t, "2025-04-01T09:00:00Z", *entries[1].NewValue)
}

func TestAmounts(t *testing.T) {
	override := money("12.345")
	assert.True(t, money("750").Equal(CustomerAmount(money("750"), nil)))
	assert.True(t, money("12.35").Equal(CustomerAmount(money("750"), &override)))

	split := &model.ProfitSplit{TotalCost: money("529.83"), PartnerShare: money("110.09")}
	assert.True(t, money("639.92").Equal(PartnerAmount(split, nil)))
	assert.True(t, PartnerAmount(nil, nil).IsZero())

	pos := []model.PurchaseOrder{
		{OriginParty: model.PartyBroker, TargetParty: model.PartyPartner, BuyCost: money("529.83")},
		{OriginParty: model.PartyPartner, TargetParty: model.PartyDownstream, BuyCost: money("480.00")},
	}
	assert.True(t, money("480.00").Equal(DownstreamAmount(pos, money("502.00"), nil)))
	assert.True(t, money("502.00").Equal(DownstreamAmount(pos[:1], money("502.00"), nil)))
}
