package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/domain/payment"
	apperrors "github.com/target/printbroker-api/internal/errors"
	"github.com/target/printbroker-api/internal/mocks"
	"github.com/target/printbroker-api/internal/observability/metrics"
	"github.com/target/printbroker-api/internal/observability/statsd"
	"github.com/target/printbroker-api/internal/testutil"
	"go.uber.org/mock/gomock"
)

// jobStore backs the job and audit mocks with one in-memory row.
type jobStore struct {
	job     *model.Job
	pos     []model.PurchaseOrder
	audit   []model.AuditEntry
	updates int
}

func (s *jobStore) read() *model.Job {
	cp := *s.job
	return &cp
}

type paymentFixture struct {
	store   *jobStore
	notices *mocks.MockNoticeSender
	metrics *statsd.Recorder
	svc     *PaymentService
}

func newPaymentFixture(t *testing.T, withNotices bool) *paymentFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	tx := mocks.NewMockTxManager(ctrl)
	repos := mocks.NewRepos(ctrl)
	store := &jobStore{
		job: testutil.JobWithPayments("job-1", model.PaymentState{}),
		pos: savedPurchaseOrders("job-1"),
	}
	split, err := ComputeSplit(store.job, store.pos, testutil.TestTime())
	require.NoError(t, err)

	mocks.ExpectTx(tx, repos).AnyTimes()
	repos.Jobs.EXPECT().GetForUpdate(gomock.Any(), "job-1").
		DoAndReturn(func(context.Context, string) (*model.Job, error) { return store.read(), nil }).AnyTimes()
	repos.Jobs.EXPECT().GetByID(gomock.Any(), "job-1").
		DoAndReturn(func(context.Context, string) (*model.Job, error) { return store.read(), nil }).AnyTimes()
	repos.Jobs.EXPECT().UpdatePayments(gomock.Any(), "job-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, s model.PaymentState) (*model.Job, error) {
			store.job.ApplyPaymentState(s)
			store.updates++
			return store.read(), nil
		}).AnyTimes()
	repos.Audit.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entries []model.AuditEntry) error {
			store.audit = append(store.audit, entries...)
			return nil
		}).AnyTimes()
	repos.Audit.EXPECT().ListByJob(gomock.Any(), "job-1", gomock.Any()).
		DoAndReturn(func(context.Context, string, int) ([]model.AuditEntry, error) { return store.audit, nil }).AnyTimes()
	repos.PurchaseOrders.EXPECT().ListByJob(gomock.Any(), "job-1").
		DoAndReturn(func(context.Context, string) ([]model.PurchaseOrder, error) { return store.pos, nil }).AnyTimes()
	repos.ProfitSplits.EXPECT().GetByJob(gomock.Any(), "job-1").Return(split, nil).AnyTimes()

	f := &paymentFixture{store: store, metrics: &statsd.Recorder{}}
	opts := PaymentServiceOptions{
		Tx:         tx,
		Financials: MustNewFinancialsService(FinancialsServiceOptions{Tx: tx}),
		Config:     config.NoticeConfig{DefaultRecipient: "JD"},
		Metrics:    f.metrics,
		Now:        testutil.TestTime,
	}
	if withNotices {
		f.notices = mocks.NewMockNoticeSender(ctrl)
		opts.Notices = f.notices
	}
	f.svc = MustNewPaymentService(opts)
	return f
}

func (f *paymentFixture) payCustomer(t *testing.T) {
	t.Helper()
	_, err := f.svc.MarkCustomerPaid(context.Background(), "job-1", nil)
	require.NoError(t, err)
}

func TestPaymentService_MarkCustomerPaid(t *testing.T) {
	f := newPaymentFixture(t, false)
	date := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	snap, err := f.svc.MarkCustomerPaid(context.Background(), "job-1", &model.PaymentRequest{Date: &date, Actor: "ops@broker"})
	require.NoError(t, err)
	require.NotNil(t, snap.CustomerPayment)
	assert.Equal(t, "750.00", snap.CustomerPayment.Amount.StringFixed(2))
	assert.Equal(t, date, snap.CustomerPayment.Date)
	assert.Equal(t, model.JobStatusActive, snap.Status)
	require.NotNil(t, snap.Split)

	require.Len(t, f.store.audit, 2)
	assert.Equal(t, "customer_payment_amount", f.store.audit[0].Field)
	assert.Equal(t, "ops@broker", f.store.audit[0].Actor)
}

func TestPaymentService_NoopStepWritesNothing(t *testing.T) {
	f := newPaymentFixture(t, false)
	f.payCustomer(t)
	require.Equal(t, 1, f.store.updates)
	audited := len(f.store.audit)

	f.payCustomer(t)
	assert.Equal(t, 1, f.store.updates)
	assert.Len(t, f.store.audit, audited)

	steps := f.metrics.Named(metrics.PaymentStep)
	require.Len(t, steps, 2)
	assert.Equal(t, metrics.ResultSuccess, steps[0].Tags["result"])
	assert.Equal(t, metrics.ResultNoop, steps[1].Tags["result"])
}

func TestPaymentService_PartnerBeforeCustomer(t *testing.T) {
	f := newPaymentFixture(t, true)

	_, err := f.svc.MarkPartnerPaid(context.Background(), "job-1", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsPrecondition(err))
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, payment.OpMarkCustomerPaid, appErr.Hint)

	assert.Nil(t, f.store.job.PartnerPaymentDate)
	assert.Nil(t, f.store.job.PartnerPaymentAmount)
	assert.Zero(t, f.store.updates)
}

func TestPaymentService_MarkPartnerPaid_SendsNotice(t *testing.T) {
	f := newPaymentFixture(t, true)
	f.payCustomer(t)
	f.notices.EXPECT().SendPartnerPaymentNotice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n model.PartnerNotice) error {
			assert.Equal(t, "J-1001", n.JobNo)
			assert.Equal(t, "GEN-1001", n.BaseJobID)
			assert.Equal(t, "639.92", n.Amount.StringFixed(2))
			return nil
		})

	snap, err := f.svc.MarkPartnerPaid(context.Background(), "job-1", nil)
	require.NoError(t, err)
	require.NotNil(t, snap.PartnerPayment)
	assert.Equal(t, "639.92", snap.PartnerPayment.Amount.StringFixed(2))
	require.NotNil(t, snap.PartnerNotice)
	assert.NotNil(t, snap.PartnerNotice.SentAt)
	assert.Nil(t, snap.PartnerNotice.Error)
	assert.Len(t, f.metrics.Named(metrics.PartnerNotice), 1)
}

func TestPaymentService_PartnerNoticeFailureKeepsPayment(t *testing.T) {
	f := newPaymentFixture(t, true)
	f.payCustomer(t)
	f.notices.EXPECT().SendPartnerPaymentNotice(gomock.Any(), gomock.Any()).Return(errors.New("partner endpoint 502"))

	snap, err := f.svc.MarkPartnerPaid(context.Background(), "job-1", nil)
	require.NoError(t, err)
	require.NotNil(t, snap.PartnerPayment)
	require.NotNil(t, snap.PartnerNotice)
	require.NotNil(t, snap.PartnerNotice.Error)
	assert.Contains(t, *snap.PartnerNotice.Error, "partner endpoint 502")
	assert.NotNil(t, f.store.job.PartnerPaymentDate)
	assert.Nil(t, f.store.job.PartnerNoticeSentAt)
}

func TestPaymentService_DuplicatePartnerPaymentConflicts(t *testing.T) {
	f := newPaymentFixture(t, false)
	f.payCustomer(t)
	_, err := f.svc.MarkPartnerPaid(context.Background(), "job-1", &model.PaymentRequest{Amount: testutil.MoneyPtr("600")})
	require.NoError(t, err)

	_, err = f.svc.MarkPartnerPaid(context.Background(), "job-1", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, payment.OpResendPartnerNotice, appErr.Hint)
	existing, ok := appErr.Details["amount"].(decimal.Decimal)
	require.True(t, ok)
	assert.Equal(t, "600.00", existing.StringFixed(2))
	assert.Equal(t, "600.00", f.store.job.PartnerPaymentAmount.StringFixed(2))
}

func TestPaymentService_ResendPartnerNotice(t *testing.T) {
	f := newPaymentFixture(t, true)

	_, err := f.svc.ResendPartnerNotice(context.Background(), "job-1", "")
	assert.True(t, apperrors.IsPrecondition(err))

	f.payCustomer(t)
	gomock.InOrder(
		f.notices.EXPECT().SendPartnerPaymentNotice(gomock.Any(), gomock.Any()).Return(errors.New("timeout")),
		f.notices.EXPECT().SendPartnerPaymentNotice(gomock.Any(), gomock.Any()).Return(nil),
	)
	_, err = f.svc.MarkPartnerPaid(context.Background(), "job-1", nil)
	require.NoError(t, err)
	require.NotNil(t, f.store.job.PartnerNoticeError)

	snap, err := f.svc.ResendPartnerNotice(context.Background(), "job-1", "ops")
	require.NoError(t, err)
	assert.Nil(t, snap.PartnerNotice.Error)
	assert.NotNil(t, snap.PartnerNotice.SentAt)
}

func TestPaymentService_UnmarkCustomerRefusedWhilePartnerPaid(t *testing.T) {
	f := newPaymentFixture(t, false)
	f.payCustomer(t)
	_, err := f.svc.MarkPartnerPaid(context.Background(), "job-1", nil)
	require.NoError(t, err)

	_, err = f.svc.MarkCustomerUnpaid(context.Background(), "job-1", "")
	assert.True(t, apperrors.IsPrecondition(err))

	_, err = f.svc.MarkPartnerUnpaid(context.Background(), "job-1", "")
	require.NoError(t, err)
	snap, err := f.svc.MarkCustomerUnpaid(context.Background(), "job-1", "")
	require.NoError(t, err)
	assert.Nil(t, snap.CustomerPayment)
}

func TestPaymentService_SendDownstreamInvoice(t *testing.T) {
	f := newPaymentFixture(t, true)
	f.notices.EXPECT().SendDownstreamInvoice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n model.InvoiceNotice) error {
			assert.Equal(t, "JD", n.Recipient)
			assert.Equal(t, "502.00", n.Amount.StringFixed(2))
			return nil
		})

	snap, err := f.svc.SendDownstreamInvoice(context.Background(), "job-1", nil)
	require.NoError(t, err)
	require.NotNil(t, snap.DownstreamInvoice)
	assert.Equal(t, "JD", *snap.DownstreamInvoice.Recipient)
	assert.Nil(t, snap.CustomerPayment)
}

func TestPaymentService_SendDownstreamInvoice_FailureRecordsNothing(t *testing.T) {
	f := newPaymentFixture(t, true)
	f.notices.EXPECT().SendDownstreamInvoice(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	_, err := f.svc.SendDownstreamInvoice(context.Background(), "job-1",
		&model.PaymentRequest{Recipient: testutil.StringPtr("ACME Print")})
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
	assert.Nil(t, f.store.job.DownstreamInvoiceSentAt)
	assert.Zero(t, f.store.updates)
}

func TestPaymentService_MarkDownstreamPaid(t *testing.T) {
	t.Run("from purchase orders", func(t *testing.T) {
		f := newPaymentFixture(t, false)
		snap, err := f.svc.MarkDownstreamPaid(context.Background(), "job-1", nil)
		require.NoError(t, err)
		assert.Equal(t, "502.00", snap.DownstreamPayment.Amount.StringFixed(2))
	})

	t.Run("tier one fallback", func(t *testing.T) {
		f := newPaymentFixture(t, false)
		f.store.pos = f.store.pos[:1]
		snap, err := f.svc.MarkDownstreamPaid(context.Background(), "job-1", nil)
		require.NoError(t, err)
		assert.Equal(t, "502.00", snap.DownstreamPayment.Amount.StringFixed(2))
	})

	t.Run("unpriceable without override", func(t *testing.T) {
		f := newPaymentFixture(t, false)
		f.store.pos = nil
		f.store.job.SizeName = nil
		_, err := f.svc.MarkDownstreamPaid(context.Background(), "job-1", nil)
		assert.True(t, apperrors.IsValidation(err))

		snap, err := f.svc.MarkDownstreamPaid(context.Background(), "job-1",
			&model.PaymentRequest{Amount: testutil.MoneyPtr("480.005")})
		require.NoError(t, err)
		assert.Equal(t, "480.01", snap.DownstreamPayment.Amount.StringFixed(2))
	})
}

func TestPaymentService_AllStepsMarkPaid(t *testing.T) {
	f := newPaymentFixture(t, false)
	ctx := context.Background()

	f.payCustomer(t)
	_, err := f.svc.MarkDownstreamPaid(ctx, "job-1", nil)
	require.NoError(t, err)
	snap, err := f.svc.Snapshot(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusActive, snap.Status)

	snap, err = f.svc.MarkPartnerPaid(ctx, "job-1", nil)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPaid, snap.Status)

	snap, err = f.svc.MarkDownstreamUnpaid(ctx, "job-1", "")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusActive, snap.Status)
	assert.NotNil(t, snap.CustomerPayment)
	assert.NotNil(t, snap.PartnerPayment)

	entries, err := f.svc.ListAudit(ctx, "job-1", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}
