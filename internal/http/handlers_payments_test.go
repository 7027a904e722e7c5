package httpx

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/domain/payment"
	apperrors "github.com/target/printbroker-api/internal/errors"
	"github.com/target/printbroker-api/internal/mocks"
	"github.com/target/printbroker-api/internal/testutil"
	"go.uber.org/mock/gomock"
)

func TestMarkPartnerPaid_BeforeCustomerIs412(t *testing.T) {
	f := newAPIFixture(t)
	mocks.ExpectTx(f.tx, f.repos)
	f.repos.Jobs.EXPECT().GetForUpdate(gomock.Any(), "job-1").
		Return(testutil.JobWithPayments("job-1", model.PaymentState{}), nil)

	w := f.do(t, http.MethodPost, "/api/jobs/job-1/payments/partner", nil)
	require.Equal(t, http.StatusPreconditionFailed, w.Code, w.Body.String())
	body := decodeBody[errorBody](t, w)
	assert.Equal(t, "precondition", body.Error)
	assert.Equal(t, payment.OpMarkCustomerPaid, body.Hint)
}

func TestMarkCustomerPaid_RecordsActor(t *testing.T) {
	f := newAPIFixture(t)
	mocks.ExpectTx(f.tx, f.repos)
	job := testutil.JobWithPayments("job-1", model.PaymentState{})
	f.repos.Jobs.EXPECT().GetForUpdate(gomock.Any(), "job-1").Return(job, nil)
	f.repos.Jobs.EXPECT().UpdatePayments(gomock.Any(), "job-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, s model.PaymentState) (*model.Job, error) {
			out := *job
			out.ApplyPaymentState(s)
			return &out, nil
		})
	f.repos.Audit.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entries []model.AuditEntry) error {
			require.NotEmpty(t, entries)
			for _, e := range entries {
				assert.Equal(t, "ops@example.com", e.Actor)
			}
			return nil
		})
	f.repos.ProfitSplits.EXPECT().GetByJob(gomock.Any(), "job-1").Return(nil, apperrors.NotFound("no split"))
	f.repos.PurchaseOrders.EXPECT().ListByJob(gomock.Any(), "job-1").Return(nil, nil)
	f.repos.ProfitSplits.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *model.ProfitSplit) (*model.ProfitSplit, error) { return s, nil })

	w := f.do(t, http.MethodPost, "/api/jobs/job-1/payments/customer", nil, HeaderActor, "ops@example.com")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	snap := decodeBody[map[string]any](t, w)
	cp, ok := snap["customer_payment"].(map[string]any)
	require.True(t, ok, "customer payment missing: %v", snap)
	assert.InDelta(t, 750.0, cp["amount"], 0.0001)
	split, ok := snap["profit_split"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 110.09, split["partner_share"], 0.0001)
}

func TestMarkCustomerPaid_RejectsUnknownFields(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/jobs/job-1/payments/customer", `{"amount":1,"actor":"x"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkPartnerUnpaid_NotFound(t *testing.T) {
	f := newAPIFixture(t)
	mocks.ExpectTx(f.tx, f.repos)
	f.repos.Jobs.EXPECT().GetForUpdate(gomock.Any(), "nope").Return(nil, apperrors.NotFound("job not found"))

	w := f.do(t, http.MethodDelete, "/api/jobs/nope/payments/partner", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAudit_ListsEntries(t *testing.T) {
	f := newAPIFixture(t)
	mocks.ExpectTx(f.tx, f.repos)
	f.repos.Jobs.EXPECT().GetByID(gomock.Any(), "job-1").
		Return(testutil.JobWithPayments("job-1", model.PaymentState{}), nil).AnyTimes()
	f.repos.Audit.EXPECT().ListByJob(gomock.Any(), "job-1", 5).
		Return([]model.AuditEntry{{JobID: "job-1", Field: "customer_payment_date", Actor: "system"}}, nil)

	w := f.do(t, http.MethodGet, "/api/jobs/job-1/audit?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeBody[map[string][]model.AuditEntry](t, w)
	require.Len(t, got["items"], 1)
	assert.Equal(t, "customer_payment_date", got["items"][0].Field)
}
