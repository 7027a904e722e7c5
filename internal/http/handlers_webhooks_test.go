package httpx

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/mocks"
	"github.com/target/printbroker-api/internal/testutil"
	"go.uber.org/mock/gomock"
)

const portalOrder = `{"order":{"id":"ORD-9","title":"Fall catalog","customer":{"id":"cust-7"},
	"quantity":10000,"price":750,"size":"6 x 9"}}`

func TestWebhook_RouteAbsentWithoutService(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/webhooks/jobs", portalOrder)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhook_DisabledIs404(t *testing.T) {
	f := newAPIFixture(t, withWebhookSecret(""))

	w := f.do(t, http.MethodPost, "/api/webhooks/jobs", portalOrder, HeaderWebhookSecret, "anything")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhook_BadSecretIs401(t *testing.T) {
	f := newAPIFixture(t, withWebhookSecret("s3cret"))

	w := f.do(t, http.MethodPost, "/api/webhooks/jobs", portalOrder, HeaderWebhookSecret, "wrong")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decodeBody[errorBody](t, w).Error)
}

func TestWebhook_MalformedPayloadIs400(t *testing.T) {
	f := newAPIFixture(t, withWebhookSecret("s3cret"))

	w := f.do(t, http.MethodPost, "/api/webhooks/jobs", `{"order":`, HeaderWebhookSecret, "s3cret")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_UpdatesExistingOrder(t *testing.T) {
	f := newAPIFixture(t, withWebhookSecret("s3cret"))
	mocks.ExpectTx(f.tx, f.repos)
	existing := testutil.JobWithPayments("job-3", model.PaymentState{})
	existing.ExternalID = testutil.StringPtr("ORD-9")
	f.repos.Jobs.EXPECT().GetByExternalIDForUpdate(gomock.Any(), "ORD-9").Return(existing, nil)
	f.repos.Jobs.EXPECT().UpdateDetails(gomock.Any(), "job-3", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req *model.CreateJobRequest) (*model.Job, error) {
			assert.Equal(t, "Fall catalog", req.Title)
			assert.Equal(t, "cust-7", req.CustomerID)
			out := *existing
			out.Title = req.Title
			return &out, nil
		})
	f.repos.PurchaseOrders.EXPECT().ListByJob(gomock.Any(), "job-3").Return(nil, nil)
	f.repos.ProfitSplits.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *model.ProfitSplit) (*model.ProfitSplit, error) { return s, nil })

	w := f.do(t, http.MethodPost, "/api/webhooks/jobs", portalOrder,
		HeaderWebhookSecret, "s3cret", HeaderWebhookDelivery, "d-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decodeBody[map[string]any](t, w)
	assert.Equal(t, false, got["created"])
	job, ok := got["job"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Fall catalog", job["title"])
}
