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

func TestCreatePurchaseOrder_RecomputesSplit(t *testing.T) {
	f := newAPIFixture(t)
	mocks.ExpectTx(f.tx, f.repos)
	f.repos.Jobs.EXPECT().GetForUpdate(gomock.Any(), "job-1").
		Return(testutil.JobWithPayments("job-1", model.PaymentState{}), nil)

	var saved []model.PurchaseOrder
	f.repos.PurchaseOrders.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreatePurchaseOrderRequest) (*model.PurchaseOrder, error) {
			assert.Equal(t, "job-1", req.JobID, "job id comes from the path")
			po := model.PurchaseOrder{
				ID:          "po-1",
				JobID:       req.JobID,
				OriginParty: req.OriginParty,
				TargetParty: req.TargetParty,
				BuyCost:     req.BuyCost,
			}
			saved = append(saved, po)
			return &po, nil
		})
	f.repos.PurchaseOrders.EXPECT().ListByJob(gomock.Any(), "job-1").
		DoAndReturn(func(context.Context, string) ([]model.PurchaseOrder, error) { return saved, nil })
	f.repos.ProfitSplits.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *model.ProfitSplit) (*model.ProfitSplit, error) { return s, nil })

	w := f.do(t, http.MethodPost, "/api/jobs/job-1/purchase-orders",
		`{"origin_party":"impact","target_party":"BRADFORD","buy_cost":600}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := decodeBody[map[string]map[string]any](t, w)
	assert.Equal(t, "po-1", got["purchase_order"]["id"])
	assert.Equal(t, "IMPACT", got["purchase_order"]["origin_party"])
	assert.InDelta(t, 150.0, got["profit_split"]["gross_margin"], 0.0001)
	assert.InDelta(t, 75.0, got["profit_split"]["partner_share"], 0.0001)
}

func TestCreatePurchaseOrder_VendorNeedsID(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/jobs/job-1/purchase-orders",
		`{"origin_party":"IMPACT","target_party":"VENDOR","buy_cost":600}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "target_vendor_id", decodeBody[errorBody](t, w).Field)
}

func TestUpdatePurchaseOrder_EmptyBodyRejected(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPut, "/api/purchase-orders/po-1", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}
