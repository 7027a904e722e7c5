package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/domain/model"
	apperrors "github.com/target/printbroker-api/internal/errors"
	"github.com/target/printbroker-api/internal/mocks"
	"github.com/target/printbroker-api/internal/testutil"
	"go.uber.org/mock/gomock"
)

type poFixture struct {
	tx    *mocks.MockTxManager
	repos *mocks.Repos
	cache *mocks.MockCacheRepository
	svc   *PurchaseOrderService
}

func newPOFixture(t *testing.T) *poFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &poFixture{
		tx:    mocks.NewMockTxManager(ctrl),
		repos: mocks.NewRepos(ctrl),
		cache: mocks.NewMockCacheRepository(ctrl),
	}
	fin := MustNewFinancialsService(FinancialsServiceOptions{Tx: f.tx, Cache: f.cache})
	f.svc = MustNewPurchaseOrderService(PurchaseOrderServiceOptions{Tx: f.tx, Financials: fin})
	return f
}

func TestNewPurchaseOrderService_RequiresDeps(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := NewPurchaseOrderService(PurchaseOrderServiceOptions{Tx: mocks.NewMockTxManager(ctrl)})
	require.Error(t, err)
}

func TestPurchaseOrderService_Create_RecomputesSplit(t *testing.T) {
	f := newPOFixture(t)
	job := testutil.JobWithPayments("job-1", model.PaymentState{})
	orders := savedPurchaseOrders("job-1")
	req := testutil.PartnerChainOrders("job-1")[0]

	mocks.ExpectTx(f.tx, f.repos)
	gomock.InOrder(
		f.repos.Jobs.EXPECT().GetForUpdate(gomock.Any(), "job-1").Return(job, nil),
		f.repos.PurchaseOrders.EXPECT().Create(gomock.Any(), req).Return(&orders[0], nil),
		f.repos.PurchaseOrders.EXPECT().ListByJob(gomock.Any(), "job-1").Return(orders[:1], nil),
		echoUpsert(f.repos),
		f.cache.EXPECT().Delete(gomock.Any(), core.ProfitSplitKey("job-1")).Return(false, nil),
	)

	res, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "po-1", res.PurchaseOrder.ID)
	assert.Equal(t, model.SplitSourcePurchaseOrders, res.Split.Source)
	assert.Equal(t, "529.83", res.Split.TotalCost.StringFixed(2))
	assert.Equal(t, "27.83", res.Split.PaperMarkup.StringFixed(2))
}

func TestPurchaseOrderService_Create_Validation(t *testing.T) {
	f := newPOFixture(t)

	req := testutil.PurchaseOrderRequest("job-1", model.PartyBroker, model.PartyBroker, "10")
	_, err := f.svc.Create(context.Background(), req)
	assert.True(t, apperrors.IsValidation(err))

	req = testutil.PurchaseOrderRequest("job-1", model.PartyBroker, model.PartyVendor, "10")
	_, err = f.svc.Create(context.Background(), req)
	assert.Equal(t, "target_vendor_id", apperrors.GetField(err))
}

func TestPurchaseOrderService_Create_MissingJob(t *testing.T) {
	f := newPOFixture(t)
	mocks.ExpectTx(f.tx, f.repos)
	f.repos.Jobs.EXPECT().GetForUpdate(gomock.Any(), "nope").Return(nil, apperrors.NotFound("job not found"))

	_, err := f.svc.Create(context.Background(),
		testutil.PurchaseOrderRequest("nope", model.PartyBroker, model.PartyPartner, "10"))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPurchaseOrderService_Update_LocksOwningJob(t *testing.T) {
	f := newPOFixture(t)
	job := testutil.JobWithPayments("job-1", model.PaymentState{})
	orders := savedPurchaseOrders("job-1")
	updated := orders[0]
	updated.BuyCost = testutil.Money("680")
	req := &model.UpdatePurchaseOrderRequest{BuyCost: testutil.MoneyPtr("680")}

	mocks.ExpectTx(f.tx, f.repos)
	gomock.InOrder(
		f.repos.PurchaseOrders.EXPECT().GetByID(gomock.Any(), "po-1").Return(&orders[0], nil),
		f.repos.Jobs.EXPECT().GetForUpdate(gomock.Any(), "job-1").Return(job, nil),
		f.repos.PurchaseOrders.EXPECT().Update(gomock.Any(), "po-1", req).Return(&updated, nil),
		f.repos.PurchaseOrders.EXPECT().ListByJob(gomock.Any(), "job-1").
			Return([]model.PurchaseOrder{updated, orders[1]}, nil),
		echoUpsert(f.repos),
		f.cache.EXPECT().Delete(gomock.Any(), core.ProfitSplitKey("job-1")).Return(true, nil),
	)

	res, err := f.svc.Update(context.Background(), "po-1", req)
	require.NoError(t, err)
	assert.Equal(t, "70.00", res.Split.GrossMargin.StringFixed(2))
	assert.Equal(t, "35.00", res.Split.BrokerTotal.StringFixed(2))
	assert.False(t, res.Split.IsHealthy)
}

func TestPurchaseOrderService_Update_Empty(t *testing.T) {
	f := newPOFixture(t)
	_, err := f.svc.Update(context.Background(), "po-1", &model.UpdatePurchaseOrderRequest{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestPurchaseOrderService_ListByJob(t *testing.T) {
	f := newPOFixture(t)
	mocks.ExpectTx(f.tx, f.repos)
	f.repos.Jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(&model.Job{ID: "job-1"}, nil)
	f.repos.PurchaseOrders.EXPECT().ListByJob(gomock.Any(), "job-1").Return(savedPurchaseOrders("job-1"), nil)

	pos, err := f.svc.ListByJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Len(t, pos, 2)
}
