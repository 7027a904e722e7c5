package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/mocks"
	"github.com/target/printbroker-api/internal/service"
	"github.com/target/printbroker-api/internal/testutil"
	"go.uber.org/mock/gomock"
)

type apiFixture struct {
	tx     *mocks.MockTxManager
	repos  *mocks.Repos
	router http.Handler
}

type fixtureOption func(*RouterServices, *apiFixture)

func withWebhookSecret(secret string) fixtureOption {
	return func(rs *RouterServices, f *apiFixture) {
		rs.Webhooks = service.MustNewWebhookService(service.WebhookServiceOptions{
			Tx:         f.tx,
			Jobs:       rs.Jobs,
			Financials: rs.Financials,
			Config:     config.WebhookConfig{Secret: secret, DedupeTTL: time.Hour},
		})
	}
}

func withBodyLimit(n int64) fixtureOption {
	return func(rs *RouterServices, _ *apiFixture) { rs.MaxBodyBytes = n }
}

func newAPIFixture(t *testing.T, opts ...fixtureOption) *apiFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &apiFixture{tx: mocks.NewMockTxManager(ctrl), repos: mocks.NewRepos(ctrl)}

	financials := service.MustNewFinancialsService(service.FinancialsServiceOptions{
		Tx:  f.tx,
		Now: testutil.TestTime,
	})
	rs := RouterServices{
		Jobs: service.MustNewJobService(service.JobServiceOptions{
			Tx: f.tx,
			Config: config.JobsConfig{
				CreateTimeout:   5 * time.Second,
				MaxBatchSize:    10,
				IdentityCutover: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			Financials: financials,
		}),
		Financials: financials,
		PurchaseOrders: service.MustNewPurchaseOrderService(service.PurchaseOrderServiceOptions{
			Tx:         f.tx,
			Financials: financials,
		}),
		Payments: service.MustNewPaymentService(service.PaymentServiceOptions{
			Tx:         f.tx,
			Financials: financials,
			Now:        testutil.TestTime,
		}),
	}
	for _, o := range opts {
		o(&rs, f)
	}
	f.router = NewRouter(rs)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
