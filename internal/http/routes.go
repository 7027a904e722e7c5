package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/printbroker-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Jobs           *service.JobService
	Financials     *service.FinancialsService
	PurchaseOrders *service.PurchaseOrderService
	Payments       *service.PaymentService
	// Webhooks is optional; without it the webhook route answers 404.
	Webhooks *service.WebhookService
	Health   []HealthCheck

	// MaxBodyBytes caps request bodies. Zero disables the cap.
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewRouter creates the API handler with request id, logging, panic recovery and body limits applied.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	registerJobRoutes(mux, &JobHandlers{Svc: services.Jobs})
	registerPurchaseOrderRoutes(mux, &PurchaseOrderHandlers{
		Orders:     services.PurchaseOrders,
		Financials: services.Financials,
	})
	registerPaymentRoutes(mux, &PaymentHandlers{Svc: services.Payments})
	mux.HandleFunc("POST /api/pricing/quote", Quote)
	if services.Webhooks != nil {
		mux.HandleFunc("POST /api/webhooks/jobs", (&WebhookHandlers{Svc: services.Webhooks}).Jobs)
	}

	health := &HealthHandlers{Checks: services.Health}
	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("HEAD /healthz", health.Health)

	return Chain(mux,
		RequestID(logger.With("component", "http")),
		Logging(),
		Recover(),
		BodyLimit(services.MaxBodyBytes),
	)
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers) {
	mux.HandleFunc("POST /api/jobs", h.CreateJob)
	mux.HandleFunc("POST /api/jobs/batch", h.CreateBatch)
	mux.HandleFunc("GET /api/jobs", h.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", h.GetJob)
	mux.HandleFunc("GET /api/jobs/{id}/cost-order-eligibility", h.CostOrderEligibility)
}

func registerPurchaseOrderRoutes(mux *http.ServeMux, h *PurchaseOrderHandlers) {
	mux.HandleFunc("POST /api/jobs/{id}/purchase-orders", h.Create)
	mux.HandleFunc("GET /api/jobs/{id}/purchase-orders", h.ListByJob)
	mux.HandleFunc("PUT /api/purchase-orders/{id}", h.Update)
	mux.HandleFunc("GET /api/jobs/{id}/profit-split", h.ProfitSplit)
}
