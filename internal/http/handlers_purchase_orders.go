package httpx

import (
	"net/http"

	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/service"
)

// PurchaseOrderHandlers serves purchase order writes and the memoised profit split.
type PurchaseOrderHandlers struct {
	Orders     *service.PurchaseOrderService
	Financials *service.FinancialsService
}

// Create handles POST /api/jobs/{id}/purchase-orders.
func (h *PurchaseOrderHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePurchaseOrderRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.JobID = r.PathValue("id")

	res, err := h.Orders.Create(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, res)
}

// Update handles PUT /api/purchase-orders/{id}.
func (h *PurchaseOrderHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdatePurchaseOrderRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	res, err := h.Orders.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// ListByJob handles GET /api/jobs/{id}/purchase-orders.
func (h *PurchaseOrderHandlers) ListByJob(w http.ResponseWriter, r *http.Request) {
	pos, err := h.Orders.ListByJob(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if pos == nil {
		pos = []model.PurchaseOrder{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": pos})
}

// ProfitSplit handles GET /api/jobs/{id}/profit-split.
func (h *PurchaseOrderHandlers) ProfitSplit(w http.ResponseWriter, r *http.Request) {
	split, err := h.Financials.GetSplit(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, split)
}
