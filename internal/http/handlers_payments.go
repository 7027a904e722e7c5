package httpx

import (
	"context"
	"net/http"

	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/service"
)

const (
	defaultAuditLimit = 200
	maxAuditLimit     = 1000
)

// PaymentHandlers serves the four-step payment workflow.
type PaymentHandlers struct {
	Svc *service.PaymentService
}

type markFunc func(ctx context.Context, jobID string, req *model.PaymentRequest) (*model.FinancialSnapshot, error)

type unmarkFunc func(ctx context.Context, jobID, actor string) (*model.FinancialSnapshot, error)

// mark adapts a step that takes an optional PaymentRequest body.
func (h *PaymentHandlers) mark(fn markFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.PaymentRequest
		if !DecodeOptionalJSON(w, r, &req) {
			return
		}
		req.Actor = actor(r)

		snap, err := fn(r.Context(), r.PathValue("id"), &req)
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, snap)
	}
}

func (h *PaymentHandlers) unmark(fn unmarkFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := fn(r.Context(), r.PathValue("id"), actor(r))
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, snap)
	}
}

// Snapshot handles GET /api/jobs/{id}/financials.
func (h *PaymentHandlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Svc.Snapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

// Audit handles GET /api/jobs/{id}/audit.
func (h *PaymentHandlers) Audit(w http.ResponseWriter, r *http.Request) {
	limit, _ := ParseLimitOffset(r, defaultAuditLimit, maxAuditLimit)
	entries, err := h.Svc.ListAudit(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func registerPaymentRoutes(mux *http.ServeMux, h *PaymentHandlers) {
	s := h.Svc
	mux.Handle("POST /api/jobs/{id}/payments/customer", h.mark(s.MarkCustomerPaid))
	mux.Handle("DELETE /api/jobs/{id}/payments/customer", h.unmark(s.MarkCustomerUnpaid))
	mux.Handle("POST /api/jobs/{id}/payments/partner", h.mark(s.MarkPartnerPaid))
	mux.Handle("DELETE /api/jobs/{id}/payments/partner", h.unmark(s.MarkPartnerUnpaid))
	mux.Handle("POST /api/jobs/{id}/payments/partner/resend-notice", h.unmark(s.ResendPartnerNotice))
	mux.Handle("POST /api/jobs/{id}/downstream-invoice", h.mark(s.SendDownstreamInvoice))
	mux.Handle("POST /api/jobs/{id}/payments/downstream", h.mark(s.MarkDownstreamPaid))
	mux.Handle("DELETE /api/jobs/{id}/payments/downstream", h.unmark(s.MarkDownstreamUnpaid))
	mux.HandleFunc("GET /api/jobs/{id}/financials", h.Snapshot)
	mux.HandleFunc("GET /api/jobs/{id}/audit", h.Audit)
}
