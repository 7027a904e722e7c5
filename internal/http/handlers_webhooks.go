package httpx

import (
	"errors"
	"io"
	"net/http"

	"github.com/target/printbroker-api/internal/service"
)

// Webhook request headers.
const (
	HeaderWebhookSecret   = "X-Webhook-Secret"
	HeaderWebhookDelivery = "X-Webhook-Delivery"
)

// WebhookHandlers ingests ordering portal deliveries.
type WebhookHandlers struct {
	Svc *service.WebhookService
}

// Jobs handles POST /api/webhooks/jobs.
func (h *WebhookHandlers) Jobs(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, ErrorParams{Code: http.StatusRequestEntityTooLarge, ErrCode: "body_too_large", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_body", Err: err})
		return
	}

	res, err := h.Svc.Handle(r.Context(), service.WebhookDelivery{
		Secret:     r.Header.Get(HeaderWebhookSecret),
		DeliveryID: r.Header.Get(HeaderWebhookDelivery),
		Body:       body,
	})
	switch {
	case errors.Is(err, service.ErrWebhookDisabled):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
		return
	case errors.Is(err, service.ErrWebhookUnauthorized):
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "unauthorized", Err: err})
		return
	case err != nil:
		WriteServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, res)
}
