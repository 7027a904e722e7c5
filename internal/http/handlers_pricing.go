package httpx

import (
	"net/http"

	"github.com/target/printbroker-api/internal/service"
)

// Quote handles POST /api/pricing/quote. It never touches storage.
func Quote(w http.ResponseWriter, r *http.Request) {
	var req service.QuoteRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	q, err := service.PriceQuote(req)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, q)
}
