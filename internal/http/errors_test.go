package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperrors.Validation("bad"), http.StatusBadRequest, "validation"},
		{"not found", apperrors.NotFound("missing"), http.StatusNotFound, "not_found"},
		{"conflict", apperrors.Conflict("taken"), http.StatusConflict, "conflict"},
		{"foreign key", apperrors.Wrap(errors.New("fk"), apperrors.ErrCodeForeignKey, "fk"), http.StatusConflict, "foreign_key"},
		{"precondition", apperrors.Precondition("not yet", "do_first"), http.StatusPreconditionFailed, "precondition"},
		{"transient", apperrors.Wrap(errors.New("pool"), apperrors.ErrCodeTransient, "busy"), http.StatusServiceUnavailable, "transient"},
		{"integrity", apperrors.Integrity("no base id"), http.StatusInternalServerError, "integrity"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, "timeout"},
		{"canceled", context.Canceled, http.StatusServiceUnavailable, "canceled"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal"},
		{"wrapped", fmt.Errorf("outer: %w", apperrors.NotFound("job")), http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := StatusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestWriteServiceError_CarriesHintAndDetails(t *testing.T) {
	err := apperrors.Precondition("customer payment must be recorded first", "mark_customer_paid").
		WithDetails(map[string]any{"job_id": "job-1"})
	w := httptest.NewRecorder()

	WriteServiceError(w, httptest.NewRequest(http.MethodPost, "/x", nil), fmt.Errorf("mark partner paid: %w", err))

	require.Equal(t, http.StatusPreconditionFailed, w.Code)
	body := decodeBody[errorBody](t, w)
	assert.Equal(t, "customer payment must be recorded first", body.Message)
	assert.Equal(t, "mark_customer_paid", body.Hint)
	assert.Equal(t, "job-1", body.Details["job_id"])
	assert.Empty(t, w.Header().Get("Retry-After"))
}

func TestWriteServiceError_HidesInternalText(t *testing.T) {
	w := httptest.NewRecorder()

	WriteServiceError(w, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("pq: password authentication failed"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody[errorBody](t, w)
	assert.Equal(t, "internal", body.Error)
	assert.Equal(t, "Internal Server Error", body.Message)
}

func TestWriteServiceError_RetryAfterOnUnavailable(t *testing.T) {
	w := httptest.NewRecorder()
	err := apperrors.Wrap(errors.New("acquire"), apperrors.ErrCodeTransient, "no database connection available")

	WriteServiceError(w, httptest.NewRequest(http.MethodGet, "/x", nil), err)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "no database connection available", decodeBody[errorBody](t, w).Message)
}
