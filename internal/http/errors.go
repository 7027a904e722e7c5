package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/target/printbroker-api/internal/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Hint    string         `json:"hint,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// StatusFor maps an error to its HTTP status and wire code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, string(apperrors.ErrCodeTimeout)
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, string(apperrors.ErrCodeCanceled)
	}

	code := apperrors.GetCode(err)
	switch code {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest, string(code)
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound, string(code)
	case apperrors.ErrCodeConflict, apperrors.ErrCodeForeignKey:
		return http.StatusConflict, string(code)
	case apperrors.ErrCodePrecondition:
		return http.StatusPreconditionFailed, string(code)
	case apperrors.ErrCodeTransient, apperrors.ErrCodeTimeout, apperrors.ErrCodeCanceled:
		return http.StatusServiceUnavailable, string(code)
	case apperrors.ErrCodeIntegrity:
		return http.StatusInternalServerError, string(code)
	default:
		return http.StatusInternalServerError, string(apperrors.ErrCodeInternal)
	}
}

// WriteServiceError renders a service-layer error. 5xx responses are logged with the request's
// logger and never echo internal error text.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusFor(err)
	body := errorBody{Error: code, Message: err.Error()}

	if appErr, ok := apperrors.AsAppError(err); ok {
		body.Message = appErr.Message
		body.Field = appErr.Field
		body.Hint = appErr.Hint
		body.Details = appErr.Details
	}

	if status >= http.StatusInternalServerError {
		level := LoggerFrom(r.Context()).ErrorContext
		if status == http.StatusServiceUnavailable {
			level = LoggerFrom(r.Context()).WarnContext
		}
		level(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
		if code == string(apperrors.ErrCodeInternal) {
			body.Message = http.StatusText(status)
			body.Details = nil
		}
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	WriteJSON(w, status, body)
}
