package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "job not found"},
			want: "job not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to allocate sequence",
				Cause:   errors.New("connection reset"),
			},
			want: "failed to allocate sequence: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrecondition_CarriesHint(t *testing.T) {
	err := Precondition("cannot pay partner before customer payment", "mark_customer_paid")
	if err.Code != ErrCodePrecondition {
		t.Errorf("Precondition().Code = %v, want %v", err.Code, ErrCodePrecondition)
	}
	if err.Hint != "mark_customer_paid" {
		t.Errorf("Precondition().Hint = %q", err.Hint)
	}
	if !IsPrecondition(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsPrecondition should see through wrapping")
	}
}

func TestConflict_WithDetails(t *testing.T) {
	err := Conflict("partner payment already recorded").
		WithHint("resend_partner_notice").
		WithDetails(map[string]any{"amount": 120.5})

	if !IsConflict(err) {
		t.Fatal("expected conflict")
	}
	if err.Details["amount"] != 120.5 {
		t.Errorf("Details[amount] = %v", err.Details["amount"])
	}
	if err.Hint != "resend_partner_notice" {
		t.Errorf("Hint = %q", err.Hint)
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "nothing"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
	if err := Wrapf(nil, ErrCodeInternal, "nothing %d", 1); err != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", err)
	}
}

func TestWrapf_PreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrapf(cause, ErrCodeTransient, "allocate %s", "job_number")
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable through errors.Is")
	}
	if err.Message != "allocate job_number" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "transient", err: &AppError{Code: ErrCodeTransient}, want: true},
		{name: "timeout", err: &AppError{Code: ErrCodeTimeout}, want: true},
		{name: "conflict", err: Conflict("dup"), want: false},
		{name: "plain", err: errors.New("x"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCodeAndField(t *testing.T) {
	err := fmt.Errorf("outer: %w", ValidationField("quantity", "quantity must be > 0"))
	if GetCode(err) != ErrCodeValidation {
		t.Errorf("GetCode() = %v", GetCode(err))
	}
	if GetField(err) != "quantity" {
		t.Errorf("GetField() = %v", GetField(err))
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("plain errors have no code")
	}
}

func TestIntegrityf(t *testing.T) {
	err := Integrityf("job %s missing base identifier", "abc")
	if !IsIntegrity(err) {
		t.Fatal("expected integrity error")
	}
	if err.Message != "job abc missing base identifier" {
		t.Errorf("Message = %q", err.Message)
	}
}
