package errors

import (
	"context"
	"fmt"
	"testing"

	apperrors "github.com/target/printbroker-api/internal/errors"
)

type customErr struct{}

func (*customErr) Error() string { return "custom" }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"app error", apperrors.Conflict("dup"), "conflict"},
		{"wrapped app error", fmt.Errorf("ctx: %w", apperrors.Integrity("bad")), "integrity"},
		{"pointer type", fmt.Errorf("wrap: %w", &customErr{}), "errors_customerr"},
		{"deadline", context.DeadlineExceeded, "context_deadlineexceedederror"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify() = %q, want %q", got, tc.want)
			}
		})
	}
}
