package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/printbroker-api/internal/errors"
	"github.com/target/printbroker-api/internal/observability/statsd"
)

func TestEmit_SuccessWithDuration(t *testing.T) {
	var rec statsd.Recorder
	Emit(&rec, JobCreatedEvent("P1", 20*time.Millisecond, nil))

	counts := rec.Named(JobCreated)
	require.Len(t, counts, 1)
	assert.Equal(t, map[string]string{"pathway": "P1", "result": ResultSuccess}, counts[0].Tags)

	timings := rec.Named(JobCreated + ".duration")
	require.Len(t, timings, 1)
	assert.InDelta(t, 20.0, timings[0].Value, 0.001)
}

func TestEmit_ErrorClassFromAppError(t *testing.T) {
	var rec statsd.Recorder
	Emit(&rec, PaymentStepEvent("mark_partner_paid", false, apperrors.Precondition("customer unpaid", "mark_customer_paid")))

	m := rec.Named(PaymentStep)
	require.Len(t, m, 1)
	assert.Equal(t, ResultError, m[0].Tags["result"])
	assert.Equal(t, "precondition", m[0].Tags["error_class"])
	assert.Empty(t, rec.Named(PaymentStep+".duration"))
}

func TestEmit_Noop(t *testing.T) {
	var rec statsd.Recorder
	Emit(&rec, PaymentStepEvent("mark_customer_paid", true, nil))
	assert.Equal(t, ResultNoop, rec.Named(PaymentStep)[0].Tags["result"])
}

func TestEmit_NilSinkAndPlainError(t *testing.T) {
	Emit(nil, Event{Name: "x"})

	var rec statsd.Recorder
	Emit(&rec, Event{Name: WebhookDelivery, Err: errors.New("boom")})
	assert.Equal(t, "errors_errorstring", rec.Named(WebhookDelivery)[0].Tags["error_class"])
}
