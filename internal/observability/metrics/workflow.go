// Package metrics emits the broker's workflow metrics with a consistent tag vocabulary.
package metrics

import (
	"time"

	obserrors "github.com/target/printbroker-api/internal/observability/errors"
	"github.com/target/printbroker-api/internal/observability/statsd"
)

// Result tag values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Metric names.
const (
	JobCreated         = "job.created"
	PaymentStep        = "payment.step"
	PartnerNotice      = "payment.partner_notice"
	SplitRecompute     = "split.recompute"
	IntegrityViolation = "integrity.violation"
	IntegrityScan      = "integrity.scan"
	WebhookDelivery    = "webhook.delivery"
)

// Event is one workflow occurrence.
type Event struct {
	Name     string
	Result   string
	Duration time.Duration
	Err      error
	Tags     map[string]string
}

// Emit counts the event and, when Duration is set, records its timing under "<name>.duration".
func Emit(sink statsd.Sink, ev Event) {
	if sink == nil || ev.Name == "" {
		return
	}
	tags := CloneTags(ev.Tags)
	if tags == nil {
		tags = map[string]string{}
	}
	if ev.Result == "" {
		ev.Result = ResultSuccess
		if ev.Err != nil {
			ev.Result = ResultError
		}
	}
	tags["result"] = ev.Result
	if ev.Err != nil && ev.Result == ResultError {
		if class := obserrors.Classify(ev.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count(ev.Name, 1, tags)
	if ev.Duration > 0 {
		sink.Timing(ev.Name+".duration", ev.Duration, CloneTags(tags))
	}
}

// JobCreatedEvent tags a job creation by pathway.
func JobCreatedEvent(pathway string, d time.Duration, err error) Event {
	return Event{Name: JobCreated, Duration: d, Err: err, Tags: map[string]string{"pathway": pathway}}
}

// PaymentStepEvent tags a payment operation. noop marks an idempotent overwrite that changed nothing.
func PaymentStepEvent(op string, noop bool, err error) Event {
	ev := Event{Name: PaymentStep, Err: err, Tags: map[string]string{"op": op}}
	if noop && err == nil {
		ev.Result = ResultNoop
	}
	return ev
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
