// Package notify defines integrity alert payloads and the sinks that deliver them.
package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityError    = "error"
)

// Alert kinds.
const (
	KindMissingIdentity = "missing_identity"
	KindRecompute       = "split_recompute_failed"
)

// IntegrityAlert describes persisted data that violates an invariant.
type IntegrityAlert struct {
	Kind       string
	JobID      string
	JobNo      string
	Message    string
	Severity   string
	OccurredAt time.Time
	Details    map[string]string
}

// Sink describes a destination capable of consuming integrity alerts.
type Sink interface {
	SendIntegrityAlert(ctx context.Context, alert IntegrityAlert) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, alert IntegrityAlert) error

// SendIntegrityAlert implements the Sink interface.
func (f SinkFunc) SendIntegrityAlert(ctx context.Context, alert IntegrityAlert) error {
	if f == nil {
		return nil
	}
	return f(ctx, alert)
}
