// Package pagerduty triggers PagerDuty Events API v2 incidents for integrity alerts.
package pagerduty

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/target/printbroker-api/internal/observability/notify"
)

// APIEndpoint is the PagerDuty Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

// Config captures runtime configuration for the PagerDuty sink.
type Config struct {
	RoutingKey string
	Source     string
	Component  string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// Endpoint overrides APIEndpoint.
	Endpoint string
}

// Client publishes events via PagerDuty's Events API v2.
type Client struct {
	routingKey string
	source     string
	component  string
	endpoint   string
	poster     *notify.Poster
}

// NewClient constructs a PagerDuty events client. A routing key is required.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.RoutingKey)
	if key == "" {
		return nil, errors.New("pagerduty routing key is required")
	}
	return &Client{
		routingKey: key,
		source:     notify.Fallback(strings.TrimSpace(cfg.Source), "printbroker"),
		component:  notify.Fallback(strings.TrimSpace(cfg.Component), "financials"),
		endpoint:   notify.Fallback(strings.TrimSpace(cfg.Endpoint), APIEndpoint),
		poster:     notify.NewPoster("pagerduty api", cfg.RetryLimit, cfg.Timeout, cfg.Client),
	}, nil
}

// SendIntegrityAlert submits a trigger event.
func (c *Client) SendIntegrityAlert(ctx context.Context, alert notify.IntegrityAlert) error {
	return c.poster.PostJSON(ctx, c.endpoint, c.buildEvent(alert))
}

func (c *Client) buildEvent(alert notify.IntegrityAlert) map[string]any {
	severity := notify.Fallback(strings.ToLower(alert.Severity), notify.SeverityCritical)

	occurredAt := alert.OccurredAt.UTC()
	if alert.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	custom := map[string]any{
		"kind":    alert.Kind,
		"job_id":  alert.JobID,
		"job_no":  alert.JobNo,
		"message": alert.Message,
	}
	for k, v := range alert.Details {
		if _, exists := custom[k]; !exists {
			custom[k] = v
		}
	}

	// one open incident per job and kind
	dedupKey := strings.Trim(fmt.Sprintf("%s:%s", alert.Kind, alert.JobID), ":")

	return map[string]any{
		"routing_key":  c.routingKey,
		"event_action": "trigger",
		"dedup_key":    dedupKey,
		"payload": map[string]any{
			"summary": fmt.Sprintf("Integrity violation on job %s: %s",
				notify.Fallback(alert.JobNo, notify.Fallback(alert.JobID, "unknown")),
				notify.Fallback(alert.Message, alert.Kind)),
			"severity":       severity,
			"source":         c.source,
			"component":      c.component,
			"timestamp":      occurredAt.Format(time.RFC3339),
			"custom_details": custom,
		},
	}
}
