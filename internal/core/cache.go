package core

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// The core defines the port and the data layer provides a Redis implementation.
type CacheRepository interface {
	// Set stores a value with the given TTL. A zero TTL never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns nil, nil when the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	// SetIfNotExists atomically sets a key only if it is absent and reports whether it was set.
	// Used for delivery deduplication.
	SetIfNotExists(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Health checks the cache connection.
	Health(ctx context.Context) error
}

// Cache key prefixes.
const (
	ProfitSplitKeyPrefix     = "printbroker:split:"
	WebhookDeliveryKeyPrefix = "printbroker:webhook:delivery:"
	AlertKeyPrefix           = "printbroker:alert:"
)

// ProfitSplitKey returns the cache key of a job's split.
func ProfitSplitKey(jobID string) string { return ProfitSplitKeyPrefix + jobID }

// WebhookDeliveryKey returns the dedupe key of a webhook delivery id.
func WebhookDeliveryKey(deliveryID string) string { return WebhookDeliveryKeyPrefix + deliveryID }

// AlertKey returns the suppression key of an alert kind raised for a job.
func AlertKey(kind, jobID string) string { return AlertKeyPrefix + kind + ":" + jobID }
