package config

import (
	"strings"
	"time"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://broker.example.com").
	// Used for job links in alert notifications.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"    envDefault:"15s"`

	// MaxBodyBytes bounds JSON request bodies.
	MaxBodyBytes int64 `env:"HTTP_MAX_BODY_BYTES" envDefault:"1048576"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
	if h.ReadHeaderTimeout <= 0 {
		h.ReadHeaderTimeout = 5 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 15 * time.Second
	}
	if h.MaxBodyBytes < 1024 {
		h.MaxBodyBytes = 1024
	}
}

// WebhookConfig controls inbound portal webhooks.
type WebhookConfig struct {
	// Secret must match the X-Webhook-Secret header. Empty disables the endpoint.
	Secret string `env:"WEBHOOK_SECRET"`

	// DedupeTTL is how long a delivery id is remembered.
	DedupeTTL time.Duration `env:"WEBHOOK_DEDUPE_TTL" envDefault:"24h"`

	// Mapping holds JMESPath expressions keyed by job request field. Unset fields use the defaults
	// in DefaultWebhookMapping.
	Mapping map[string]string `env:"WEBHOOK_MAPPING" envKeyValSeparator:"=" envSeparator:";"`
}

// DefaultWebhookMapping maps portal payload fields onto job creation fields.
func DefaultWebhookMapping() map[string]string {
	return map[string]string{
		"external_id":  "order.id",
		"title":        "order.title",
		"customer_id":  "order.customer.id",
		"quantity":     "order.quantity",
		"sell_price":   "order.price",
		"size_name":    "order.size",
		"paper_source": "order.paper_source",
		"routing_type": "order.routing",
		"mail_format":  "order.mail_format",
		"job_type":     "order.job_type",
		"due_date":     "order.due_date",
		"mail_date":    "order.mail_date",
		"vendor_id":    "order.vendor_id",
		"specs":        "order.specs",
		"components":   "order.components",
	}
}

// Sanitize fills unset mapping keys from the defaults.
func (w *WebhookConfig) Sanitize() {
	w.Secret = strings.TrimSpace(w.Secret)
	if w.DedupeTTL < time.Minute {
		w.DedupeTTL = time.Minute
	}
	merged := DefaultWebhookMapping()
	for k, v := range w.Mapping {
		k = strings.TrimSpace(k)
		if v = strings.TrimSpace(v); k != "" && v != "" {
			merged[k] = v
		}
	}
	w.Mapping = merged
}

// Enabled reports whether webhooks are accepted.
func (w *WebhookConfig) Enabled() bool {
	return w.Secret != ""
}
