package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP API.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeIntegrityAuditor runs the periodic missing-identity scan.
	ServiceModeIntegrityAuditor ServiceMode = "integrity-auditor"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeIntegrityAuditor}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)
	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for part := range strings.SplitSeq(servicesStr, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		switch mode := ServiceMode(name); mode {
		case ServiceModeHTTP, ServiceModeIntegrityAuditor:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, integrity-auditor)", name)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}
	return services, nil
}

// JobsConfig bounds the job creation unit of work.
type JobsConfig struct {
	// CreateAcquireTimeout is the longest a creation waits for a pooled connection.
	CreateAcquireTimeout time.Duration `env:"JOBS_CREATE_ACQUIRE_TIMEOUT" envDefault:"2s"`
	// CreateTimeout bounds the whole creation transaction, sequence allocation included.
	CreateTimeout time.Duration `env:"JOBS_CREATE_TIMEOUT" envDefault:"10s"`
	// LockTimeout bounds waits on the sequence counter row lock.
	LockTimeout time.Duration `env:"JOBS_LOCK_TIMEOUT" envDefault:"3s"`
	// MaxBatchSize caps the number of jobs in one batch request.
	MaxBatchSize int `env:"JOBS_MAX_BATCH_SIZE" envDefault:"100"`
	// IdentityCutover is when base identifiers and pathways became mandatory. Jobs created at or
	// after it without either are integrity violations. Zero disables the check.
	IdentityCutover time.Time `env:"JOBS_IDENTITY_CUTOVER" envDefault:"2025-01-01T00:00:00Z"`
}

// Sanitize applies guardrails to job creation bounds.
func (j *JobsConfig) Sanitize() {
	if j.CreateAcquireTimeout <= 0 {
		j.CreateAcquireTimeout = 2 * time.Second
	}
	if j.CreateTimeout < time.Second {
		j.CreateTimeout = time.Second
	}
	if j.LockTimeout <= 0 || j.LockTimeout > j.CreateTimeout {
		j.LockTimeout = j.CreateTimeout
	}
	if j.MaxBatchSize < 1 {
		j.MaxBatchSize = 1
	}
	if j.MaxBatchSize > 1000 {
		j.MaxBatchSize = 1000
	}
}

// FinancialsConfig controls the profit-split read cache.
type FinancialsConfig struct {
	// SplitCacheTTL is the lifetime of a cached split. Zero disables caching.
	SplitCacheTTL time.Duration `env:"FINANCIALS_SPLIT_CACHE_TTL" envDefault:"10m"`
	// TxTimeout bounds purchase-order and payment transactions.
	TxTimeout time.Duration `env:"FINANCIALS_TX_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to financial settings.
func (f *FinancialsConfig) Sanitize() {
	if f.SplitCacheTTL < 0 {
		f.SplitCacheTTL = 0
	}
	if f.TxTimeout < time.Second {
		f.TxTimeout = time.Second
	}
}

// NoticeConfig controls outbound partner payment notices and downstream invoices.
type NoticeConfig struct {
	// PartnerURL receives partner payment notices. Empty disables sending; the outcome is still
	// recorded as an error on the job.
	PartnerURL string `env:"NOTICES_PARTNER_URL"`
	// DownstreamURL receives downstream invoice notices.
	DownstreamURL string `env:"NOTICES_DOWNSTREAM_URL"`
	// SigningKey signs notice bodies with HMAC-SHA256 when set.
	SigningKey string        `env:"NOTICES_SIGNING_KEY"`
	Timeout    time.Duration `env:"NOTICES_TIMEOUT"     envDefault:"5s"`
	RetryLimit int           `env:"NOTICES_RETRY_LIMIT" envDefault:"2"`
	// DefaultRecipient is used for downstream invoices when the request names none.
	DefaultRecipient string `env:"NOTICES_DEFAULT_RECIPIENT" envDefault:"JD"`
}

// Sanitize normalises notice settings.
func (n *NoticeConfig) Sanitize() {
	n.PartnerURL = strings.TrimSpace(n.PartnerURL)
	n.DownstreamURL = strings.TrimSpace(n.DownstreamURL)
	if n.Timeout <= 0 {
		n.Timeout = 5 * time.Second
	}
	if n.RetryLimit < 0 {
		n.RetryLimit = 0
	}
	if n.DefaultRecipient = strings.TrimSpace(n.DefaultRecipient); n.DefaultRecipient == "" {
		n.DefaultRecipient = "JD"
	}
}

// IntegrityConfig controls the periodic integrity auditor.
type IntegrityConfig struct {
	// Interval is the auditor tick interval.
	Interval time.Duration `env:"INTEGRITY_INTERVAL" envDefault:"15m"`
	// BatchSize is the maximum number of violations reported per scan.
	BatchSize int `env:"INTEGRITY_BATCH_SIZE" envDefault:"500"`
	// AlertSuppression suppresses repeat alerts for the same job.
	AlertSuppression time.Duration `env:"INTEGRITY_ALERT_SUPPRESSION" envDefault:"6h"`
}

// Sanitize applies guardrails to auditor settings.
func (i *IntegrityConfig) Sanitize() {
	if i.Interval < time.Minute {
		i.Interval = time.Minute
	}
	if i.BatchSize < 1 {
		i.BatchSize = 1
	}
	if i.BatchSize > 10000 {
		i.BatchSize = 10000
	}
	if i.AlertSuppression < 0 {
		i.AlertSuppression = 0
	}
}
