package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/adapters/notices"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/data"
	"github.com/target/printbroker-api/internal/observability/notify/pagerduty"
	"github.com/target/printbroker-api/internal/observability/notify/slack"
	"github.com/target/printbroker-api/internal/observability/statsd"
	"github.com/target/printbroker-api/internal/service"
	"github.com/target/printbroker-api/internal/service/alerting"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Store          *data.Store
	Cache          core.CacheRepository
	Jobs           *service.JobService
	Financials     *service.FinancialsService
	PurchaseOrders *service.PurchaseOrderService
	Payments       *service.PaymentService
	Webhooks       *service.WebhookService
	Observability  ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink *statsd.Client
	Alerts      *alerting.Service
}

// metrics returns the sink as an interface, nil when metrics are off.
//
//nolint:ireturn // services accept the statsd.Sink port
func (o ObservabilityContainer) metrics() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient *redis.Client
	Logger      *slog.Logger
}

// NewServices wires repositories, observability and domain services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil {
		return ServiceContainer{}, fmt.Errorf("config and database are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cache core.CacheRepository
	if deps.RedisClient != nil {
		cache = data.NewRedisCacheRepo(deps.RedisClient)
	}

	obs := buildObservability(logger, cfg, cache)
	store := data.NewStore(deps.DB, data.StoreOptions{Logger: logger})

	financials, err := service.NewFinancialsService(service.FinancialsServiceOptions{
		Tx:      store,
		Cache:   cache,
		Config:  cfg.Financials,
		Logger:  logger,
		Metrics: obs.metrics(),
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("financials service: %w", err)
	}

	jobs, err := service.NewJobService(service.JobServiceOptions{
		Tx:         store,
		Config:     cfg.Jobs,
		Financials: financials,
		Alerts:     obs.Alerts,
		Logger:     logger,
		Metrics:    obs.metrics(),
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("job service: %w", err)
	}

	purchaseOrders, err := service.NewPurchaseOrderService(service.PurchaseOrderServiceOptions{
		Tx:         store,
		Financials: financials,
		Logger:     logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("purchase order service: %w", err)
	}

	sender, err := buildNoticeSender(cfg.Notices, logger)
	if err != nil {
		return ServiceContainer{}, err
	}
	payments, err := service.NewPaymentService(service.PaymentServiceOptions{
		Tx:         store,
		Financials: financials,
		Notices:    sender,
		Config:     cfg.Notices,
		TxTimeout:  cfg.Financials.TxTimeout,
		Logger:     logger,
		Metrics:    obs.metrics(),
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("payment service: %w", err)
	}

	var webhooks *service.WebhookService
	if cfg.Webhook.Enabled() {
		webhooks, err = service.NewWebhookService(service.WebhookServiceOptions{
			Tx:         store,
			Jobs:       jobs,
			Financials: financials,
			Cache:      cache,
			Config:     cfg.Webhook,
			Logger:     logger,
			Metrics:    obs.metrics(),
		})
		if err != nil {
			return ServiceContainer{}, fmt.Errorf("webhook service: %w", err)
		}
	} else {
		logger.Info("webhook secret not set; portal webhooks disabled")
	}

	return ServiceContainer{
		Store:          store,
		Cache:          cache,
		Jobs:           jobs,
		Financials:     financials,
		PurchaseOrders: purchaseOrders,
		Payments:       payments,
		Webhooks:       webhooks,
		Observability:  obs,
	}, nil
}

// buildNoticeSender returns nil when neither notice destination is configured.
//
//nolint:ireturn // PaymentService treats a nil NoticeSender as record-only
func buildNoticeSender(cfg config.NoticeConfig, logger *slog.Logger) (core.NoticeSender, error) {
	if cfg.PartnerURL == "" && cfg.DownstreamURL == "" {
		logger.Info("notice destinations not configured; payment steps are recorded without delivery")
		return nil, nil
	}
	sender, err := notices.NewSender(notices.Options{Config: cfg})
	if err != nil {
		return nil, fmt.Errorf("notice sender: %w", err)
	}
	return sender, nil
}

// buildObservability configures metrics and alert fan-out.
func buildObservability(logger *slog.Logger, cfg *config.AppConfig, cache core.CacheRepository) ObservabilityContainer {
	var metricsSink *statsd.Client
	if cfg.Observability.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled:    true,
			Address:    cfg.Observability.Metrics.StatsdAddress,
			Prefix:     cfg.Observability.Metrics.Prefix,
			Logger:     logger,
			GlobalTags: map[string]string{"env": cfg.Observability.Metrics.Env},
		})
		if err != nil {
			logger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	obs := ObservabilityContainer{MetricsSink: metricsSink}
	obs.Alerts = alerting.NewService(alerting.Options{
		Logger:      logger,
		Sinks:       buildAlertSinks(logger, cfg.Observability.Notifications, cfg.HTTP.BaseURL),
		Cache:       cache,
		SuppressFor: cfg.Integrity.AlertSuppression,
		Metrics:     obs.metrics(),
	})
	return obs
}

// buildAlertSinks builds the enabled Slack and PagerDuty sinks. A sink that fails to initialise is
// logged and skipped.
func buildAlertSinks(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig, baseURL string) []alerting.SinkRegistration {
	if !cfg.Enabled {
		return nil
	}
	sinks := make([]alerting.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		prefix := ""
		if baseURL != "" {
			prefix = baseURL + "/api/jobs/"
		}
		client, err := slack.NewClient(slack.Config{
			WebhookURL:   cfg.Slack.WebhookURL,
			Channel:      cfg.Slack.Channel,
			Username:     cfg.Slack.Username,
			Timeout:      cfg.Timeout,
			RetryLimit:   cfg.RetryLimit,
			JobURLPrefix: prefix,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, alerting.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, alerting.SinkRegistration{Name: "pagerduty", Sink: client})
		}
	}
	return sinks
}
