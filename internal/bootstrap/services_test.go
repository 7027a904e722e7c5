package bootstrap

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/mocks"
	"go.uber.org/mock/gomock"
)

func TestGetEnabledServices(t *testing.T) {
	tests := []struct {
		name     string
		services string
		want     []string
	}{
		{name: "http only", services: "http", want: []string{"http"}},
		{name: "stable order", services: "integrity-auditor, http", want: []string{"http", "integrity-auditor"}},
		{name: "invalid", services: "reaper", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.AppConfig{Services: tt.services}
			assert.Equal(t, tt.want, GetEnabledServices(cfg))
		})
	}
	assert.Empty(t, GetEnabledServices(nil))
}

func TestValidateServiceConfig(t *testing.T) {
	require.Error(t, ValidateServiceConfig(nil))
	require.Error(t, ValidateServiceConfig(&config.AppConfig{Services: ""}))
	require.Error(t, ValidateServiceConfig(&config.AppConfig{Services: "http,bogus"}))
	require.NoError(t, ValidateServiceConfig(&config.AppConfig{Services: "http,integrity-auditor"}))
}

func TestBuildAlertSinks(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	cfg := config.ObservabilityNotificationsConfig{
		Enabled: true,
		Slack:   config.SlackNotificationConfig{Enabled: true, WebhookURL: "https://hooks.example.com/x"},
		PagerDuty: config.PagerDutyNotificationConfig{
			Enabled:    true,
			RoutingKey: "rk",
		},
	}

	sinks := buildAlertSinks(logger, cfg, "https://broker.example.com")
	require.Len(t, sinks, 2)
	assert.Equal(t, "slack", sinks[0].Name)
	assert.Equal(t, "pagerduty", sinks[1].Name)

	cfg.Enabled = false
	assert.Empty(t, buildAlertSinks(logger, cfg, ""))

	cfg.Enabled = true
	cfg.Slack.WebhookURL = ""
	cfg.PagerDuty.Enabled = false
	assert.Empty(t, buildAlertSinks(logger, cfg, ""), "a sink that cannot initialise is skipped")
}

func TestBuildNoticeSender(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	sender, err := buildNoticeSender(config.NoticeConfig{}, logger)
	require.NoError(t, err)
	assert.Nil(t, sender)

	sender, err = buildNoticeSender(config.NoticeConfig{PartnerURL: "https://partner.example.com/notices"}, logger)
	require.NoError(t, err)
	assert.NotNil(t, sender)
}

func TestHealthChecks(t *testing.T) {
	assert.Empty(t, healthChecks(nil, nil))

	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().Health(gomock.Any()).Return(nil)

	checks := healthChecks(nil, cache)
	require.Len(t, checks, 1)
	assert.Equal(t, "redis", checks[0].Name)
	assert.False(t, checks[0].Required)
	assert.NoError(t, checks[0].Check(context.Background()))
}

func TestNewServices_RequiresDatabase(t *testing.T) {
	_, err := NewServices(&ServiceDeps{Config: &config.AppConfig{}})
	require.Error(t, err)
}

func TestRunServicesWithShutdown_RejectsBadConfig(t *testing.T) {
	require.Error(t, RunServicesWithShutdown(context.Background(), nil))
	err := RunServicesWithShutdown(context.Background(), &ServiceOrchestrationConfig{
		Config: &config.AppConfig{Services: "bogus"},
	})
	require.Error(t, err)
}
