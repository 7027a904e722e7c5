package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/mocks"
	"github.com/target/printbroker-api/internal/observability/metrics"
	"github.com/target/printbroker-api/internal/observability/notify"
	"github.com/target/printbroker-api/internal/observability/statsd"
	"github.com/target/printbroker-api/internal/service/alerting"
	"github.com/target/printbroker-api/internal/testutil"
	"go.uber.org/mock/gomock"
)

func newIntegrityFixture(t *testing.T, batch int) (*IntegrityService, *mocks.Repos, *mocks.MockTxManager, *[]notify.IntegrityAlert, *statsd.Recorder) {
	t.Helper()
	ctrl := gomock.NewController(t)
	tx := mocks.NewMockTxManager(ctrl)
	repos := mocks.NewRepos(ctrl)
	rec := &statsd.Recorder{}
	var alerts []notify.IntegrityAlert
	svc := MustNewIntegrityService(IntegrityServiceOptions{
		Tx: tx,
		Alerts: alerting.NewService(alerting.Options{Sinks: []alerting.SinkRegistration{{
			Name: "capture",
			Sink: notify.SinkFunc(func(_ context.Context, a notify.IntegrityAlert) error {
				alerts = append(alerts, a)
				return nil
			}),
		}}}),
		Config:  config.IntegrityConfig{Interval: time.Minute, BatchSize: batch},
		Cutover: testJobsConfig.IdentityCutover,
		Metrics: rec,
	})
	return svc, repos, tx, &alerts, rec
}

func TestNewIntegrityService_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := NewIntegrityService(IntegrityServiceOptions{
		Tx:     mocks.NewMockTxManager(ctrl),
		Config: config.IntegrityConfig{Interval: time.Minute},
	})
	require.Error(t, err)
}

func TestIntegrityService_ScanAlertsEachViolation(t *testing.T) {
	svc, repos, tx, alerts, rec := newIntegrityFixture(t, 10)
	missingBase := testutil.JobWithPayments("job-1", model.PaymentState{})
	missingBase.BaseJobID = nil
	missingPathway := testutil.JobWithPayments("job-2", model.PaymentState{})
	missingPathway.Pathway = nil

	mocks.ExpectTx(tx, repos)
	repos.Jobs.EXPECT().ListMissingIdentity(gomock.Any(), testJobsConfig.IdentityCutover, 10).
		Return([]*model.Job{missingBase, missingPathway}, nil)

	report, err := svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Violations, 2)
	assert.False(t, report.Truncated)

	require.Len(t, *alerts, 2)
	assert.Equal(t, "job-1", (*alerts)[0].JobID)
	assert.Contains(t, (*alerts)[0].Message, "no base identifier")
	assert.Contains(t, (*alerts)[1].Message, "no pathway")
	assert.Equal(t, "integrity_auditor", (*alerts)[1].Details["source"])

	gauges := rec.Named(metrics.IntegrityScan + ".violations")
	require.Len(t, gauges, 1)
	assert.InDelta(t, 2.0, gauges[0].Value, 0.001)
}

func TestIntegrityService_ScanTruncated(t *testing.T) {
	svc, repos, tx, _, _ := newIntegrityFixture(t, 1)
	job := testutil.JobWithPayments("job-1", model.PaymentState{})
	job.BaseJobID = nil

	mocks.ExpectTx(tx, repos)
	repos.Jobs.EXPECT().ListMissingIdentity(gomock.Any(), gomock.Any(), 1).Return([]*model.Job{job}, nil)

	report, err := svc.Scan(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Truncated)
}

func TestIntegrityService_ScanError(t *testing.T) {
	svc, repos, tx, alerts, rec := newIntegrityFixture(t, 10)
	mocks.ExpectTx(tx, repos)
	repos.Jobs.EXPECT().ListMissingIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db gone"))

	_, err := svc.Scan(context.Background())
	require.Error(t, err)
	assert.Empty(t, *alerts)
	scans := rec.Named(metrics.IntegrityScan)
	require.Len(t, scans, 1)
	assert.Equal(t, metrics.ResultError, scans[0].Tags["result"])
}

func TestIntegrityService_RunStopsOnCancel(t *testing.T) {
	svc, repos, tx, _, _ := newIntegrityFixture(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mocks.ExpectTx(tx, repos).AnyTimes()
	repos.Jobs.EXPECT().ListMissingIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
