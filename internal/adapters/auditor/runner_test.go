package auditor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/mocks"
	"go.uber.org/mock/gomock"
)

var cutover = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNewRunner_RequiresDatabase(t *testing.T) {
	_, err := NewRunner(RunnerOptions{Config: config.IntegrityConfig{Interval: time.Minute}, Cutover: cutover})
	require.Error(t, err)
}

func TestNewRunner_PropagatesServiceErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := NewRunner(RunnerOptions{Tx: mocks.NewMockTxManager(ctrl), Config: config.IntegrityConfig{Interval: time.Minute}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cutover")
}

func TestRunner_ScanOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	tx := mocks.NewMockTxManager(ctrl)
	repos := mocks.NewRepos(ctrl)
	mocks.ExpectTx(tx, repos).Times(1)
	repos.Jobs.EXPECT().ListMissingIdentity(gomock.Any(), cutover, 10).
		Return([]*model.Job{{ID: "job-9", JobNo: "J-9", CreatedAt: cutover.Add(time.Hour)}}, nil)

	r, err := NewRunner(RunnerOptions{
		Tx:      tx,
		Config:  config.IntegrityConfig{Interval: time.Minute, BatchSize: 10},
		Cutover: cutover,
	})
	require.NoError(t, err)

	report, err := r.ScanOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "J-9", report.Violations[0].JobNo)
	assert.False(t, report.Truncated)
}
