package mocks

import (
	"context"

	"github.com/target/printbroker-api/internal/core"
	gomock "go.uber.org/mock/gomock"
)

// Repos bundles one mock per repository port.
type Repos struct {
	Sequences      *MockSequenceRepository
	Jobs           *MockJobRepository
	Components     *MockComponentRepository
	PurchaseOrders *MockPurchaseOrderRepository
	ProfitSplits   *MockProfitSplitRepository
	Audit          *MockAuditRepository
}

// NewRepos creates mock repositories on ctrl.
func NewRepos(ctrl *gomock.Controller) *Repos {
	return &Repos{
		Sequences:      NewMockSequenceRepository(ctrl),
		Jobs:           NewMockJobRepository(ctrl),
		Components:     NewMockComponentRepository(ctrl),
		PurchaseOrders: NewMockPurchaseOrderRepository(ctrl),
		ProfitSplits:   NewMockProfitSplitRepository(ctrl),
		Audit:          NewMockAuditRepository(ctrl),
	}
}

// Core returns the mocks as core.Repos.
func (r *Repos) Core() core.Repos {
	return core.Repos{
		Sequences:      r.Sequences,
		Jobs:           r.Jobs,
		Components:     r.Components,
		PurchaseOrders: r.PurchaseOrders,
		ProfitSplits:   r.ProfitSplits,
		Audit:          r.Audit,
	}
}

// ExpectTx makes tx run its callback against repos and return the callback's error.
// The returned call can be narrowed with Times or matched on options.
func ExpectTx(tx *MockTxManager, repos *Repos) *gomock.Call {
	return tx.EXPECT().WithinTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ core.TxOptions, fn func(context.Context, core.Repos) error) error {
			return fn(ctx, repos.Core())
		})
}
