// Package mocks provides gomock implementations of the print broker ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	jobs := mocks.NewMockJobRepository(ctrl)
//	jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)
//
// Transactions are driven through MockTxManager by invoking the callback with mock repositories,
// see Repos and ExpectTx.
package mocks

// Next, NextRange, Current
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=sequence_repository_mock.go github.com/target/printbroker-api/internal/core SequenceRepository

// Insert, GetByID, GetForUpdate, GetByExternalIDForUpdate, UpdateDetails, UpdatePayments, List, ListMissingIdentity
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_repository_mock.go github.com/target/printbroker-api/internal/core JobRepository

// InsertMany, ListByJob
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=component_repository_mock.go github.com/target/printbroker-api/internal/core ComponentRepository

// Create, Update, GetByID, ListByJob
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=purchase_order_repository_mock.go github.com/target/printbroker-api/internal/core PurchaseOrderRepository

// Upsert, GetByJob
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=profit_split_repository_mock.go github.com/target/printbroker-api/internal/core ProfitSplitRepository

// Insert, ListByJob
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=audit_repository_mock.go github.com/target/printbroker-api/internal/core AuditRepository

// WithinTx
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=tx_manager_mock.go github.com/target/printbroker-api/internal/core TxManager

// Set, Get, Delete, SetIfNotExists, Health
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/target/printbroker-api/internal/core CacheRepository

// SendPartnerPaymentNotice, SendDownstreamInvoice
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=notice_sender_mock.go github.com/target/printbroker-api/internal/core NoticeSender
