package data

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/data/pgxutil"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

// StoreOptions configures a Store.
type StoreOptions struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// Store implements core.TxManager over a database/sql pool using native pgx transactions.
type Store struct {
	DB     *sql.DB
	logger *slog.Logger
	clock  TimeProvider
}

var _ core.TxManager = (*Store)(nil)

// NewStore creates a Store.
func NewStore(db *sql.DB, opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.TimeProvider
	if clock == nil {
		clock = RealTimeProvider{}
	}
	return &Store{DB: db, logger: logger.With("component", "store"), clock: clock}
}

// WithinTx runs fn in one transaction with repositories bound to it. Database errors are mapped to
// AppErrors so callers can classify them.
func (s *Store) WithinTx(ctx context.Context, opts core.TxOptions, fn func(ctx context.Context, r core.Repos) error) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	err := pgxutil.WithPgxTx(ctx, s.DB, pgxutil.TxConfig{
		Opts:             &sql.TxOptions{ReadOnly: opts.ReadOnly},
		AcquireTimeout:   opts.AcquireTimeout,
		StatementTimeout: opts.StatementTimeout,
		LockTimeout:      opts.LockTimeout,
		Fn: func(tx pgx.Tx) error {
			return fn(ctx, s.bind(tx))
		},
	})
	if err != nil {
		mapped := apperrors.MapDBError(err)
		if apperrors.IsRetryable(mapped) {
			s.logger.WarnContext(ctx, "transaction aborted", "error", err, "read_only", opts.ReadOnly)
		}
		return mapped
	}
	return nil
}

// Ping verifies the pool can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) bind(q dbtx) core.Repos {
	return core.Repos{
		Sequences:      &SequenceRepo{q: q},
		Jobs:           &JobRepo{q: q, clock: s.clock},
		Components:     &ComponentRepo{q: q},
		PurchaseOrders: &PurchaseOrderRepo{q: q, clock: s.clock},
		ProfitSplits:   &ProfitSplitRepo{q: q, clock: s.clock},
		Audit:          &AuditRepo{q: q},
	}
}
