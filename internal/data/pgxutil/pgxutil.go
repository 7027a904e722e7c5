// Package pgxutil bridges database/sql pools to native pgx transactions.
package pgxutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

// TxConfig groups parameters for WithPgxTx to keep parameter count at 3.
type TxConfig struct {
	Opts *sql.TxOptions
	// AcquireTimeout bounds the wait for a pooled connection. Zero waits as long as ctx allows.
	AcquireTimeout time.Duration
	// StatementTimeout and LockTimeout are set with SET LOCAL for the life of the transaction.
	StatementTimeout time.Duration
	LockTimeout      time.Duration
	Fn               func(pgx.Tx) error
}

// ToPgxTxOptions converts sql.TxOptions to pgx.TxOptions.
func ToPgxTxOptions(opts *sql.TxOptions) pgx.TxOptions {
	var pgxOpts pgx.TxOptions
	if opts == nil {
		return pgxOpts
	}
	pgxOpts.IsoLevel = ToPgxIsoLevel(opts.Isolation)
	pgxOpts.AccessMode = ToPgxAccessMode(opts.ReadOnly)
	return pgxOpts
}

func ToPgxIsoLevel(level sql.IsolationLevel) pgx.TxIsoLevel {
	switch level {
	case sql.LevelSerializable, sql.LevelLinearizable:
		return pgx.Serializable
	case sql.LevelRepeatableRead, sql.LevelSnapshot:
		return pgx.RepeatableRead
	case sql.LevelReadCommitted, sql.LevelWriteCommitted:
		return pgx.ReadCommitted
	case sql.LevelReadUncommitted:
		return pgx.ReadUncommitted
	default:
		return pgx.TxIsoLevel("") // server default
	}
}

func ToPgxAccessMode(readOnly bool) pgx.TxAccessMode {
	if readOnly {
		return pgx.ReadOnly
	}
	return pgx.ReadWrite
}

// acquire checks a connection out of the pool, failing with a transient error when the pool stays
// exhausted past timeout.
func acquire(ctx context.Context, db *sql.DB, timeout time.Duration) (*sql.Conn, error) {
	if timeout <= 0 {
		conn, err := db.Conn(ctx)
		if err != nil {
			return nil, fmt.Errorf("get conn from pool: %w", err)
		}
		return conn, nil
	}

	acquireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn, err := db.Conn(acquireCtx)
	if err == nil {
		return conn, nil
	}
	if ctx.Err() == nil && errors.Is(acquireCtx.Err(), context.DeadlineExceeded) {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeTransient,
			"no database connection available within %s", timeout)
	}
	return nil, fmt.Errorf("get conn from pool: %w", err)
}

// WithPgxConn acquires a *pgx.Conn via the stdlib bridge and executes fn with it.
func WithPgxConn(ctx context.Context, db *sql.DB, fn func(*pgx.Conn) error) error {
	return withPgxConnTimeout(ctx, db, 0, fn)
}

func withPgxConnTimeout(ctx context.Context, db *sql.DB, timeout time.Duration, fn func(*pgx.Conn) error) error {
	conn, err := acquire(ctx, db, timeout)
	if err != nil {
		return err
	}
	defer func() {
		// close returns the connection to the pool; failure is best-effort
		_ = conn.Close()
	}()

	return conn.Raw(func(dc any) error {
		std, ok := dc.(*stdlib.Conn)
		if !ok {
			return errors.New("unexpected driver connection type; expected *stdlib.Conn")
		}
		return fn(std.Conn())
	})
}

// WithPgxTx runs cfg.Fn within a pgx transaction using the stdlib bridge. Fn's error rolls back.
func WithPgxTx(ctx context.Context, db *sql.DB, cfg TxConfig) error {
	return withPgxConnTimeout(ctx, db, cfg.AcquireTimeout, func(pgxConn *pgx.Conn) error {
		tx, err := pgxConn.BeginTx(ctx, ToPgxTxOptions(cfg.Opts))
		if err != nil {
			return fmt.Errorf("begin pgx tx: %w", err)
		}
		defer func() {
			// rollback after commit returns ErrTxClosed and is ignored
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}()
		if err := SetLocalTimeouts(ctx, tx, cfg.StatementTimeout, cfg.LockTimeout); err != nil {
			return err
		}
		if fnErr := cfg.Fn(tx); fnErr != nil {
			return fnErr
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			return fmt.Errorf("commit pgx tx: %w", commitErr)
		}
		return nil
	})
}

// SetLocalTimeouts applies transaction-scoped statement and lock timeouts. Zero leaves the server default.
func SetLocalTimeouts(ctx context.Context, tx pgx.Tx, statement, lock time.Duration) error {
	settings := []struct {
		name string
		d    time.Duration
	}{
		{"statement_timeout", statement},
		{"lock_timeout", lock},
	}
	for _, s := range settings {
		if s.d <= 0 {
			continue
		}
		ms := strconv.FormatInt(s.d.Milliseconds(), 10)
		if _, err := tx.Exec(ctx, "SELECT set_config($1, $2, true)", s.name, ms); err != nil {
			return fmt.Errorf("set local %s: %w", s.name, err)
		}
	}
	return nil
}
