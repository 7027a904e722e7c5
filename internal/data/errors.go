package data

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

// dbtx is the query surface shared by pgx.Tx and *pgx.Conn.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// parseID rejects malformed identifiers as not found before they reach Postgres.
func parseID(kind, id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperrors.NotFoundf("%s %q not found", kind, id)
	}
	return u, nil
}

// notFound converts pgx.ErrNoRows into a NotFound naming the missing record and maps everything else.
func notFound(err error, kind, id string) error {
	if apperrors.IsNotFound(apperrors.MapDBError(err)) {
		return apperrors.NotFoundf("%s %q not found", kind, id)
	}
	return apperrors.MapDBError(err)
}
