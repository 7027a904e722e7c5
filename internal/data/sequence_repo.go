package data

import (
	"context"

	"github.com/target/printbroker-api/internal/core"
	apperrors "github.com/target/printbroker-api/internal/errors"
)

// SequenceRepo issues values from the sequence_counters table. The row lock taken by the UPDATE
// serializes concurrent callers until their transaction ends, so a rolled-back transaction
// releases its values for reuse instead of leaving a gap.
type SequenceRepo struct {
	q dbtx
}

var _ core.SequenceRepository = (*SequenceRepo)(nil)

const advanceSequenceQuery = `
UPDATE sequence_counters
SET value = value + $2, updated_at = now()
WHERE name = $1
RETURNING value`

// Next returns the next value of the named counter.
func (r *SequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	return r.NextRange(ctx, name, 1)
}

// NextRange reserves n contiguous values and returns the first.
func (r *SequenceRepo) NextRange(ctx context.Context, name string, n int) (int64, error) {
	if n < 1 {
		return 0, apperrors.ValidationField("count", "sequence range must reserve at least one value")
	}
	var last int64
	if err := r.q.QueryRow(ctx, advanceSequenceQuery, name, n).Scan(&last); err != nil {
		return 0, notFound(err, "sequence", name)
	}
	return last - int64(n) + 1, nil
}

// Current returns the last issued value.
func (r *SequenceRepo) Current(ctx context.Context, name string) (int64, error) {
	var v int64
	if err := r.q.QueryRow(ctx, `SELECT value FROM sequence_counters WHERE name = $1`, name).Scan(&v); err != nil {
		return 0, notFound(err, "sequence", name)
	}
	return v, nil
}
