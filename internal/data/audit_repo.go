package data

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/domain/model"
)

const defaultAuditListLimit = 100

// AuditRepo appends to job_audit_log.
type AuditRepo struct {
	q dbtx
}

var _ core.AuditRepository = (*AuditRepo)(nil)

// Insert copies entries in with the COPY protocol. An empty slice is a no-op.
func (r *AuditRepo) Insert(ctx context.Context, entries []model.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		jobID, err := parseID("job", e.JobID)
		if err != nil {
			return err
		}
		rows = append(rows, []any{jobID, e.Field, e.OldValue, e.NewValue, e.Actor})
	}
	_, err := r.q.CopyFrom(ctx,
		pgx.Identifier{"job_audit_log"},
		[]string{"job_id", "field", "old_value", "new_value", "actor"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// ListByJob returns the newest entries of a job first.
func (r *AuditRepo) ListByJob(ctx context.Context, jobID string, limit int) ([]model.AuditEntry, error) {
	uid, err := parseID("job", jobID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultAuditListLimit
	}
	rows, err := r.q.Query(ctx, `
SELECT id, job_id, field, old_value, new_value, actor, created_at
FROM job_audit_log
WHERE job_id = $1
ORDER BY id DESC
LIMIT $2`, uid, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.AuditEntry])
}
