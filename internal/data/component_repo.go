package data

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/domain/model"
)

// ComponentRepo stores job sub-components.
type ComponentRepo struct {
	q dbtx
}

var _ core.ComponentRepository = (*ComponentRepo)(nil)

const componentColumns = `id, job_id, name, vendor_id, owned_by_vendor, quantity, created_at`

// InsertMany writes all components in one batch round trip and returns them in input order.
func (r *ComponentRepo) InsertMany(ctx context.Context, jobID string, in []model.JobComponentInput) ([]model.JobComponent, error) {
	if len(in) == 0 {
		return nil, nil
	}
	uid, err := parseID("job", jobID)
	if err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	for _, c := range in {
		batch.Queue(`
INSERT INTO job_components (job_id, name, vendor_id, owned_by_vendor, quantity)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+componentColumns, uid, c.Name, c.VendorID, c.OwnedByVendor, c.Quantity)
	}

	br := r.q.SendBatch(ctx, batch)
	out := make([]model.JobComponent, 0, len(in))
	for range in {
		rows, qerr := br.Query()
		if qerr != nil {
			_ = br.Close()
			return nil, qerr
		}
		c, cerr := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.JobComponent])
		if cerr != nil {
			_ = br.Close()
			return nil, cerr
		}
		out = append(out, c)
	}
	if err := br.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByJob returns the components of a job in insertion order.
func (r *ComponentRepo) ListByJob(ctx context.Context, jobID string) ([]model.JobComponent, error) {
	uid, err := parseID("job", jobID)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+componentColumns+` FROM job_components WHERE job_id = $1 ORDER BY created_at, id`, uid)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.JobComponent])
}
