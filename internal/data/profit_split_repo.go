package data

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/domain/model"
)

// ProfitSplitRepo stores the memoised split of each job.
type ProfitSplitRepo struct {
	q     dbtx
	clock TimeProvider
}

var _ core.ProfitSplitRepository = (*ProfitSplitRepo)(nil)

const profitSplitColumns = `
  job_id, sell_price, total_cost, paper_markup, gross_margin, margin_percent, partner_share,
  broker_share, partner_total, broker_total, is_healthy, warnings, source, calculated_at`

// Upsert replaces the job's split. CalculatedAt is stamped when unset.
func (r *ProfitSplitRepo) Upsert(ctx context.Context, s *model.ProfitSplit) (*model.ProfitSplit, error) {
	jobID, err := parseID("job", s.JobID)
	if err != nil {
		return nil, err
	}
	at := s.CalculatedAt
	if at.IsZero() {
		at = r.clock.Now()
	}
	warnings := s.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	rows, err := r.q.Query(ctx, `
INSERT INTO profit_splits (`+profitSplitColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (job_id) DO UPDATE SET
  sell_price = EXCLUDED.sell_price,
  total_cost = EXCLUDED.total_cost,
  paper_markup = EXCLUDED.paper_markup,
  gross_margin = EXCLUDED.gross_margin,
  margin_percent = EXCLUDED.margin_percent,
  partner_share = EXCLUDED.partner_share,
  broker_share = EXCLUDED.broker_share,
  partner_total = EXCLUDED.partner_total,
  broker_total = EXCLUDED.broker_total,
  is_healthy = EXCLUDED.is_healthy,
  warnings = EXCLUDED.warnings,
  source = EXCLUDED.source,
  calculated_at = EXCLUDED.calculated_at
RETURNING`+profitSplitColumns,
		jobID, s.SellPrice, s.TotalCost, s.PaperMarkup, s.GrossMargin, s.MarginPercent, s.PartnerShare,
		s.BrokerShare, s.PartnerTotal, s.BrokerTotal, s.IsHealthy, warnings, s.Source, at,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.ProfitSplit])
}

// GetByJob returns the stored split of a job.
func (r *ProfitSplitRepo) GetByJob(ctx context.Context, jobID string) (*model.ProfitSplit, error) {
	uid, err := parseID("profit split for job", jobID)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, `SELECT`+profitSplitColumns+` FROM profit_splits WHERE job_id = $1`, uid)
	if err != nil {
		return nil, err
	}
	split, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.ProfitSplit])
	if err != nil {
		return nil, notFound(err, "profit split for job", jobID)
	}
	return split, nil
}
