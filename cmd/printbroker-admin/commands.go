package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/printbroker-api/internal/bootstrap"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/data"
	"github.com/target/printbroker-api/internal/domain/model"
	apperrors "github.com/target/printbroker-api/internal/errors"
	"github.com/target/printbroker-api/internal/migrate"
	"github.com/target/printbroker-api/internal/service"
)

const recomputePageSize = 200

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseTimeoutFlags("migrate", defaultMigrationTimeout, args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, closeDB, err := cmdCtx.connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	cmdCtx.Logger.Info("running database migrations")
	if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
		return migrateErr
	}
	cmdCtx.Logger.Info("migrations completed successfully")
	return nil
}

func runMigrationStatus(cmdCtx *commandContext, args []string) error {
	opts, err := parseTimeoutFlags("migrate-status", defaultCommandTimeout, args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, closeDB, err := cmdCtx.connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	status, err := migrate.Status(ctx, db)
	if err != nil {
		return err
	}
	return printMigrationStatus(cmdCtx.Out, status)
}

func printMigrationStatus(w io.Writer, status []migrate.Migration) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "VERSION\tAPPLIED AT\n"); err != nil {
		return err
	}
	for _, m := range status {
		applied := "pending"
		if m.AppliedAt != nil {
			applied = m.AppliedAt.UTC().Format(time.RFC3339)
		}
		if err := writef(tw, "%s\t%s\n", m.Version, applied); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runSequenceShow(cmdCtx *commandContext, args []string) error {
	opts, err := parseTimeoutFlags("sequence-show", defaultCommandTimeout, args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, closeDB, err := cmdCtx.connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	store := data.NewStore(db, data.StoreOptions{Logger: cmdCtx.Logger})
	values := make(map[string]int64, 2)
	err = store.WithinTx(ctx, core.TxOptions{ReadOnly: true}, func(ctx context.Context, r core.Repos) error {
		for _, name := range []string{core.SequenceJobNumber, core.SequenceBaseJobID} {
			v, seqErr := r.Sequences.Current(ctx, name)
			if seqErr != nil {
				return seqErr
			}
			values[name] = v
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := writef(cmdCtx.Out, "%-12s %d (last issued J-%d)\n", core.SequenceJobNumber,
		values[core.SequenceJobNumber], values[core.SequenceJobNumber]); err != nil {
		return err
	}
	return writef(cmdCtx.Out, "%-12s %d\n", core.SequenceBaseJobID, values[core.SequenceBaseJobID])
}

type auditOptions struct {
	Timeout time.Duration
	JSON    bool
}

func parseAuditFlags(args []string) (auditOptions, error) {
	fs := newFlagSet("integrity-audit")
	opts := auditOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration of the scan")
	fs.BoolVar(&opts.JSON, "json", false, "Print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return auditOptions{}, err
	}
	if opts.Timeout <= 0 {
		return auditOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runIntegrityAudit(cmdCtx *commandContext, args []string) error {
	opts, err := parseAuditFlags(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, closeDB, err := cmdCtx.connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	// alerts fan out to the configured sinks, without suppression
	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{Config: &cmdCtx.Config, DB: db, Logger: cmdCtx.Logger})
	if err != nil {
		return err
	}
	runner, err := bootstrap.NewIntegrityAuditor(&bootstrap.ServiceOrchestrationConfig{
		Config:   &cmdCtx.Config,
		Services: services,
		DB:       db,
	}, cmdCtx.Logger)
	if err != nil {
		return err
	}
	report, err := runner.ScanOnce(ctx)
	if err != nil {
		return err
	}
	if opts.JSON {
		enc := json.NewEncoder(cmdCtx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printIntegrityReport(cmdCtx.Out, report)
}

func printIntegrityReport(w io.Writer, report *service.IntegrityReport) error {
	if err := writef(w, "Cutover: %s\nViolations: %d\n", report.Cutover.UTC().Format(time.RFC3339), len(report.Violations)); err != nil {
		return err
	}
	if len(report.Violations) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "\nJOB ID\tJOB NO\tCREATED AT\tMISSING\n"); err != nil {
		return err
	}
	for _, j := range report.Violations {
		if err := writef(tw, "%s\t%s\t%s\t%s\n", j.ID, j.JobNo, j.CreatedAt.UTC().Format(time.RFC3339),
			strings.Join(missingIdentity(j), ",")); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if report.Truncated {
		return writef(w, "\nReport truncated at the batch limit; more violations may exist.\n")
	}
	return nil
}

func missingIdentity(j *model.Job) []string {
	var out []string
	if j.BaseJobID == nil || *j.BaseJobID == "" {
		out = append(out, "base_job_id")
	}
	if j.Pathway == nil || *j.Pathway == "" {
		out = append(out, "pathway")
	}
	return out
}

type recomputeOptions struct {
	Timeout time.Duration
	Status  string
}

func parseRecomputeFlags(args []string) (recomputeOptions, error) {
	fs := newFlagSet("recompute-splits")
	opts := recomputeOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", 30*time.Minute, "Maximum duration of the whole run")
	fs.StringVar(&opts.Status, "status", "", "Only recompute jobs in this status")
	if err := fs.Parse(args); err != nil {
		return recomputeOptions{}, err
	}
	if opts.Timeout <= 0 {
		return recomputeOptions{}, errors.New("--timeout must be greater than zero")
	}
	opts.Status = strings.ToUpper(strings.TrimSpace(opts.Status))
	return opts, nil
}

type jobLister interface {
	List(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error)
}

type recomputeFunc func(ctx context.Context, jobID string) (*model.ProfitSplit, error)

type recomputeSummary struct {
	Recomputed  int
	Unpriceable int
	Failed      int
}

func runRecomputeSplits(cmdCtx *commandContext, args []string) error {
	opts, err := parseRecomputeFlags(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, closeDB, err := cmdCtx.connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	var redisCloser func()
	deps := &bootstrap.ServiceDeps{Config: &cmdCtx.Config, DB: db, Logger: cmdCtx.Logger}
	if client, closeRedis, redisErr := cmdCtx.connectRedis(ctx); redisErr == nil {
		deps.RedisClient = client
		redisCloser = closeRedis
	} else if !errors.Is(redisErr, errRedisNotConfigured) {
		cmdCtx.Logger.Warn("redis unavailable; cached splits will expire on their own", "error", redisErr)
	}
	if redisCloser != nil {
		defer redisCloser()
	}

	services, err := bootstrap.NewServices(deps)
	if err != nil {
		return err
	}

	listOpts := model.JobListOptions{}
	if opts.Status != "" {
		status := model.JobStatus(opts.Status)
		listOpts.Status = &status
	}
	summary, err := recomputeAll(ctx, services.Jobs, services.Financials.Recompute, listOpts)
	cmdCtx.Logger.Info("recompute splits finished",
		"recomputed", summary.Recomputed,
		"unpriceable", summary.Unpriceable,
		"failed", summary.Failed,
	)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d splits failed to recompute", summary.Failed)
	}
	return nil
}

// recomputeAll pages through jobs newest first and recomputes each split in its own
// transaction. Jobs that cannot be priced are counted, not failed.
func recomputeAll(ctx context.Context, jobs jobLister, recompute recomputeFunc, opts model.JobListOptions) (recomputeSummary, error) {
	var summary recomputeSummary
	opts.Limit = recomputePageSize
	for offset := 0; ; offset += recomputePageSize {
		opts.Offset = offset
		page, err := jobs.List(ctx, opts)
		if err != nil {
			return summary, fmt.Errorf("list jobs at offset %d: %w", offset, err)
		}
		for _, j := range page {
			if _, err := recompute(ctx, j.ID); err != nil {
				if ctx.Err() != nil {
					return summary, ctx.Err()
				}
				if apperrors.IsPrecondition(err) {
					summary.Unpriceable++
					continue
				}
				summary.Failed++
				continue
			}
			summary.Recomputed++
		}
		if len(page) < recomputePageSize {
			return summary, nil
		}
	}
}

type clearCacheOptions struct {
	JobID string
}

func parseClearCacheFlags(args []string) (clearCacheOptions, error) {
	fs := newFlagSet("clear-split-cache")
	opts := clearCacheOptions{}
	fs.StringVar(&opts.JobID, "job", "", "Job id whose cached split is dropped (required)")
	if err := fs.Parse(args); err != nil {
		return clearCacheOptions{}, err
	}
	if opts.JobID = strings.TrimSpace(opts.JobID); opts.JobID == "" {
		return clearCacheOptions{}, errors.New("--job is required")
	}
	return opts, nil
}

func runClearSplitCache(cmdCtx *commandContext, args []string) error {
	opts, err := parseClearCacheFlags(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	client, closeRedis, err := cmdCtx.connectRedis(ctx)
	if err != nil {
		return err
	}
	defer closeRedis()

	existed, err := data.NewRedisCacheRepo(client).Delete(ctx, core.ProfitSplitKey(opts.JobID))
	if err != nil {
		return err
	}
	return writef(cmdCtx.Out, "job %s: cached split removed=%t\n", opts.JobID, existed)
}
