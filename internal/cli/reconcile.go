package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/eshaffer321/ledgermatch/internal/adapters/rowsource"
	"github.com/eshaffer321/ledgermatch/internal/application/service"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/config"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/logging"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/storage"
)

// RunReconcile loads the job and both files, reconciles them and prints the
// outcome to out.
func RunReconcile(ctx context.Context, cfg *config.Config, flags *ReconcileFlags, out io.Writer, logger *slog.Logger) error {
	job, err := config.LoadJob(flags.JobPath)
	if err != nil {
		return err
	}
	if fuzzy, forced := flags.fuzzyOverride(); forced {
		job.Rules.FuzzyDescription = fuzzy
	}

	rowsA, err := rowsource.LoadSheet(job.SourceA.File, job.SourceA.Sheet, job.SourceA.Columns)
	if err != nil {
		return fmt.Errorf("source A: %w", err)
	}
	rowsB, err := rowsource.LoadSheet(job.SourceB.File, job.SourceB.Sheet, job.SourceB.Columns)
	if err != nil {
		return fmt.Errorf("source B: %w", err)
	}
	logger.Debug("sources loaded", "rows_a", len(rowsA), "rows_b", len(rowsB))

	var repo storage.Repository
	if !flags.NoStore {
		store, err := storage.NewStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = store.Close() }()
		repo = store
	}

	svc := NewReconcileService(cfg, repo, logger)
	sourceA, sourceB := job.SourceA.Source(), job.SourceB.Source()

	if flags.Format == FormatTable {
		PrintHeader(out, sourceA.Label, sourceB.Label, job.Rules.FuzzyDescription)
	}

	run, err := svc.Reconcile(ctx, service.ReconcileRequest{
		RowsA:   rowsA,
		RowsB:   rowsB,
		SourceA: sourceA,
		SourceB: sourceB,
		Rules:   job.Rules,
	})
	if err != nil {
		return err
	}

	if flags.Format == FormatJSON {
		return PrintJSON(out, run)
	}
	PrintSummary(out, run, Sides{RowsA: rowsA, RowsB: rowsB, SourceA: sourceA, SourceB: sourceB})
	if repo != nil {
		fmt.Fprintf(out, "Recorded run %s\n", run.ID)
	}
	return nil
}

// NewLogger builds the command logger, forcing debug level when verbose
func NewLogger(cfg *config.Config, verbose bool, component string) *slog.Logger {
	loggingCfg := cfg.Observability.Logging
	if verbose {
		loggingCfg.Level = "debug"
	}
	return logging.WithComponent(logging.NewLogger(loggingCfg), component)
}
