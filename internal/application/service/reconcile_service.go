package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
	"github.com/eshaffer321/ledgermatch/internal/domain/rows"
	"github.com/eshaffer321/ledgermatch/internal/domain/validator"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/storage"
)

var (
	// ErrInvalidRequest marks configuration problems the caller must fix
	ErrInvalidRequest = errors.New("invalid reconciliation request")

	// ErrInconsistentResult means the engine output failed validation
	ErrInconsistentResult = errors.New("inconsistent matching result")
)

// ReconcileRequest holds everything needed for one reconciliation.
type ReconcileRequest struct {
	RowsA   []rows.Row
	RowsB   []rows.Row
	SourceA matcher.SourceConfig
	SourceB matcher.SourceConfig
	Rules   matcher.MatchingRules
}

// ReconcileService validates requests, runs the matching engine and records
// every run against its own identifier.
type ReconcileService struct {
	engine  *matcher.Engine
	storage storage.Repository
	logger  *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewReconcileService creates a new reconcile service. store may be nil, in
// which case runs are not persisted.
func NewReconcileService(engine *matcher.Engine, store storage.Repository, logger *slog.Logger) *ReconcileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileService{
		engine:  engine,
		storage: store,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Reconcile runs one reconciliation and returns the recorded run.
// Configuration errors wrap ErrInvalidRequest and are not persisted.
func (s *ReconcileService) Reconcile(ctx context.Context, req ReconcileRequest) (*storage.Run, error) {
	if err := matcher.ValidateConfig(req.SourceA, req.SourceB, req.Rules); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	run := &storage.Run{
		ID:           s.newID(),
		SourceALabel: req.SourceA.Label,
		SourceBLabel: req.SourceB.Label,
		Rules:        req.Rules,
		Status:       storage.RunStatusRunning,
		StartedAt:    s.now(),
		RowCountA:    len(req.RowsA),
		RowCountB:    len(req.RowsB),
	}
	logger := s.logger.With("run_id", run.ID)
	logger.Info("reconciliation started",
		"source_a", run.SourceALabel,
		"source_b", run.SourceBLabel,
		"rows_a", run.RowCountA,
		"rows_b", run.RowCountB,
		"fuzzy", req.Rules.FuzzyDescription)

	result, err := s.engine.Run(ctx, matcher.Input{
		RowsA:   req.RowsA,
		RowsB:   req.RowsB,
		SourceA: req.SourceA,
		SourceB: req.SourceB,
		Rules:   req.Rules,
	})

	completed := s.now()
	run.CompletedAt = &completed
	if err != nil {
		run.Status = storage.RunStatusFailed
		run.ErrorMessage = err.Error()
		logger.Error("reconciliation failed", "error", err)
		if saveErr := s.save(run); saveErr != nil {
			logger.Error("failed to record failed run", "error", saveErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if v := validator.ValidateResult(result, run.RowCountA, run.RowCountB); !v.Valid {
		run.Status = storage.RunStatusFailed
		run.ErrorMessage = "inconsistent result: " + v.Reason
		logger.Error("engine produced an inconsistent result", "problems", len(v.Problems), "reason", v.Reason)
		if saveErr := s.save(run); saveErr != nil {
			logger.Error("failed to record failed run", "error", saveErr)
		}
		return nil, fmt.Errorf("%w: %s", ErrInconsistentResult, v.Reason)
	}

	run.Status = storage.RunStatusCompleted
	run.ApplyResult(result)

	if err := s.save(run); err != nil {
		return nil, fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}

	logger.Info("reconciliation recorded",
		"matched", run.MatchedCount,
		"exceptions", run.ExceptionCount,
		"variance", run.Variance,
		"duration", completed.Sub(run.StartedAt))

	return run, nil
}

func (s *ReconcileService) save(run *storage.Run) error {
	if s.storage == nil {
		return nil
	}
	return s.storage.SaveRun(run)
}
