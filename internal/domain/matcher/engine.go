// Package matcher reconciles two tabular record sets by pairing rows that
// describe the same transaction.
//
// A run goes through five passes in order:
//   - Candidate scoring: amount and date hard gates, then reference and
//     description signals, for every (A-row, B-row) pair
//   - Greedy one-to-one assignment over each A-row's top candidates
//   - Optional semantic fuzzy matching of the leftovers (external service)
//   - Exception classification of whatever is still unmatched
//   - Variance: signed difference of unmatched totals
//
// Example usage:
//
//	engine := matcher.NewEngine(semanticMatcher, matcher.DefaultOptions(), logger)
//	result, err := engine.Run(ctx, matcher.Input{
//		RowsA: bankRows, RowsB: ledgerRows,
//		SourceA: bank, SourceB: ledger,
//		Rules: matcher.DefaultRules(),
//	})
package matcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eshaffer321/ledgermatch/internal/domain/rows"
)

// Options tunes the engine. Zero values are replaced by DefaultOptions.
type Options struct {
	MinAssignScore     int
	MaxCandidates      int
	FuzzyBatchSize     int
	FuzzyMaxBatches    int
	FuzzyMinConfidence int
	ClassifySampleSize int
	CallTimeout        time.Duration
	Netting            rows.NettingRule
}

// DefaultOptions returns the standard engine settings
func DefaultOptions() Options {
	return Options{
		MinAssignScore:     DefaultMinAssignScore,
		MaxCandidates:      DefaultMaxCandidates,
		FuzzyBatchSize:     30,
		FuzzyMaxBatches:    3,
		FuzzyMinConfidence: 70,
		ClassifySampleSize: 30,
		CallTimeout:        18 * time.Second,
		Netting:            rows.DebitCreditNetting,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinAssignScore <= 0 {
		o.MinAssignScore = d.MinAssignScore
	}
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = d.MaxCandidates
	}
	if o.FuzzyBatchSize <= 0 {
		o.FuzzyBatchSize = d.FuzzyBatchSize
	}
	if o.FuzzyMaxBatches <= 0 {
		o.FuzzyMaxBatches = d.FuzzyMaxBatches
	}
	if o.FuzzyMinConfidence <= 0 {
		o.FuzzyMinConfidence = d.FuzzyMinConfidence
	}
	if o.ClassifySampleSize <= 0 {
		o.ClassifySampleSize = d.ClassifySampleSize
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = d.CallTimeout
	}
	if o.Netting == nil {
		o.Netting = d.Netting
	}
	return o
}

// Classification fallbacks
const (
	reasonUnclassified  = "Unclassified"
	reasonUnmatchedItem = "Unmatched item"
)

// Engine runs reconciliations. It holds no per-run state, so one Engine may
// serve concurrent runs.
type Engine struct {
	semantic SemanticMatcher
	opts     Options
	logger   *slog.Logger
}

// NewEngine creates an engine. A nil semantic matcher disables the fuzzy
// pass and sends every exception straight to the fallback category.
func NewEngine(semantic SemanticMatcher, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		semantic: semantic,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// run holds the mutable state of one Run call
type run struct {
	in       Input
	fieldsA  []rowFields
	fieldsB  []rowFields
	matched  []MatchPair
	matchedA []bool
	matchedB []bool
}

// Run reconciles in.RowsA against in.RowsB.
// Semantic service failures never surface here; they only reduce what the
// fuzzy and classification passes contribute. An error is returned only for
// malformed column definitions.
func (e *Engine) Run(ctx context.Context, in Input) (*MatchingResult, error) {
	if err := in.SourceA.Columns.Validate(); err != nil {
		return nil, fmt.Errorf("source A columns: %w", err)
	}
	if err := in.SourceB.Columns.Validate(); err != nil {
		return nil, fmt.Errorf("source B columns: %w", err)
	}
	if !in.SourceA.Columns.Has(rows.ColumnAmount) || !in.SourceB.Columns.Has(rows.ColumnAmount) {
		e.logger.Warn("no amount column on one side, nothing can be scored",
			"source_a", in.SourceA.Label,
			"source_b", in.SourceB.Label)
	}

	r := &run{
		in:      in,
		fieldsA: make([]rowFields, len(in.RowsA)),
		fieldsB: make([]rowFields, len(in.RowsB)),
	}
	for i, row := range in.RowsA {
		r.fieldsA[i] = extractFields(row, in.SourceA.Columns, e.opts.Netting)
	}
	for i, row := range in.RowsB {
		r.fieldsB[i] = extractFields(row, in.SourceB.Columns, e.opts.Netting)
	}

	// Deterministic pass
	scorer := NewScorer(in.SourceA, in.SourceB, in.Rules, e.opts.Netting)
	candidates := make([][]CandidateScore, len(r.fieldsA))
	for i, fa := range r.fieldsA {
		for j, fb := range r.fieldsB {
			c, ok := scorer.score(fa, fb)
			if !ok {
				continue
			}
			c.BIndex = j
			candidates[i] = append(candidates[i], c)
		}
	}
	r.matched, r.matchedA, r.matchedB = Resolve(candidates, len(in.RowsB), e.opts.MinAssignScore, e.opts.MaxCandidates)

	e.logger.Debug("deterministic pass complete",
		"rows_a", len(in.RowsA),
		"rows_b", len(in.RowsB),
		"matched", len(r.matched))

	if in.Rules.FuzzyDescription && e.semantic != nil {
		e.fuzzyPass(ctx, r)
	}

	unmatchedA := unmatchedIndices(r.matchedA)
	unmatchedB := unmatchedIndices(r.matchedB)

	result := &MatchingResult{
		Matched:    r.matched,
		UnmatchedA: unmatchedA,
		UnmatchedB: unmatchedB,
		Exceptions: e.classifyPass(ctx, r, unmatchedA, unmatchedB),
		Variance:   Variance(amountsOf(r.fieldsA, unmatchedA), amountsOf(r.fieldsB, unmatchedB)),
	}
	if result.Matched == nil {
		result.Matched = []MatchPair{}
	}

	e.logger.Info("reconciliation complete",
		"matched", len(result.Matched),
		"unmatched_a", len(unmatchedA),
		"unmatched_b", len(unmatchedB),
		"variance", result.Variance)

	return result, nil
}

func unmatchedIndices(matched []bool) []int {
	out := []int{}
	for i, m := range matched {
		if !m {
			out = append(out, i)
		}
	}
	return out
}

// amountsOf collects parsed amounts for idx; unparseable rows contribute nothing
func amountsOf(fields []rowFields, idx []int) []float64 {
	amounts := make([]float64, 0, len(idx))
	for _, i := range idx {
		if fields[i].hasAmount {
			amounts = append(amounts, fields[i].amount)
		}
	}
	return amounts
}

// callWithTimeout races fn against a deadline. A late result is discarded
// and a panic inside fn comes back as an error.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("semantic call panicked: %v", p)}
			}
		}()
		val, err := fn(ctx)
		done <- outcome{val: val, err: err}
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("semantic call: %w", ctx.Err())
	}
}
