package matcher

import (
	"context"

	"github.com/eshaffer321/ledgermatch/internal/domain/rows"
)

// fuzzyPass asks the semantic service to pair leftover rows.
//
// Each batch takes up to FuzzyBatchSize still-unmatched rows per side. Only
// proposals at or above FuzzyMinConfidence whose indices belong to the batch
// and are unclaimed are kept. The pass stops after FuzzyMaxBatches, when a
// batch yields nothing, or on the first service failure; pairs accepted by
// earlier batches stay.
func (e *Engine) fuzzyPass(ctx context.Context, r *run) {
	mapping := ColumnMappingContext(r.in.SourceA, r.in.SourceB)

	for batch := 0; batch < e.opts.FuzzyMaxBatches; batch++ {
		restA := unmatchedIndices(r.matchedA)
		restB := unmatchedIndices(r.matchedB)
		if len(restA) == 0 || len(restB) == 0 {
			return
		}

		batchA := restA[:min(len(restA), e.opts.FuzzyBatchSize)]
		batchB := restB[:min(len(restB), e.opts.FuzzyBatchSize)]

		req := BatchMatchRequest{
			SourceALabel:  r.in.SourceA.Label,
			SourceBLabel:  r.in.SourceB.Label,
			RowsA:         indexedRows(r.in.RowsA, batchA),
			RowsB:         indexedRows(r.in.RowsB, batchB),
			ColumnMapping: mapping,
		}

		proposals, err := callWithTimeout(ctx, e.opts.CallTimeout, func(ctx context.Context) ([]MatchPair, error) {
			return e.semantic.BatchMatch(ctx, req)
		})
		if err != nil {
			e.logger.Warn("fuzzy matching abandoned, keeping deterministic results",
				"batch", batch+1,
				"error", err)
			return
		}

		inBatchA := indexSet(batchA)
		inBatchB := indexSet(batchB)
		accepted := 0
		for _, p := range proposals {
			if p.Confidence < e.opts.FuzzyMinConfidence {
				continue
			}
			if !inBatchA[p.SourceAIndex] || !inBatchB[p.SourceBIndex] {
				continue
			}
			if r.matchedA[p.SourceAIndex] || r.matchedB[p.SourceBIndex] {
				continue
			}

			r.matchedA[p.SourceAIndex] = true
			r.matchedB[p.SourceBIndex] = true
			r.matched = append(r.matched, MatchPair{
				SourceAIndex: p.SourceAIndex,
				SourceBIndex: p.SourceBIndex,
				Confidence:   min(p.Confidence, 100),
				Method:       MethodFuzzyAI,
				Reasoning:    p.Reasoning,
				SignInverted: p.SignInverted,
			})
			accepted++
		}

		e.logger.Debug("fuzzy batch complete",
			"batch", batch+1,
			"proposed", len(proposals),
			"accepted", accepted)

		if accepted == 0 {
			return
		}
	}
}

func indexedRows(all []rows.Row, idx []int) []IndexedRow {
	out := make([]IndexedRow, len(idx))
	for i, index := range idx {
		out[i] = IndexedRow{Index: index, Row: all[index]}
	}
	return out
}

func indexSet(idx []int) map[int]bool {
	set := make(map[int]bool, len(idx))
	for _, i := range idx {
		set[i] = true
	}
	return set
}
