package matcher

import (
	"context"
	"strings"
	"time"
)

// classifyPass labels every residual row. Rows the service skips get
// "Unclassified"; if the service is missing or fails, every residual row
// gets "Unmatched item".
func (e *Engine) classifyPass(ctx context.Context, r *run, unmatchedA, unmatchedB []int) []ExceptionClassification {
	if len(unmatchedA) == 0 && len(unmatchedB) == 0 {
		return []ExceptionClassification{}
	}
	if e.semantic == nil {
		return fallbackClassifications(unmatchedA, unmatchedB, reasonUnmatchedItem)
	}

	req := ClassifyRequest{
		SourceALabel: r.in.SourceA.Label,
		SourceBLabel: r.in.SourceB.Label,
	}
	sample := e.opts.ClassifySampleSize
	req.Items = append(req.Items, unmatchedItems(SideA, r.fieldsA, unmatchedA[:min(len(unmatchedA), sample)])...)
	req.Items = append(req.Items, unmatchedItems(SideB, r.fieldsB, unmatchedB[:min(len(unmatchedB), sample)])...)

	classified, err := callWithTimeout(ctx, e.opts.CallTimeout, func(ctx context.Context) ([]ExceptionClassification, error) {
		return e.semantic.Classify(ctx, req)
	})
	if err != nil {
		e.logger.Warn("exception classification failed, using fallback category",
			"unmatched_a", len(unmatchedA),
			"unmatched_b", len(unmatchedB),
			"error", err)
		return fallbackClassifications(unmatchedA, unmatchedB, reasonUnmatchedItem)
	}

	type key struct {
		side  Side
		index int
	}
	residual := make(map[key]bool, len(unmatchedA)+len(unmatchedB))
	for _, i := range unmatchedA {
		residual[key{SideA, i}] = true
	}
	for _, i := range unmatchedB {
		residual[key{SideB, i}] = true
	}

	recorded := make(map[key]ExceptionClassification)
	for _, c := range classified {
		k := key{Side(strings.ToUpper(string(c.Source))), c.RowIndex}
		if !residual[k] {
			continue
		}
		if _, dup := recorded[k]; dup {
			continue
		}
		if !c.Category.Valid() {
			c.Category = CategoryOther
		}
		c.Source = k.side
		recorded[k] = c
	}

	out := make([]ExceptionClassification, 0, len(residual))
	emit := func(side Side, indices []int) {
		for _, i := range indices {
			if c, ok := recorded[key{side, i}]; ok {
				out = append(out, c)
				continue
			}
			out = append(out, ExceptionClassification{
				Category: CategoryOther,
				Reason:   reasonUnclassified,
				Source:   side,
				RowIndex: i,
			})
		}
	}
	emit(SideA, unmatchedA)
	emit(SideB, unmatchedB)

	e.logger.Debug("exception classification complete",
		"classified", len(recorded),
		"backfilled", len(out)-len(recorded))

	return out
}

func unmatchedItems(side Side, fields []rowFields, idx []int) []UnmatchedItem {
	items := make([]UnmatchedItem, 0, len(idx))
	for _, i := range idx {
		f := fields[i]
		item := UnmatchedItem{
			Source:      side,
			RowIndex:    i,
			Description: f.description,
		}
		if f.hasAmount {
			amount := f.amount
			item.Amount = &amount
		}
		if f.hasDate {
			item.Date = f.date.Format(time.DateOnly)
		}
		items = append(items, item)
	}
	return items
}

func fallbackClassifications(unmatchedA, unmatchedB []int, reason string) []ExceptionClassification {
	out := make([]ExceptionClassification, 0, len(unmatchedA)+len(unmatchedB))
	for _, i := range unmatchedA {
		out = append(out, ExceptionClassification{Category: CategoryOther, Reason: reason, Source: SideA, RowIndex: i})
	}
	for _, i := range unmatchedB {
		out = append(out, ExceptionClassification{Category: CategoryOther, Reason: reason, Source: SideB, RowIndex: i})
	}
	return out
}
