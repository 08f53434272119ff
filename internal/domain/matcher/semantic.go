package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/eshaffer321/ledgermatch/internal/domain/rows"
)

// SemanticMatcher is the external reasoning service consulted for
// description-only matches and exception categories. Implementations may be
// slow or fail; the engine bounds every call with a timeout and degrades
// without it.
type SemanticMatcher interface {
	// BatchMatch proposes pairs between the given rows. Indices refer to the
	// original row positions carried in IndexedRow.Index.
	BatchMatch(ctx context.Context, req BatchMatchRequest) ([]MatchPair, error)

	// Classify assigns a taxonomy category and short reason to unmatched rows
	Classify(ctx context.Context, req ClassifyRequest) ([]ExceptionClassification, error)
}

// IndexedRow is a full row tagged with its position in its source
type IndexedRow struct {
	Index int      `json:"index"`
	Row   rows.Row `json:"row"`
}

// BatchMatchRequest carries one fuzzy batch
type BatchMatchRequest struct {
	SourceALabel  string
	SourceBLabel  string
	RowsA         []IndexedRow
	RowsB         []IndexedRow
	ColumnMapping string
}

// UnmatchedItem is the trimmed view of a row sent for classification
type UnmatchedItem struct {
	Source      Side     `json:"source"`
	RowIndex    int      `json:"rowIndex"`
	Amount      *float64 `json:"amount"`
	Date        string   `json:"date,omitempty"`
	Description string   `json:"description"`
}

// ClassifyRequest carries the sampled unmatched rows of both sides
type ClassifyRequest struct {
	Items        []UnmatchedItem
	SourceALabel string
	SourceBLabel string
}

// mappingOrder is the order column types appear in the mapping context
var mappingOrder = []rows.ColumnType{rows.ColumnDate, rows.ColumnAmount, rows.ColumnReference, rows.ColumnText}

// ColumnMappingContext describes how A's columns line up with B's, pairing
// columns of the same type in schema order:
//
//	Date (posted) <-> Txn Date (date) [date]
func ColumnMappingContext(a, b SourceConfig) string {
	var sb strings.Builder
	for _, t := range mappingOrder {
		colsA := a.Columns.OfType(t)
		colsB := b.Columns.OfType(t)
		n := max(len(colsA), len(colsB))
		for i := 0; i < n; i++ {
			left, right := "(none)", "(none)"
			if i < len(colsA) {
				left = fmt.Sprintf("%s (%s)", colsA[i].DisplayName(), colsA[i].Key)
			}
			if i < len(colsB) {
				right = fmt.Sprintf("%s (%s)", colsB[i].DisplayName(), colsB[i].Key)
			}
			fmt.Fprintf(&sb, "%s <-> %s [%s]\n", left, right, t)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
