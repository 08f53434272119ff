package dto

import (
	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
	"github.com/eshaffer321/ledgermatch/internal/domain/rows"
)

// ReconcileRequest is the body of POST /api/reconciliations.
// Rules is optional; fields it omits keep their matcher.DefaultRules value.
type ReconcileRequest struct {
	SourceA matcher.SourceConfig   `json:"sourceA"`
	SourceB matcher.SourceConfig   `json:"sourceB"`
	RowsA   []rows.Row             `json:"rowsA"`
	RowsB   []rows.Row             `json:"rowsB"`
	Rules   *matcher.MatchingRules `json:"rules,omitempty"`
}

// RunListParams represents query parameters for listing runs.
type RunListParams struct {
	Status string `json:"status"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// ExceptionListParams represents query parameters for listing exceptions.
type ExceptionListParams struct {
	Category string `json:"category"`
	Source   string `json:"source"`
}

// DefaultRunListParams returns default values for run list params.
func DefaultRunListParams() RunListParams {
	return RunListParams{
		Limit: 20,
	}
}
