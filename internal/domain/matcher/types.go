package matcher

import (
	"errors"
	"fmt"
	"math"

	"github.com/eshaffer321/ledgermatch/internal/domain/rows"
)

// AmountMatchMode selects how strictly amounts must agree
type AmountMatchMode string

const (
	AmountExact     AmountMatchMode = "exact"
	AmountTolerance AmountMatchMode = "tolerance"
)

// ColumnTolerance overrides the global amount tolerance or date window for one column
type ColumnTolerance struct {
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
}

// MatchingRules holds the caller's matching configuration
type MatchingRules struct {
	AmountMatch      AmountMatchMode            `json:"amountMatch" yaml:"amount_match"`
	AmountTolerance  float64                    `json:"amountTolerance,omitempty" yaml:"amount_tolerance"`
	DateWindowDays   int                        `json:"dateWindowDays" yaml:"date_window_days"`
	FuzzyDescription bool                       `json:"fuzzyDescription" yaml:"fuzzy_description"`
	ColumnTolerances map[string]ColumnTolerance `json:"columnTolerances,omitempty" yaml:"column_tolerances"`
}

// DefaultRules returns sensible defaults
func DefaultRules() MatchingRules {
	return MatchingRules{
		AmountMatch:    AmountExact,
		DateWindowDays: 3,
	}
}

// amountToleranceFor resolves the tolerance for the given amount column keys.
// A per-column override wins over the global setting, which is 0 in exact mode.
func (r MatchingRules) amountToleranceFor(keys []string) float64 {
	for _, key := range keys {
		if ct, ok := r.ColumnTolerances[key]; ok {
			return math.Max(0, ct.Tolerance)
		}
	}
	if r.AmountMatch == AmountTolerance {
		return math.Max(0, r.AmountTolerance)
	}
	return 0
}

// dateWindowFor resolves the date window in days for the given date column keys
func (r MatchingRules) dateWindowFor(keys []string) int {
	for _, key := range keys {
		if ct, ok := r.ColumnTolerances[key]; ok {
			return int(math.Max(0, math.Round(ct.Tolerance)))
		}
	}
	if r.DateWindowDays < 0 {
		return 0
	}
	return r.DateWindowDays
}

// SourceConfig describes one side of a reconciliation
type SourceConfig struct {
	Label   string      `json:"label" yaml:"label"`
	Columns rows.Schema `json:"columns" yaml:"columns"`
}

// Input is everything a single run needs
type Input struct {
	RowsA   []rows.Row
	RowsB   []rows.Row
	SourceA SourceConfig
	SourceB SourceConfig
	Rules   MatchingRules
}

// Side identifies source A or source B
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Method records which pass produced a match
type Method string

const (
	MethodExact   Method = "exact"
	MethodFuzzyAI Method = "fuzzy_ai"
)

// CandidateScore is the composite score of one (A-row, B-row) pair
type CandidateScore struct {
	BIndex         int
	TotalScore     int
	AmountScore    int
	DateScore      int
	ReferenceScore int
	TextScore      int
	SignInverted   bool
}

// MatchPair is one accepted pairing of an A-row with a B-row
type MatchPair struct {
	SourceAIndex int    `json:"sourceAIndex"`
	SourceBIndex int    `json:"sourceBIndex"`
	Confidence   int    `json:"confidence"` // 0-100
	Method       Method `json:"method"`
	Reasoning    string `json:"reasoning,omitempty"`
	SignInverted bool   `json:"signInverted,omitempty"`
}

// Category explains why a row has no counterpart
type Category string

const (
	CategoryOutstandingCheck Category = "outstanding_check"
	CategoryDepositInTransit Category = "deposit_in_transit"
	CategoryBankFee          Category = "bank_fee"
	CategoryInterest         Category = "interest"
	CategoryTimingDifference Category = "timing_difference"
	CategoryDataEntryError   Category = "data_entry_error"
	CategoryDuplicate        Category = "duplicate"
	CategoryOther            Category = "other"
)

// Categories lists the full taxonomy in display order
var Categories = []Category{
	CategoryOutstandingCheck,
	CategoryDepositInTransit,
	CategoryBankFee,
	CategoryInterest,
	CategoryTimingDifference,
	CategoryDataEntryError,
	CategoryDuplicate,
	CategoryOther,
}

// Valid reports whether c belongs to the taxonomy
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ExceptionClassification annotates one unmatched row
type ExceptionClassification struct {
	Category Category `json:"category"`
	Reason   string   `json:"reason"`
	Source   Side     `json:"source"`
	RowIndex int      `json:"rowIndex"`
}

// MatchingResult is the outcome of one run
type MatchingResult struct {
	Matched    []MatchPair               `json:"matched"`
	UnmatchedA []int                     `json:"unmatchedA"`
	UnmatchedB []int                     `json:"unmatchedB"`
	Exceptions []ExceptionClassification `json:"exceptions"`
	Variance   float64                   `json:"variance"`
}

// ErrNoAmountColumn is returned by ValidateConfig when a side cannot be scored
var ErrNoAmountColumn = errors.New("source has no amount column")

// ValidateConfig checks both schemas and the rules before a run.
// Engine.Run itself tolerates a missing amount column; callers that want to
// reject such configurations up front use this.
func ValidateConfig(a, b SourceConfig, rules MatchingRules) error {
	if err := a.Columns.Validate(); err != nil {
		return fmt.Errorf("source A: %w", err)
	}
	if err := b.Columns.Validate(); err != nil {
		return fmt.Errorf("source B: %w", err)
	}
	if !a.Columns.Has(rows.ColumnAmount) {
		return fmt.Errorf("source A (%s): %w", a.Label, ErrNoAmountColumn)
	}
	if !b.Columns.Has(rows.ColumnAmount) {
		return fmt.Errorf("source B (%s): %w", b.Label, ErrNoAmountColumn)
	}

	switch rules.AmountMatch {
	case AmountExact, AmountTolerance, "":
	default:
		return fmt.Errorf("unknown amount match mode %q", rules.AmountMatch)
	}
	if rules.AmountTolerance < 0 {
		return fmt.Errorf("amount tolerance must not be negative")
	}
	if rules.DateWindowDays < 0 {
		return fmt.Errorf("date window must not be negative")
	}
	for key, ct := range rules.ColumnTolerances {
		if ct.Tolerance < 0 {
			return fmt.Errorf("column %q: tolerance must not be negative", key)
		}
	}
	return nil
}
