package storage

import (
	"time"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
)

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one persisted reconciliation
type Run struct {
	ID              string                  `json:"id"`
	SourceALabel    string                  `json:"source_a_label"`
	SourceBLabel    string                  `json:"source_b_label"`
	Rules           matcher.MatchingRules   `json:"rules"`
	Status          string                  `json:"status"`
	StartedAt       time.Time               `json:"started_at"`
	CompletedAt     *time.Time              `json:"completed_at,omitempty"`
	RowCountA       int                     `json:"row_count_a"`
	RowCountB       int                     `json:"row_count_b"`
	MatchedCount    int                     `json:"matched_count"`
	UnmatchedACount int                     `json:"unmatched_a_count"`
	UnmatchedBCount int                     `json:"unmatched_b_count"`
	ExceptionCount  int                     `json:"exception_count"`
	Variance        float64                 `json:"variance"`
	ErrorMessage    string                  `json:"error_message,omitempty"`
	Result          *matcher.MatchingResult `json:"result,omitempty"` // nil in listings
}

// ApplyResult copies the summary counts of res onto the run
func (r *Run) ApplyResult(res *matcher.MatchingResult) {
	r.Result = res
	if res == nil {
		return
	}
	r.MatchedCount = len(res.Matched)
	r.UnmatchedACount = len(res.UnmatchedA)
	r.UnmatchedBCount = len(res.UnmatchedB)
	r.ExceptionCount = len(res.Exceptions)
	r.Variance = res.Variance
}

// MatchRate is the share of the larger side that was matched, 0-1
func (r *Run) MatchRate() float64 {
	larger := max(r.RowCountA, r.RowCountB)
	if larger == 0 {
		return 0
	}
	return float64(r.MatchedCount) / float64(larger)
}

// RunFilters defines filters for listing runs
type RunFilters struct {
	Status string // Filter by status (empty = all)
	Limit  int    // Max results (0 = default 50)
	Offset int    // Pagination offset
}

// RunListResult contains paginated run results
type RunListResult struct {
	Runs       []*Run `json:"runs"`
	TotalCount int    `json:"total_count"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

// Stats holds aggregate statistics across all runs
type Stats struct {
	TotalRuns            int            `json:"total_runs"`
	CompletedRuns        int            `json:"completed_runs"`
	FailedRuns           int            `json:"failed_runs"`
	TotalMatched         int            `json:"total_matched"`
	TotalExceptions      int            `json:"total_exceptions"`
	AverageMatchRate     float64        `json:"average_match_rate"`
	ExceptionsByCategory map[string]int `json:"exceptions_by_category"`
	LastRunAt            *time.Time     `json:"last_run_at,omitempty"`
}

// ExceptionFilters narrows the exceptions of one run
type ExceptionFilters struct {
	Category string // empty = all
	Source   string // "A", "B" or empty
}
