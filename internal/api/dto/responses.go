package dto

import (
	"time"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Store     string `json:"store"`
	Reconcile bool   `json:"reconcile_enabled"`
	Timestamp string `json:"timestamp"`
}

// Health states
const (
	HealthOK         = "ok"
	HealthDegraded   = "degraded"
	StoreReachable   = "ok"
	StoreUnreachable = "unreachable"
)

// RunResponse represents a reconciliation run in API responses.
type RunResponse struct {
	ID              string  `json:"id"`
	SourceA         string  `json:"source_a"`
	SourceB         string  `json:"source_b"`
	Status          string  `json:"status"`
	StartedAt       string  `json:"started_at"`
	CompletedAt     string  `json:"completed_at,omitempty"`
	RowCountA       int     `json:"row_count_a"`
	RowCountB       int     `json:"row_count_b"`
	MatchedCount    int     `json:"matched_count"`
	UnmatchedACount int     `json:"unmatched_a_count"`
	UnmatchedBCount int     `json:"unmatched_b_count"`
	ExceptionCount  int     `json:"exception_count"`
	MatchRate       float64 `json:"match_rate"`
	Variance        float64 `json:"variance"`
	ErrorMessage    string  `json:"error_message,omitempty"`
}

// RunDetailResponse is a run together with its full matching result.
type RunDetailResponse struct {
	RunResponse
	Rules  matcher.MatchingRules   `json:"rules"`
	Result *matcher.MatchingResult `json:"result,omitempty"`
}

// RunListResponse is returned when listing runs.
type RunListResponse struct {
	Runs       []RunResponse `json:"runs"`
	TotalCount int           `json:"total_count"`
	Limit      int           `json:"limit"`
	Offset     int           `json:"offset"`
}

// ExceptionListResponse is returned when listing the exceptions of a run.
type ExceptionListResponse struct {
	RunID      string                            `json:"run_id"`
	Exceptions []matcher.ExceptionClassification `json:"exceptions"`
	Count      int                               `json:"count"`
}

// CategoryCountResponse is one row of the exception breakdown.
type CategoryCountResponse struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// StatsResponse is returned by the stats endpoint.
type StatsResponse struct {
	TotalRuns            int                     `json:"total_runs"`
	CompletedRuns        int                     `json:"completed_runs"`
	FailedRuns           int                     `json:"failed_runs"`
	TotalMatched         int                     `json:"total_matched"`
	TotalExceptions      int                     `json:"total_exceptions"`
	AverageMatchRate     float64                 `json:"average_match_rate"`
	ExceptionsByCategory []CategoryCountResponse `json:"exceptions_by_category"`
	LastRunAt            string                  `json:"last_run_at,omitempty"`
}

// NewHealthResponse builds a health response from the store check.
// An unreachable store degrades the service.
func NewHealthResponse(storeErr error, reconcile bool) HealthResponse {
	resp := HealthResponse{
		Status:    HealthOK,
		Store:     StoreReachable,
		Reconcile: reconcile,
		Timestamp: FormatTime(time.Now()),
	}
	if storeErr != nil {
		resp.Status = HealthDegraded
		resp.Store = StoreUnreachable
	}
	return resp
}

// FormatTime renders t as RFC3339 in UTC
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
