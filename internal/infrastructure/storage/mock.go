package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	mu   sync.Mutex
	runs map[string]*Run

	// Hooks for test assertions
	SaveRunCalled bool
	LastSavedRun  *Run

	// Error injection for testing error paths
	SaveRunErr  error
	GetRunErr   error
	ListRunsErr error
	GetStatsErr error
	PingErr     error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs: make(map[string]*Run),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Ping returns PingErr
func (m *MockRepository) Ping() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PingErr
}

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// SaveRun stores a copy of run
func (m *MockRepository) SaveRun(run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveRunCalled = true
	m.LastSavedRun = run
	if m.SaveRunErr != nil {
		return m.SaveRunErr
	}
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}

	copied := *run
	if copied.StartedAt.IsZero() {
		copied.StartedAt = time.Now()
	}
	m.runs[run.ID] = &copied
	return nil
}

// GetRun returns a copy of the stored run
func (m *MockRepository) GetRun(id string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetRunErr != nil {
		return nil, m.GetRunErr
	}
	run, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	copied := *run
	return &copied, nil
}

// ListRuns returns summaries newest first, without results
func (m *MockRepository) ListRuns(filters RunFilters) (*RunListResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListRunsErr != nil {
		return nil, m.ListRunsErr
	}
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}

	var all []*Run
	for _, run := range m.runs {
		if filters.Status != "" && run.Status != filters.Status {
			continue
		}
		summary := *run
		summary.Result = nil
		all = append(all, &summary)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].StartedAt.Equal(all[j].StartedAt) {
			return all[i].StartedAt.After(all[j].StartedAt)
		}
		return all[i].ID < all[j].ID
	})

	result := &RunListResult{
		Runs:       []*Run{},
		TotalCount: len(all),
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}
	if filters.Offset < len(all) {
		end := min(len(all), filters.Offset+filters.Limit)
		result.Runs = all[filters.Offset:end]
	}
	return result, nil
}

// GetStats aggregates over the stored runs
func (m *MockRepository) GetStats() (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetStatsErr != nil {
		return nil, m.GetStatsErr
	}

	stats := &Stats{ExceptionsByCategory: make(map[string]int)}
	rateSum, completed := 0.0, 0
	for _, run := range m.runs {
		stats.TotalRuns++
		stats.TotalMatched += run.MatchedCount
		stats.TotalExceptions += run.ExceptionCount
		switch run.Status {
		case RunStatusCompleted:
			stats.CompletedRuns++
			rateSum += run.MatchRate()
			completed++
		case RunStatusFailed:
			stats.FailedRuns++
		}
		if stats.LastRunAt == nil || run.StartedAt.After(*stats.LastRunAt) {
			t := run.StartedAt
			stats.LastRunAt = &t
		}
		if run.Result != nil {
			for _, e := range run.Result.Exceptions {
				stats.ExceptionsByCategory[string(e.Category)]++
			}
		}
	}
	if completed > 0 {
		stats.AverageMatchRate = rateSum / float64(completed)
	}
	return stats, nil
}

// ListExceptions filters the stored result's exceptions
func (m *MockRepository) ListExceptions(runID string, filters ExceptionFilters) ([]matcher.ExceptionClassification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	out := []matcher.ExceptionClassification{}
	if run.Result == nil {
		return out, nil
	}
	for _, e := range run.Result.Exceptions {
		if filters.Category != "" && string(e.Category) != filters.Category {
			continue
		}
		if filters.Source != "" && string(e.Source) != strings.ToUpper(filters.Source) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].RowIndex < out[j].RowIndex
	})
	return out, nil
}
