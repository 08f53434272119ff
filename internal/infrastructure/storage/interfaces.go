package storage

import (
	"errors"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
)

// ErrRunNotFound is returned when no run has the requested ID
var ErrRunNotFound = errors.New("run not found")

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	RunRepository
	ExceptionRepository

	// Ping reports whether the store is reachable
	Ping() error
	Close() error
}

// RunRepository handles reconciliation run history
type RunRepository interface {
	// SaveRun inserts or replaces a run and its exceptions
	SaveRun(run *Run) error

	// GetRun retrieves a run with its full result
	GetRun(id string) (*Run, error)

	// ListRuns returns run summaries, newest first
	ListRuns(filters RunFilters) (*RunListResult, error)

	// GetStats returns aggregate statistics
	GetStats() (*Stats, error)
}

// ExceptionRepository queries the classified exceptions of stored runs
type ExceptionRepository interface {
	// ListExceptions returns the exceptions of one run in source then row order
	ListExceptions(runID string, filters ExceptionFilters) ([]matcher.ExceptionClassification, error)
}
