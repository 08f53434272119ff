package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
)

const defaultListLimit = 50

// Storage provides SQLite database access for reconciliation runs.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// One connection keeps the pragma in force and serialises writers
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Ping checks the database connection
func (s *Storage) Ping() error {
	return s.db.Ping()
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRun inserts or replaces a run and rewrites its exceptions
func (s *Storage) SaveRun(run *Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}

	rulesJSON, err := json.Marshal(run.Rules)
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}
	var resultJSON sql.NullString
	if run.Result != nil {
		data, err := json.Marshal(run.Result)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		resultJSON = sql.NullString{String: string(data), Valid: true}
	}

	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	var completed sql.NullTime
	if run.CompletedAt != nil {
		completed = sql.NullTime{Time: run.CompletedAt.UTC(), Valid: true}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM run_exceptions WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("failed to clear exceptions: %w", err)
	}

	_, err = tx.Exec(`
	INSERT OR REPLACE INTO reconciliation_runs
	(id, source_a_label, source_b_label, rules_json, status, started_at, completed_at,
	 row_count_a, row_count_b, matched_count, unmatched_a_count, unmatched_b_count,
	 exception_count, variance, result_json, error_message)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.SourceALabel,
		run.SourceBLabel,
		string(rulesJSON),
		run.Status,
		started.UTC(),
		completed,
		run.RowCountA,
		run.RowCountB,
		run.MatchedCount,
		run.UnmatchedACount,
		run.UnmatchedBCount,
		run.ExceptionCount,
		run.Variance,
		resultJSON,
		run.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if run.Result != nil && len(run.Result.Exceptions) > 0 {
		stmt, err := tx.Prepare(`
		INSERT INTO run_exceptions (run_id, source, row_index, category, reason)
		VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare exception insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, e := range run.Result.Exceptions {
			if _, err := stmt.Exec(run.ID, string(e.Source), e.RowIndex, string(e.Category), e.Reason); err != nil {
				return fmt.Errorf("failed to save exception: %w", err)
			}
		}
	}

	return tx.Commit()
}

const runColumns = `id, source_a_label, source_b_label, rules_json, status, started_at, completed_at,
	       row_count_a, row_count_b, matched_count, unmatched_a_count, unmatched_b_count,
	       exception_count, variance, error_message`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner, extra ...any) (*Run, error) {
	run := &Run{}
	var rulesJSON string
	var completed sql.NullTime
	var errorMessage sql.NullString

	dest := []any{
		&run.ID,
		&run.SourceALabel,
		&run.SourceBLabel,
		&rulesJSON,
		&run.Status,
		&run.StartedAt,
		&completed,
		&run.RowCountA,
		&run.RowCountB,
		&run.MatchedCount,
		&run.UnmatchedACount,
		&run.UnmatchedBCount,
		&run.ExceptionCount,
		&run.Variance,
		&errorMessage,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if completed.Valid {
		t := completed.Time
		run.CompletedAt = &t
	}
	run.ErrorMessage = errorMessage.String
	if err := json.Unmarshal([]byte(rulesJSON), &run.Rules); err != nil {
		return nil, fmt.Errorf("failed to decode rules of run %s: %w", run.ID, err)
	}
	return run, nil
}

// GetRun retrieves a run with its full result
func (s *Storage) GetRun(id string) (*Run, error) {
	var resultJSON sql.NullString
	row := s.db.QueryRow(`SELECT `+runColumns+`, result_json FROM reconciliation_runs WHERE id = ?`, id)

	run, err := scanRun(row, &resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if resultJSON.Valid && resultJSON.String != "" {
		var result matcher.MatchingResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, fmt.Errorf("failed to decode result of run %s: %w", id, err)
		}
		run.Result = &result
	}
	return run, nil
}

// ListRuns returns run summaries, newest first
func (s *Storage) ListRuns(filters RunFilters) (*RunListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	var where []string
	var args []any
	if filters.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filters.Status)
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reconciliation_runs`+whereClause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	query := `SELECT ` + runColumns + ` FROM reconciliation_runs` + whereClause +
		` ORDER BY started_at DESC, id LIMIT ? OFFSET ?`
	rows, err := s.db.Query(query, append(args, filters.Limit, filters.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := &RunListResult{
		Runs:       []*Run{},
		TotalCount: total,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result.Runs = append(result.Runs, run)
	}
	return result, rows.Err()
}

// GetStats returns aggregate statistics across all runs
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{ExceptionsByCategory: make(map[string]int)}

	err := s.db.QueryRow(`
	SELECT COUNT(*),
	       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(matched_count), 0),
	       COALESCE(SUM(exception_count), 0)
	FROM reconciliation_runs
	`, RunStatusCompleted, RunStatusFailed).Scan(
		&stats.TotalRuns,
		&stats.CompletedRuns,
		&stats.FailedRuns,
		&stats.TotalMatched,
		&stats.TotalExceptions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate runs: %w", err)
	}
	if stats.TotalRuns == 0 {
		return stats, nil
	}

	var last time.Time
	if err := s.db.QueryRow(`SELECT started_at FROM reconciliation_runs ORDER BY started_at DESC LIMIT 1`).Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to read last run: %w", err)
	}
	stats.LastRunAt = &last

	rates, err := s.db.Query(`
	SELECT row_count_a, row_count_b, matched_count
	FROM reconciliation_runs WHERE status = ?
	`, RunStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to read match rates: %w", err)
	}
	sum, n := 0.0, 0
	for rates.Next() {
		var run Run
		if err := rates.Scan(&run.RowCountA, &run.RowCountB, &run.MatchedCount); err != nil {
			_ = rates.Close()
			return nil, err
		}
		sum += run.MatchRate()
		n++
	}
	if err := rates.Close(); err != nil {
		return nil, err
	}
	if n > 0 {
		stats.AverageMatchRate = sum / float64(n)
	}

	categories, err := s.db.Query(`SELECT category, COUNT(*) FROM run_exceptions GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to count exceptions: %w", err)
	}
	defer func() { _ = categories.Close() }()
	for categories.Next() {
		var category string
		var count int
		if err := categories.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats.ExceptionsByCategory[category] = count
	}

	return stats, categories.Err()
}

// ListExceptions returns the exceptions of one run in source then row order
func (s *Storage) ListExceptions(runID string, filters ExceptionFilters) ([]matcher.ExceptionClassification, error) {
	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reconciliation_runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	query := `SELECT source, row_index, category, reason FROM run_exceptions WHERE run_id = ?`
	args := []any{runID}
	if filters.Category != "" {
		query += ` AND category = ?`
		args = append(args, filters.Category)
	}
	if filters.Source != "" {
		query += ` AND source = ?`
		args = append(args, strings.ToUpper(filters.Source))
	}
	query += ` ORDER BY source, row_index`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []matcher.ExceptionClassification{}
	for rows.Next() {
		var e matcher.ExceptionClassification
		var source, category string
		if err := rows.Scan(&source, &e.RowIndex, &category, &e.Reason); err != nil {
			return nil, err
		}
		e.Source = matcher.Side(source)
		e.Category = matcher.Category(category)
		out = append(out, e)
	}
	return out, rows.Err()
}
