package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAddExceptionCount, downAddExceptionCount)
}

// upAddExceptionCount denormalises the exception count onto each run so run
// listings don't need to join run_exceptions. Existing runs are backfilled.
func upAddExceptionCount(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `
		ALTER TABLE reconciliation_runs
		ADD COLUMN exception_count INTEGER NOT NULL DEFAULT 0
	`); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE reconciliation_runs
		SET exception_count = (
			SELECT COUNT(*) FROM run_exceptions
			WHERE run_exceptions.run_id = reconciliation_runs.id
		)
	`)
	return err
}

// downAddExceptionCount drops the column again (SQLite 3.35+)
func downAddExceptionCount(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `ALTER TABLE reconciliation_runs DROP COLUMN exception_count`)
	return err
}
