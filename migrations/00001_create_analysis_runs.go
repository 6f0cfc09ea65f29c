package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateAnalysisRuns, downCreateAnalysisRuns)
}

func upCreateAnalysisRuns(ctx context.Context, tx *sql.Tx) error {
	createRunsTable := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id UUID PRIMARY KEY,
		kind VARCHAR(10) NOT NULL,
		mode VARCHAR(32),
		status VARCHAR(20) NOT NULL,
		error_kind VARCHAR(30),
		exit_code INTEGER,
		total_frames INTEGER NOT NULL DEFAULT 0,
		violation_count INTEGER NOT NULL DEFAULT 0,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`
	if _, err := tx.ExecContext(ctx, createRunsTable); err != nil {
		return fmt.Errorf("could not create analysis_runs table: %w", err)
	}

	createIndex := `CREATE INDEX IF NOT EXISTS idx_analysis_runs_created_at ON analysis_runs (created_at);`
	if _, err := tx.ExecContext(ctx, createIndex); err != nil {
		return fmt.Errorf("could not create analysis_runs index: %w", err)
	}
	return nil
}

func downCreateAnalysisRuns(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS analysis_runs;"); err != nil {
		return fmt.Errorf("could not drop table analysis_runs: %w", err)
	}
	return nil
}
