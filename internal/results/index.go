package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Run statuses.
const (
	StatusRunning    = "RUNNING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusSuperseded = "SUPERSEDED"
)

// RunRecord is one row of the run index.
type RunRecord struct {
	ID             string    `json:"id"`
	CycleID        string    `json:"cycleId"`
	FrameworkID    string    `json:"frameworkId"`
	Status         string    `json:"status"`
	DMUCount       int       `json:"dmuCount"`
	ComputationMs  *int64    `json:"computationMs,omitempty"`
	MeanEfficiency *float64  `json:"meanEfficiency,omitempty"`
	StdEfficiency  *float64  `json:"stdEfficiency,omitempty"`
	WarningCount   int       `json:"warningCount"`
	StorageRef     *string   `json:"storageRef,omitempty"`
	ErrorMessage   *string   `json:"errorMessage,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// RunIndex records the lifecycle of computation runs.
type RunIndex interface {
	CreateRun(ctx context.Context, run RunRecord) error
	FailRun(ctx context.Context, runID, errMsg string) error
	CompleteRun(ctx context.Context, run RunRecord) error
	ListRuns(ctx context.Context, cycleID string) ([]RunRecord, error)
}

// PostgresIndex implements RunIndex over the cycle_runs table.
type PostgresIndex struct {
	db *sql.DB
}

// NewPostgresIndex creates a RunIndex backed by db.
func NewPostgresIndex(db *sql.DB) *PostgresIndex {
	return &PostgresIndex{db: db}
}

func (p *PostgresIndex) CreateRun(ctx context.Context, run RunRecord) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO cycle_runs (id, cycle_id, framework_id, status, dmu_count)
		 VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.CycleID, run.FrameworkID, StatusRunning, run.DMUCount,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (p *PostgresIndex) FailRun(ctx context.Context, runID, errMsg string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE cycle_runs SET status = $1, error_message = $2, updated_at = now() WHERE id = $3`,
		StatusFailed, errMsg, runID,
	)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	return nil
}

// CompleteRun marks the run completed and supersedes earlier completed runs
// of the same cycle in one transaction.
func (p *PostgresIndex) CompleteRun(ctx context.Context, run RunRecord) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`UPDATE cycle_runs SET status = $1, updated_at = now()
		 WHERE cycle_id = $2 AND status = $3 AND id <> $4`,
		StatusSuperseded, run.CycleID, StatusCompleted, run.ID,
	)
	if err != nil {
		return fmt.Errorf("supersede runs: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE cycle_runs
		 SET status = $1, computation_ms = $2, mean_efficiency = $3, std_efficiency = $4,
		     warning_count = $5, storage_ref = $6, updated_at = now()
		 WHERE id = $7`,
		StatusCompleted, run.ComputationMs, run.MeanEfficiency, run.StdEfficiency,
		run.WarningCount, run.StorageRef, run.ID,
	)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return tx.Commit()
}

func (p *PostgresIndex) ListRuns(ctx context.Context, cycleID string) ([]RunRecord, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, cycle_id, framework_id, status, dmu_count, computation_ms, mean_efficiency,
		        std_efficiency, warning_count, storage_ref, error_message, created_at, updated_at
		 FROM cycle_runs WHERE cycle_id = $1
		 ORDER BY created_at DESC`,
		cycleID,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.CycleID, &r.FrameworkID, &r.Status, &r.DMUCount,
			&r.ComputationMs, &r.MeanEfficiency, &r.StdEfficiency, &r.WarningCount,
			&r.StorageRef, &r.ErrorMessage, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
