// Package reportdb persists study runs and their per-file rows in Postgres.
package reportdb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/typedensity/typedensity/pkg/report"
)

// Store provides study run persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// Run states stored in study_runs.status.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Run is a study run record.
type Run struct {
	ID             string     `json:"id"`
	Project        string     `json:"project"`
	Status         string     `json:"status"`
	Error          string     `json:"error,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	FileCount      int        `json:"file_count"`
	CanonicalTypes int        `json:"canonical_types"`
	DurationMs     int64      `json:"duration_ms"`
}

const runColumns = `id, project, status, COALESCE(error, ''), started_at, finished_at, file_count, canonical_types, duration_ms`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner, r *Run) error {
	return row.Scan(&r.ID, &r.Project, &r.Status, &r.Error, &r.StartedAt, &r.FinishedAt, &r.FileCount, &r.CanonicalTypes, &r.DurationMs)
}

// NewStore creates a new Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateRun records the start of a study run.
func (s *Store) CreateRun(ctx context.Context, runID, project string) (*Run, error) {
	r := &Run{}
	err := scanRun(s.db.QueryRowContext(ctx,
		`INSERT INTO study_runs (id, project)
		 VALUES ($1, $2)
		 RETURNING `+runColumns,
		runID, project,
	), r)
	if err != nil {
		return nil, fmt.Errorf("create run %s: %w", runID, err)
	}
	return r, nil
}

// FinishRun stores the summary of a completed run.
func (s *Store) FinishRun(ctx context.Context, rep *report.Report) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE study_runs
		 SET status = $5, finished_at = now(), file_count = $2, canonical_types = $3, duration_ms = $4
		 WHERE id = $1`,
		rep.RunID, rep.Summary.Files, rep.Summary.CanonicalTypes, rep.DurationMs, StatusFinished,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", rep.RunID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", rep.RunID, sql.ErrNoRows)
	}
	return nil
}

// FailRun marks a run that did not complete. Rows already inserted are
// kept; the run's counters stay at zero.
func (s *Store) FailRun(ctx context.Context, runID string, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE study_runs
		 SET status = $2, error = $3, finished_at = now()
		 WHERE id = $1 AND status = $4`,
		runID, StatusFailed, msg, StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("fail run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("fail run %s: %w", runID, sql.ErrNoRows)
	}
	return nil
}

// GetRun retrieves a run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	r := &Run{}
	err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM study_runs WHERE id = $1`,
		runID,
	), r)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return r, nil
}

// ListRuns returns the most recent runs of a project, newest first.
func (s *Store) ListRuns(ctx context.Context, project string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM study_runs WHERE project = $1
		 ORDER BY started_at DESC LIMIT $2`,
		project, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := scanRun(rows, &r); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// InsertRow stores one row of a run at the given position.
func (s *Store) InsertRow(ctx context.Context, runID string, position int, row report.Row) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO type_reports (run_id, position, source_file, weight, weight_without_private)
		 VALUES ($1, $2, $3, $4, $5)`,
		runID, position, row.SourceFile, row.Weight, row.WeightWithoutPrivate,
	)
	if err != nil {
		return fmt.Errorf("insert row %s: %w", row.SourceFile, err)
	}
	return nil
}

// ListRows returns the rows of a run in insertion order.
func (s *Store) ListRows(ctx context.Context, runID string) ([]report.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_file, weight, weight_without_private
		 FROM type_reports WHERE run_id = $1 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	defer rows.Close()

	var out []report.Row
	for rows.Next() {
		var r report.Row
		if err := rows.Scan(&r.SourceFile, &r.Weight, &r.WeightWithoutPrivate); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Sink returns a report.Sink that appends rows to runID.
func (s *Store) Sink(runID string) report.Sink {
	return &runSink{store: s, runID: runID}
}

type runSink struct {
	store *Store
	runID string

	mu   sync.Mutex
	next int
}

func (r *runSink) InsertRow(ctx context.Context, row report.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.InsertRow(ctx, r.runID, r.next, row); err != nil {
		return err
	}
	r.next++
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
