// Package report defines the per-file type weight report produced by a
// density study, and the sinks that receive its rows.
package report

import (
	"context"
	"sync"
	"time"
)

// Row is the measurement of one source file.
type Row struct {
	SourceFile           string `json:"source_file"`
	Weight               int64  `json:"weight"`                 // canonical graph
	WeightWithoutPrivate int64  `json:"weight_without_private"` // after dropping non-visible members
}

// Reduction returns the fraction of weight removed by the visibility filter.
func (r Row) Reduction() float64 {
	if r.Weight == 0 {
		return 0
	}
	return float64(r.Weight-r.WeightWithoutPrivate) / float64(r.Weight)
}

// Report is the complete output of one study run.
// Immutable once computed.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Rows       []Row     `json:"rows"`
	Summary    Summary   `json:"summary"`
}

// Summary aggregates the rows of a report.
type Summary struct {
	Files                int   `json:"files"`
	Weight               int64 `json:"weight"`
	WeightWithoutPrivate int64 `json:"weight_without_private"`
	CanonicalTypes       int   `json:"canonical_types"` // variant cache size at the end of the run
}

// Summarize computes the summary of rows.
func Summarize(rows []Row) Summary {
	s := Summary{Files: len(rows)}
	for _, r := range rows {
		s.Weight += r.Weight
		s.WeightWithoutPrivate += r.WeightWithoutPrivate
	}
	return s
}

// Sink receives report rows as they are produced.
type Sink interface {
	InsertRow(ctx context.Context, row Row) error
}

// Table is an in-memory Sink that keeps rows in insertion order.
type Table struct {
	mu   sync.Mutex
	rows []Row
}

// InsertRow appends row.
func (t *Table) InsertRow(_ context.Context, row Row) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, row)
	return nil
}

// Rows returns a copy of the rows inserted so far.
func (t *Table) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Row(nil), t.rows...)
}

// MultiSink fans every row out to each sink in order, stopping at the first error.
type MultiSink []Sink

// InsertRow inserts row into every sink.
func (m MultiSink) InsertRow(ctx context.Context, row Row) error {
	for _, s := range m {
		if err := s.InsertRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}
