// Package study measures how much type information each source file
// carries, before and after eliding members that are not visible outside
// their declaring type.
package study

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/typedensity/typedensity/pkg/dedup"
	"github.com/typedensity/typedensity/pkg/javatype"
	"github.com/typedensity/typedensity/pkg/report"
	"github.com/typedensity/typedensity/pkg/typeutil"
)

var tracer = otel.Tracer("typedensity.study")

// Study runs the density pipeline over a batch of units:
// canonicalize against the shared cache, clone, filter, weigh.
type Study struct {
	// Cache is shared by every unit of every run. Required.
	Cache *dedup.VariantCache
	// RunID identifies the report; a random id is used when empty.
	RunID string
	// Parallelism bounds the number of units processed at once; <= 0 means 4.
	Parallelism int
	// Sink receives each row, in input order, after all units are measured.
	Sink report.Sink
	// Logf receives progress lines; nil discards them.
	Logf func(format string, args ...any)
}

// Run measures units and returns the report.
func (s *Study) Run(ctx context.Context, units []*javatype.Unit) (*report.Report, error) {
	if s.Cache == nil {
		return nil, fmt.Errorf("study requires a variant cache")
	}
	start := time.Now()
	runID := s.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	rep := &report.Report{RunID: runID, StartedAt: start.UTC()}

	ctx, span := tracer.Start(ctx, "study.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", runID),
		attribute.Int("units", len(units)),
		attribute.Int("parallelism", s.parallelism()),
	)

	canonical, stats, err := s.canonicalize(ctx, units)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.logf("canonicalized %d units: %d cached, %d new (%d rebuilt)", len(units), stats.Hits, stats.Misses, stats.Rebuilt)

	keep := ScanDeclarations(canonical)
	s.logf("found %d non-visible declarations", keep.Size())

	rows := make([]report.Row, len(canonical))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism())
	for i, u := range canonical {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rows[i] = Measure(u, keep)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("measuring units: %w", err)
	}

	if s.Sink != nil {
		for _, row := range rows {
			if err := s.Sink.InsertRow(ctx, row); err != nil {
				return nil, fmt.Errorf("insert row for %s: %w", row.SourceFile, err)
			}
		}
	}

	rep.Rows = rows
	rep.Summary = report.Summarize(rows)
	rep.Summary.CanonicalTypes = s.Cache.Len()
	rep.DurationMs = time.Since(start).Milliseconds()

	span.SetAttributes(
		attribute.Int("cache_hits", stats.Hits),
		attribute.Int("cache_misses", stats.Misses),
		attribute.Int("canonical_types", rep.Summary.CanonicalTypes),
	)
	span.SetStatus(codes.Ok, "")
	return rep, nil
}

// canonicalize deduplicates every unit against the shared cache, one
// Deduplicator per unit.
func (s *Study) canonicalize(ctx context.Context, units []*javatype.Unit) ([]*javatype.Unit, dedup.Stats, error) {
	ctx, span := tracer.Start(ctx, "study.canonicalize")
	defer span.End()

	out := make([]*javatype.Unit, len(units))
	var (
		mu    sync.Mutex
		total dedup.Stats
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism())
	for i, u := range units {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			d := dedup.New(s.Cache)
			out[i] = d.CanonicalizeUnit(u)

			st := d.Stats()
			mu.Lock()
			total.Hits += st.Hits
			total.Misses += st.Misses
			total.Rebuilt += st.Rebuilt
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, total, fmt.Errorf("canonicalizing units: %w", err)
	}
	return out, total, nil
}

// Measure weighs a canonical unit, then weighs a clone of it with
// non-visible members removed. Members in keep survive the filter.
func Measure(canonical *javatype.Unit, keep typeutil.Membership) report.Row {
	clone, clones := typeutil.CloneUnit(canonical)
	typeutil.FilterVisibility(clone.Roots(), keep, clones.Invert())

	return report.Row{
		SourceFile:           canonical.SourcePath,
		Weight:               int64(typeutil.WeighUnit(canonical)),
		WeightWithoutPrivate: int64(typeutil.WeighUnit(clone)),
	}
}

func (s *Study) parallelism() int {
	if s.Parallelism <= 0 {
		return 4
	}
	return s.Parallelism
}

func (s *Study) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}
