package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/typedensity/typedensity/pkg/report"
	"github.com/typedensity/typedensity/pkg/study"
	"github.com/typedensity/typedensity/pkg/surface"
)

func newWeighCmd() *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "weigh [unit files or directories...]",
		Short: "Weigh units as parsed, without deduplication",
		Long: `Reports, for each unit independently, the number of distinct types reachable
from it and the count after dropping non-visible members. No variant cache is
shared, so identical types referenced from different files are not merged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWeigh(cmd.Context(), outputFmt, args)
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text, json, csv or markdown")

	return cmd
}

func runWeigh(ctx context.Context, outputFmt string, args []string) error {
	renderer, err := surface.ForFormat(outputFmt)
	if err != nil {
		return err
	}
	units, err := loadUnitFiles(args)
	if err != nil {
		return err
	}

	start := time.Now()
	keep := study.ScanDeclarations(units)
	rep := &report.Report{RunID: uuid.New().String(), StartedAt: start.UTC()}
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.Rows = append(rep.Rows, study.Measure(u, keep))
	}
	rep.Summary = report.Summarize(rep.Rows)
	rep.DurationMs = time.Since(start).Milliseconds()

	if err := renderer.Render(os.Stdout, rep); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	return nil
}
