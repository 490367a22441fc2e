package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/typedensity/typedensity/internal/platform"
	"github.com/typedensity/typedensity/internal/reportdb"
	"github.com/typedensity/typedensity/internal/storage"
	"github.com/typedensity/typedensity/pkg/config"
	"github.com/typedensity/typedensity/pkg/dedup"
	"github.com/typedensity/typedensity/pkg/javatype"
	"github.com/typedensity/typedensity/pkg/report"
	"github.com/typedensity/typedensity/pkg/study"
	"github.com/typedensity/typedensity/pkg/surface"
)

func newStudyCmd() *cobra.Command {
	var (
		projectPath string
		project     string
		outputFmt   string
		parallelism int
		fromStorage bool
		saveUnits   bool
		databaseURL string
	)

	cmd := &cobra.Command{
		Use:   "study [unit files, directories or ids...]",
		Short: "Measure per-file type weight with and without non-visible members",
		Long: `Canonicalizes every unit against a shared variant cache, then reports for
each source file the number of distinct types it references, and the same
count after dropping members that are neither public nor protected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudy(cmd.Context(), studyOpts{
				projectPath: projectPath,
				project:     project,
				outputFmt:   outputFmt,
				parallelism: parallelism,
				fromStorage: fromStorage,
				saveUnits:   saveUnits,
				databaseURL: databaseURL,
				args:        args,
			})
		},
	}

	cmd.Flags().StringVar(&projectPath, "project-path", "", "Path to the project root (default: current directory)")
	cmd.Flags().StringVar(&project, "project", "", "Project name used as the storage prefix (default: project directory name)")
	cmd.Flags().StringVar(&outputFmt, "output", "", "Output format: text, json, csv or markdown (default: from config, else text)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "Units processed at once (default: from config)")
	cmd.Flags().BoolVar(&fromStorage, "from-storage", false, "Treat arguments as unit ids in blob storage")
	cmd.Flags().BoolVar(&saveUnits, "save-units", false, "Upload the loaded units to blob storage")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres URL for persisting rows (default: config or DATABASE_URL)")

	return cmd
}

type studyOpts struct {
	projectPath string
	project     string
	outputFmt   string
	parallelism int
	fromStorage bool
	saveUnits   bool
	databaseURL string
	args        []string
}

func runStudy(ctx context.Context, opts studyOpts) error {
	root, err := resolveProject(opts.projectPath)
	if err != nil {
		return err
	}
	cfg := loadConfig(root)
	project := firstNonEmpty(opts.project, filepath.Base(root))

	renderer, err := surface.ForFormat(firstNonEmpty(opts.outputFmt, cfg.Study.Output, "text"))
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, cfg.Storage, config.StorageDir(root))
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer storage.Close(store)

	var units []*javatype.Unit
	if opts.fromStorage {
		units, err = loadStoredUnits(ctx, store, project, opts.args)
	} else {
		units, err = loadUnitFiles(opts.args)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Loaded %d units\n", len(units))

	if opts.saveUnits && !opts.fromStorage {
		if err := saveStoredUnits(ctx, store, project, units); err != nil {
			return fmt.Errorf("saving units: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved %d units to %s storage\n", len(units), firstNonEmpty(cfg.Storage.Backend, "local"))
	}

	runID := uuid.New().String()
	s := &study.Study{
		Cache:       dedup.NewVariantCache(),
		RunID:       runID,
		Parallelism: firstPositive(opts.parallelism, cfg.Study.Parallelism),
		Logf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
		},
	}

	var rdb *reportdb.Store
	if dbURL := firstNonEmpty(opts.databaseURL, cfg.Database.URL, os.Getenv("DATABASE_URL")); dbURL != "" {
		db, err := platform.OpenDB(dbURL, cfg.Database.AutoMigrate)
		if err != nil {
			return err
		}
		defer db.Close()

		rdb = reportdb.NewStore(db)
		if _, err := rdb.CreateRun(ctx, runID, project); err != nil {
			return err
		}
		s.Sink = rdb.Sink(runID)
	}

	fmt.Fprintf(os.Stderr, "Studying %s (run %s)...\n", project, runID)
	rep, err := s.Run(ctx, units)
	if err != nil {
		if rdb != nil {
			if ferr := rdb.FailRun(context.WithoutCancel(ctx), runID, err); ferr != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", ferr)
			}
		}
		return fmt.Errorf("study: %w", err)
	}

	if rdb != nil {
		if err := rdb.FinishRun(ctx, rep); err != nil {
			return err
		}
	}
	archiveReport(ctx, store, project, rep)

	if err := renderer.Render(os.Stdout, rep); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	return nil
}

// archiveReport stores the JSON report. Failures are reported but do not
// fail the run.
func archiveReport(ctx context.Context, store storage.Client, project string, rep *report.Report) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to marshal report: %v\n", err)
		return
	}
	if err := store.PutReport(ctx, project, rep.RunID, data); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to archive report: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Report archived: %s/reports/%s\n", project, rep.RunID)
}
