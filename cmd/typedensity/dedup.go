package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/typedensity/typedensity/internal/storage"
	"github.com/typedensity/typedensity/pkg/dedup"
	"github.com/typedensity/typedensity/pkg/javatype"
	"github.com/typedensity/typedensity/pkg/typeutil"
)

func newDedupCmd() *cobra.Command {
	var (
		writeDir       string
		showSignatures bool
	)

	cmd := &cobra.Command{
		Use:   "dedup [unit files or directories...]",
		Short: "Canonicalize units against one variant cache and report sharing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedup(cmd.Context(), dedupOpts{
				writeDir:       writeDir,
				showSignatures: showSignatures,
				args:           args,
			})
		},
	}

	cmd.Flags().StringVar(&writeDir, "write", "", "Directory to write canonical units to")
	cmd.Flags().BoolVar(&showSignatures, "signatures", false, "List every signature and its variant count")

	return cmd
}

type dedupOpts struct {
	writeDir       string
	showSignatures bool
	args           []string
}

func runDedup(ctx context.Context, opts dedupOpts) error {
	units, err := loadUnitFiles(opts.args)
	if err != nil {
		return err
	}

	cache := dedup.NewVariantCache()
	var (
		total       dedup.Stats
		before      int
		after       int
		canonical   = make([]*javatype.Unit, 0, len(units))
		allOriginal []javatype.Type
		allCanon    []javatype.Type
	)
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return err
		}
		d := dedup.New(cache)
		cu := d.CanonicalizeUnit(u)
		canonical = append(canonical, cu)

		st := d.Stats()
		total.Hits += st.Hits
		total.Misses += st.Misses
		total.Rebuilt += st.Rebuilt
		before += typeutil.WeighUnit(u)
		after += typeutil.WeighUnit(cu)
		allOriginal = append(allOriginal, u.Roots()...)
		allCanon = append(allCanon, cu.Roots()...)
	}

	fmt.Printf("Units:            %d\n", len(units))
	fmt.Printf("Cache hits:       %d\n", total.Hits)
	fmt.Printf("New variants:     %d (%d rebuilt)\n", total.Misses, total.Rebuilt)
	fmt.Printf("Canonical types:  %d under %d signatures\n", cache.Len(), len(cache.Signatures()))
	fmt.Printf("Per-file weight:  %d before, %d after\n", before, after)
	fmt.Printf("Distinct types:   %d before, %d after\n", typeutil.Weigh(allOriginal...), typeutil.Weigh(allCanon...))

	if opts.showSignatures {
		fmt.Println()
		for _, sig := range cache.Signatures() {
			fmt.Printf("%4d  %s\n", cache.VariantsOfSignature(sig).Len(), sig)
		}
	}

	if opts.writeDir != "" {
		for _, cu := range canonical {
			path := filepath.Join(opts.writeDir, storage.UnitID(cu.SourcePath)+".json")
			if err := javatype.SaveUnit(path, cu); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
		}
		fmt.Fprintf(os.Stderr, "Wrote %d canonical units to %s\n", len(canonical), opts.writeDir)
	}
	return nil
}
