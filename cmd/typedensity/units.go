package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/typedensity/typedensity/internal/storage"
	"github.com/typedensity/typedensity/pkg/config"
	"github.com/typedensity/typedensity/pkg/javatype"
)

// resolveProject returns the absolute project path, defaulting to the
// current directory.
func resolveProject(projectPath string) (string, error) {
	if projectPath == "" {
		projectPath = "."
	}
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return "", fmt.Errorf("resolving project path: %w", err)
	}
	return abs, nil
}

func loadConfig(projectRoot string) *config.Config {
	path := config.FindConfigFile(projectRoot)
	if path == "" {
		return config.DefaultConfig()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config %s: %v\n", path, err)
		return config.DefaultConfig()
	}
	return cfg
}

// unitFiles expands args into encoded unit files. Directories are walked
// for *.json files; the result is sorted so runs are reproducible.
func unitFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".json") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// loadUnitFiles decodes every unit file named by args.
func loadUnitFiles(args []string) ([]*javatype.Unit, error) {
	files, err := unitFiles(args)
	if err != nil {
		return nil, err
	}
	units := make([]*javatype.Unit, 0, len(files))
	for _, f := range files {
		u, err := javatype.LoadUnit(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		units = append(units, u)
	}
	return units, nil
}

// loadStoredUnits fetches and decodes units by id from blob storage.
func loadStoredUnits(ctx context.Context, store storage.Client, project string, ids []string) ([]*javatype.Unit, error) {
	units := make([]*javatype.Unit, 0, len(ids))
	for _, id := range ids {
		data, err := store.GetUnit(ctx, project, id)
		if err != nil {
			return nil, fmt.Errorf("fetching unit %s: %w", id, err)
		}
		u, err := javatype.DecodeUnit(data)
		if err != nil {
			return nil, fmt.Errorf("decoding unit %s: %w", id, err)
		}
		units = append(units, u)
	}
	return units, nil
}

// saveStoredUnits uploads units keyed by their source path.
func saveStoredUnits(ctx context.Context, store storage.Client, project string, units []*javatype.Unit) error {
	for _, u := range units {
		data, err := javatype.EncodeUnit(u)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", u.SourcePath, err)
		}
		if err := store.PutUnit(ctx, project, storage.UnitID(u.SourcePath), data); err != nil {
			return err
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
