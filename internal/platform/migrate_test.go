package platform

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}

	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	if up == 0 || up != down {
		t.Errorf("got %d up and %d down migrations, want a matching non-zero count", up, down)
	}

	data, err := fs.ReadFile(migrationsFS, "migrations/000001_study_runs.up.sql")
	if err != nil {
		t.Fatalf("read first migration: %v", err)
	}
	for _, table := range []string{"study_runs", "type_reports"} {
		if !strings.Contains(string(data), "CREATE TABLE "+table) {
			t.Errorf("first migration does not create %s", table)
		}
	}
}

func TestRunStatusMigration(t *testing.T) {
	up, err := fs.ReadFile(migrationsFS, "migrations/000002_study_run_status.up.sql")
	if err != nil {
		t.Fatalf("read status migration: %v", err)
	}
	for _, want := range []string{"ADD COLUMN status", "ADD COLUMN error", "'failed'"} {
		if !strings.Contains(string(up), want) {
			t.Errorf("status migration missing %q", want)
		}
	}

	down, err := fs.ReadFile(migrationsFS, "migrations/000002_study_run_status.down.sql")
	if err != nil {
		t.Fatalf("read status down migration: %v", err)
	}
	if !strings.Contains(string(down), "DROP COLUMN IF EXISTS status") {
		t.Error("status down migration does not drop status")
	}
}
