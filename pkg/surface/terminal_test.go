package surface_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/typedensity/typedensity/pkg/report"
	"github.com/typedensity/typedensity/pkg/surface"
)

func sampleReport() *report.Report {
	rows := []report.Row{
		{SourceFile: "src/main/java/org/Foo.java", Weight: 3, WeightWithoutPrivate: 2},
		{SourceFile: "src/main/java/org/Bar.java", Weight: 10, WeightWithoutPrivate: 4},
		{SourceFile: "src/main/java/org/Baz.java", Weight: 5, WeightWithoutPrivate: 5},
	}
	summary := report.Summarize(rows)
	summary.CanonicalTypes = 12
	return &report.Report{
		RunID:      "run-1",
		DurationMs: 42,
		Rows:       rows,
		Summary:    summary,
	}
}

func TestTerminalRenderer_BasicOutput(t *testing.T) {
	// Set NO_COLOR to avoid ANSI codes in test comparison
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "3 files") {
		t.Error("expected file count in header")
	}
	if !strings.Contains(output, "weight 18, without private 11") {
		t.Errorf("expected totals in header, got:\n%s", output)
	}
	if !strings.Contains(output, "src/main/java/org/Bar.java") {
		t.Error("expected Bar.java row")
	}
	if !strings.Contains(output, "60.0%") {
		t.Error("expected 60.0% reduction for Bar.java")
	}
	if !strings.Contains(output, "12 canonical types") {
		t.Error("expected canonical type count")
	}
}

func TestTerminalRenderer_NoRows(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.Render(&buf, &report.Report{}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(buf.String(), "No source files") {
		t.Error("expected 'No source files' message")
	}
}

func TestTerminalRenderer_ColorRespected(t *testing.T) {
	// Without NO_COLOR, output should have ANSI codes
	os.Unsetenv("NO_COLOR")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(buf.String(), "\033[") {
		t.Error("expected ANSI escape codes when NO_COLOR is not set")
	}
}

func TestCSVRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := (&surface.CSVRenderer{}).Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
	if strings.Join(records[0], ",") != "source_file,weight,weight_without_private" {
		t.Errorf("header = %v", records[0])
	}
	if records[2][0] != "src/main/java/org/Bar.java" || records[2][1] != "10" || records[2][2] != "4" {
		t.Errorf("row 2 = %v", records[2])
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := (&surface.JSONRenderer{}).Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	var got report.Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", got.RunID)
	}
	if len(got.Rows) != 3 || got.Rows[0].WeightWithoutPrivate != 2 {
		t.Errorf("Rows = %+v", got.Rows)
	}
	if !strings.Contains(buf.String(), `"weight_without_private"`) {
		t.Error("expected weight_without_private column name")
	}
}

func TestMarkdownRenderer_Truncates(t *testing.T) {
	r := &surface.MarkdownRenderer{MaxRows: 2}
	body := r.BuildSummary(sampleReport())

	if !strings.Contains(body, "## Type density: 3 files, weight 18 → 11") {
		t.Errorf("unexpected heading:\n%s", body)
	}
	if !strings.Contains(body, "| `src/main/java/org/Foo.java` | 3 | 2 |") {
		t.Error("expected Foo.java row")
	}
	if strings.Contains(body, "Baz.java") {
		t.Error("expected Baz.java to be truncated")
	}
	if !strings.Contains(body, "_... and 1 more files_") {
		t.Error("expected truncation note")
	}
}

func TestForFormat(t *testing.T) {
	for _, format := range []string{"", "text", "json", "csv", "markdown", "md"} {
		if _, err := surface.ForFormat(format); err != nil {
			t.Errorf("ForFormat(%q) error: %v", format, err)
		}
	}
	if _, err := surface.ForFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
