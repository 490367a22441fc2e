package study

import (
	"context"
	"fmt"
	"testing"

	"github.com/typedensity/typedensity/pkg/dedup"
	"github.com/typedensity/typedensity/pkg/javatype"
	"github.com/typedensity/typedensity/pkg/report"
)

// fooUnit builds a unit for: public class org.Foo { private int x; public Foo bar(); }
// When declare is set the unit also declares x, as the file defining Foo would.
func fooUnit(path string, declare bool) *javatype.Unit {
	foo := &javatype.Class{Flags: javatype.Public, FullyQualifiedName: "org.Foo"}
	bar := &javatype.Method{Name: "bar", Flags: javatype.Public, DeclaringType: foo, ReturnType: foo}
	x := &javatype.Variable{Name: "x", Flags: javatype.Private, Owner: foo, Type: javatype.Int}
	foo.Members = []*javatype.Variable{x}
	foo.Methods = []*javatype.Method{bar}

	u := &javatype.Unit{SourcePath: path, Types: []javatype.Type{foo, bar}}
	if declare {
		u.Declarations = []javatype.Type{bar, x}
	}
	return u
}

func TestRunSingleFile(t *testing.T) {
	table := &report.Table{}
	s := &Study{Cache: dedup.NewVariantCache(), Sink: table}

	rep, err := s.Run(context.Background(), []*javatype.Unit{fooUnit("src/Use.java", false)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := report.Row{SourceFile: "src/Use.java", Weight: 3, WeightWithoutPrivate: 2}
	if len(rep.Rows) != 1 || rep.Rows[0] != want {
		t.Fatalf("rows = %+v, want [%+v]", rep.Rows, want)
	}
	if rows := table.Rows(); len(rows) != 1 || rows[0] != want {
		t.Errorf("sink rows = %+v, want [%+v]", rows, want)
	}
	if rep.RunID == "" {
		t.Error("missing run id")
	}
	if rep.Summary.Files != 1 || rep.Summary.Weight != 3 || rep.Summary.WeightWithoutPrivate != 2 {
		t.Errorf("summary = %+v", rep.Summary)
	}
	if rep.Summary.CanonicalTypes != 3 {
		t.Errorf("canonical types = %d, want 3", rep.Summary.CanonicalTypes)
	}
}

func TestRunKeepsDeclaredMembers(t *testing.T) {
	// One worker, so Foo.java publishes its canonical graph before
	// Use.java is canonicalized against it.
	s := &Study{Cache: dedup.NewVariantCache(), Parallelism: 1}
	units := []*javatype.Unit{
		fooUnit("src/Foo.java", true),
		fooUnit("src/Use.java", false),
	}

	rep, err := s.Run(context.Background(), units)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// x is declared in Foo.java, so no file may drop it.
	for _, r := range rep.Rows {
		if r.Weight != 3 || r.WeightWithoutPrivate != 3 {
			t.Errorf("%s: got %d/%d, want 3/3", r.SourceFile, r.Weight, r.WeightWithoutPrivate)
		}
	}
	if rep.Summary.CanonicalTypes != 3 {
		t.Errorf("canonical types = %d, want 3 after merging both files", rep.Summary.CanonicalTypes)
	}
}

func TestRunPreservesInputOrder(t *testing.T) {
	table := &report.Table{}
	s := &Study{Cache: dedup.NewVariantCache(), Sink: table, Parallelism: 3}

	var units []*javatype.Unit
	for i := 0; i < 10; i++ {
		units = append(units, fooUnit(fmt.Sprintf("src/F%d.java", i), false))
	}

	rep, err := s.Run(context.Background(), units)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, r := range table.Rows() {
		if want := fmt.Sprintf("src/F%d.java", i); r.SourceFile != want {
			t.Errorf("row %d = %s, want %s", i, r.SourceFile, want)
		}
	}
	if rep.Summary.Files != 10 {
		t.Errorf("files = %d, want 10", rep.Summary.Files)
	}
}

func TestRunRequiresCache(t *testing.T) {
	s := &Study{}
	if _, err := s.Run(context.Background(), nil); err == nil {
		t.Error("expected error without a cache")
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Study{Cache: dedup.NewVariantCache()}
	if _, err := s.Run(ctx, []*javatype.Unit{fooUnit("A.java", false)}); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestScanDeclarations(t *testing.T) {
	u := fooUnit("src/Foo.java", true)
	got := ScanDeclarations([]*javatype.Unit{u})

	if got.Size() != 1 {
		t.Fatalf("got %d declarations, want 1", got.Size())
	}
	if !got.Contains(u.Declarations[1]) {
		t.Error("private field not collected")
	}
	if got.Contains(u.Declarations[0]) {
		t.Error("public method collected")
	}
}

func TestMeasure(t *testing.T) {
	u := fooUnit("src/Foo.java", false)
	row := Measure(u, nil)

	if row.Weight != 3 || row.WeightWithoutPrivate != 2 {
		t.Errorf("got %d/%d, want 3/2", row.Weight, row.WeightWithoutPrivate)
	}
	if foo := u.Types[0].(*javatype.Class); len(foo.Members) != 1 {
		t.Error("Measure modified its input")
	}
}
