package typeutil

import (
	"testing"

	"github.com/hashicorp/go-set/v3"

	"github.com/typedensity/typedensity/pkg/javatype"
)

// newFoo builds: public class org.Foo { private int x; public Foo bar(); }
func newFoo() *javatype.Class {
	foo := &javatype.Class{Flags: javatype.Public, FullyQualifiedName: "org.Foo"}
	bar := &javatype.Method{Name: "bar", Flags: javatype.Public, DeclaringType: foo, ReturnType: foo}
	x := &javatype.Variable{Name: "x", Flags: javatype.Private, Owner: foo, Type: javatype.Int}
	foo.Members = []*javatype.Variable{x}
	foo.Methods = []*javatype.Method{bar}
	return foo
}

func TestGuard(t *testing.T) {
	g := NewGuard()
	foo := newFoo()

	calls := 0
	fn := func(t javatype.Type) javatype.Type {
		calls++
		return t
	}
	g.Visit(foo, fn)
	g.Visit(foo, fn)
	g.Visit(nil, fn)

	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
	if !g.Seen(foo) || g.Seen(foo.Methods[0]) {
		t.Error("Seen mismatch")
	}
	if g.Len() != 1 {
		t.Errorf("Len = %d, want 1", g.Len())
	}
}

func TestWeigh(t *testing.T) {
	foo := newFoo()
	str := &javatype.Class{FullyQualifiedName: "java.lang.String"}
	shared := &javatype.Array{ElemType: str}

	tests := []struct {
		name  string
		roots []javatype.Type
		want  int
	}{
		{"empty", nil, 0},
		{"primitive only", []javatype.Type{javatype.Int}, 0},
		{"nil root", []javatype.Type{nil}, 0},
		{"cycle counts once", []javatype.Type{foo}, 3},
		{"repeated root", []javatype.Type{foo, foo, foo.Methods[0]}, 3},
		{"shared node", []javatype.Type{shared, &javatype.Array{ElemType: shared}}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Weigh(tt.roots...); got != tt.want {
				t.Errorf("Weigh = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCloneIndependence(t *testing.T) {
	foo := newFoo()
	roots, clones := Clone([]javatype.Type{foo, foo.Methods[0]})

	cfoo, ok := roots[0].(*javatype.Class)
	if !ok {
		t.Fatalf("cloned root is %T, want *Class", roots[0])
	}
	if cfoo == foo {
		t.Fatal("clone returned the original")
	}
	if roots[1] != cfoo.Methods[0] {
		t.Error("shared method cloned twice")
	}
	if cfoo.Methods[0].DeclaringType != cfoo || cfoo.Members[0].Owner != cfoo {
		t.Error("cycle inside the clone does not close on the clone")
	}
	if cfoo.Members[0].Type != javatype.Int {
		t.Error("primitive was cloned")
	}

	orig := set.New[javatype.Type](0)
	for _, n := range []javatype.Type{foo, foo.Methods[0], foo.Members[0]} {
		orig.Insert(n)
	}
	for _, c := range clones {
		if orig.Contains(c) {
			t.Errorf("clone %v shares a node with the original", c)
		}
	}

	if Weigh(roots...) != Weigh(foo) {
		t.Errorf("clone weight %d differs from original %d", Weigh(roots...), Weigh(foo))
	}

	cfoo.Members = nil
	if len(foo.Members) != 1 {
		t.Error("mutating the clone changed the original")
	}
}

func TestClonesInvert(t *testing.T) {
	foo := newFoo()
	_, clones := Clone([]javatype.Type{foo})
	inv := clones.Invert()

	for orig, c := range clones {
		if inv.Lookup(c) != orig {
			t.Errorf("Invert does not map %v back", c)
		}
	}
	if inv.Lookup(javatype.Int) != javatype.Int {
		t.Error("Lookup of an unmapped node should return it")
	}
}

func TestFilterVisibilityDropsPrivate(t *testing.T) {
	foo := newFoo()
	roots, clones := Clone([]javatype.Type{foo})

	before := Weigh(roots...)
	res := FilterVisibility(roots, nil, clones.Invert())
	after := Weigh(roots...)

	if before != 3 || after != 2 {
		t.Errorf("weight before/after = %d/%d, want 3/2", before, after)
	}
	if res.DroppedMembers != 1 || res.DroppedMethods != 0 {
		t.Errorf("result = %+v, want one dropped member", res)
	}
	if len(foo.Members) != 1 {
		t.Error("filter touched the original graph")
	}
}

func TestFilterVisibilityKeepSet(t *testing.T) {
	foo := newFoo()
	roots, clones := Clone([]javatype.Type{foo})

	keep := set.New[javatype.Type](1)
	keep.Insert(foo.Members[0])

	res := FilterVisibility(roots, keep, clones.Invert())
	if res.DroppedMembers != 0 {
		t.Errorf("kept member was dropped: %+v", res)
	}
	if got := Weigh(roots...); got != 3 {
		t.Errorf("Weigh = %d, want 3", got)
	}
}

func TestFilterVisibilityMonotone(t *testing.T) {
	outer := &javatype.Class{Flags: javatype.Public, FullyQualifiedName: "org.Outer"}
	inner := &javatype.Class{Flags: javatype.Protected, FullyQualifiedName: "org.Outer$Inner", OwningClass: outer}
	helper := &javatype.Method{Name: "helper", Flags: javatype.Private | javatype.Static, DeclaringType: inner, ReturnType: inner}
	api := &javatype.Method{Name: "api", Flags: javatype.Protected, DeclaringType: inner, ReturnType: javatype.Void}
	cache := &javatype.Variable{Name: "cache", Owner: outer, Type: &javatype.Array{ElemType: inner}}
	inner.Methods = []*javatype.Method{helper, api}
	outer.Members = []*javatype.Variable{cache}

	roots, clones := Clone([]javatype.Type{outer, inner})
	before := Weigh(roots...)
	FilterVisibility(roots, nil, clones.Invert())
	after := Weigh(roots...)

	if after > before {
		t.Errorf("filtering increased weight from %d to %d", before, after)
	}
	if got := len(roots[1].(*javatype.Class).Methods); got != 1 {
		t.Errorf("inner has %d methods after filter, want 1", got)
	}
	if got := len(roots[0].(*javatype.Class).Members); got != 0 {
		t.Errorf("outer has %d members after filter, want 0", got)
	}
}
