package dedup

import (
	"fmt"
	"sync"
	"testing"

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

func newListOf(name string) *javatype.Parameterized {
	list := &javatype.Class{Flags: javatype.Public, FullyQualifiedName: "java.util.List", Kind: javatype.KindInterface}
	elem := &javatype.Class{Flags: javatype.Public, FullyQualifiedName: name}
	return &javatype.Parameterized{Type: list, TypeParameters: []javatype.Type{elem}}
}

func TestCanonicalizePassthrough(t *testing.T) {
	d := New(NewVariantCache())

	if got := d.Canonicalize(nil); got != nil {
		t.Errorf("Canonicalize(nil) = %v, want nil", got)
	}
	if got := d.Canonicalize(javatype.Int); got != javatype.Int {
		t.Errorf("Canonicalize(int) = %v, want the int singleton", got)
	}
	if got := d.Canonicalize(javatype.UnknownType); got != javatype.UnknownType {
		t.Errorf("Canonicalize(unknown) = %v, want the unknown singleton", got)
	}
}

func TestCanonicalizeAcyclicKeepsIdentity(t *testing.T) {
	d := New(NewVariantCache())
	l := newListOf("java.lang.String")

	if got := d.Canonicalize(l); got != l {
		t.Errorf("first canonical form of an acyclic graph should be the input itself")
	}
	if s := d.Stats(); s.Rebuilt != 0 || s.Misses != 3 {
		t.Errorf("stats = %+v, want 3 misses and no rebuilds", s)
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	cache := NewVariantCache()
	c := New(cache).Canonicalize(newFoo())

	if got := New(cache).Canonicalize(c); got != c {
		t.Error("canonicalizing a canonical node returned a different node")
	}

	foo := c.(*javatype.Class)
	for _, m := range foo.Methods {
		if got := New(cache).Canonicalize(m); got != m {
			t.Errorf("canonical method %v not a fixed point", m)
		}
	}
	for _, v := range foo.Members {
		if got := New(cache).Canonicalize(v); got != v {
			t.Errorf("canonical member %v not a fixed point", v)
		}
	}
}

func TestCanonicalizeCycleIsClosed(t *testing.T) {
	c := New(NewVariantCache()).Canonicalize(newFoo())

	foo, ok := c.(*javatype.Class)
	if !ok {
		t.Fatalf("canonical form is %T, want *Class", c)
	}
	bar := foo.Methods[0]
	if bar.DeclaringType != foo || bar.ReturnType != foo {
		t.Error("canonical method does not point back at the canonical class")
	}
	if foo.Members[0].Owner != foo {
		t.Error("canonical member does not point back at the canonical class")
	}
	if foo.Members[0].Type != javatype.Int {
		t.Error("primitive member type was replaced")
	}
}

func TestCanonicalizeMergesAcrossGraphs(t *testing.T) {
	cache := NewVariantCache()
	a := New(cache).Canonicalize(newFoo())
	b := New(cache).Canonicalize(newFoo())

	if a != b {
		t.Error("structurally equal graphs did not share a canonical node")
	}
	if got := len(cache.VariantsOf(a).Snapshot()); got != 1 {
		t.Errorf("got %d variants for org.Foo, want 1", got)
	}
}

// newMutualFoos builds two equal org.Foo classes whose bar methods return
// each other.
func newMutualFoos() (*javatype.Class, *javatype.Class) {
	f1 := &javatype.Class{Flags: javatype.Public, FullyQualifiedName: "org.Foo"}
	f2 := &javatype.Class{Flags: javatype.Public, FullyQualifiedName: "org.Foo"}
	f1.Methods = []*javatype.Method{{Name: "bar", Flags: javatype.Public, DeclaringType: f1, ReturnType: f2}}
	f2.Methods = []*javatype.Method{{Name: "bar", Flags: javatype.Public, DeclaringType: f2, ReturnType: f1}}
	return f1, f2
}

func TestCanonicalizeEqualCyclesInOneGraph(t *testing.T) {
	cache := NewVariantCache()
	f1, f2 := newMutualFoos()
	d := New(cache)
	c1 := d.Canonicalize(f1)
	c2 := d.Canonicalize(f2)

	// Not merged with each other within the graph that introduced them.
	if c1 == c2 {
		t.Fatal("mutually referencing classes merged within one graph")
	}
	if got := len(cache.VariantsOf(c1).Snapshot()); got != 2 {
		t.Errorf("got %d variants for org.Foo, want 2", got)
	}

	before := cache.Len()
	g1, g2 := newMutualFoos()
	d = New(cache)
	h1 := d.Canonicalize(g1)
	h2 := d.Canonicalize(g2)

	if cache.Len() != before {
		t.Errorf("cache grew from %d to %d on an equal graph", before, cache.Len())
	}
	if h1 == h2 {
		t.Error("second graph collapsed both classes onto one variant")
	}
	for _, h := range []javatype.Type{h1, h2} {
		if h != c1 && h != c2 {
			t.Errorf("second graph produced %p, want one of the existing variants", h)
		}
	}
}

func TestCanonicalizeSharesNestedNodes(t *testing.T) {
	cache := NewVariantCache()
	d := New(cache)

	a := d.Canonicalize(newListOf("java.lang.String")).(*javatype.Parameterized)
	b := New(cache).Canonicalize(newListOf("java.lang.Integer")).(*javatype.Parameterized)

	if a == b {
		t.Fatal("different parameterizations merged")
	}
	if a.Type != b.Type {
		t.Error("List base type not shared between parameterizations")
	}
}

func TestCanonicalizeDistinguishesFields(t *testing.T) {
	tests := []struct {
		name string
		a, b func() javatype.Type
	}{
		{
			name: "flags",
			a:    func() javatype.Type { return &javatype.Class{Flags: javatype.Public, FullyQualifiedName: "a.A"} },
			b:    func() javatype.Type { return &javatype.Class{Flags: javatype.Private, FullyQualifiedName: "a.A"} },
		},
		{
			name: "class kind",
			a:    func() javatype.Type { return &javatype.Class{FullyQualifiedName: "a.A"} },
			b:    func() javatype.Type { return &javatype.Class{FullyQualifiedName: "a.A", Kind: javatype.KindEnum} },
		},
		{
			name: "member list",
			a:    func() javatype.Type { return newFoo() },
			b: func() javatype.Type {
				foo := newFoo()
				foo.Members = nil
				return foo
			},
		},
		{
			name: "parameter names",
			a: func() javatype.Type {
				return &javatype.Method{Name: "m", ParameterNames: []string{"a"}, ParameterTypes: []javatype.Type{javatype.Int}}
			},
			b: func() javatype.Type {
				return &javatype.Method{Name: "m", ParameterNames: []string{"b"}, ParameterTypes: []javatype.Type{javatype.Int}}
			},
		},
		{
			name: "variance",
			a:    func() javatype.Type { return &javatype.GenericTypeVariable{Name: "T", Variance: javatype.Covariant} },
			b:    func() javatype.Type { return &javatype.GenericTypeVariable{Name: "T", Variance: javatype.Contravariant} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewVariantCache(WithSigner(func(javatype.Type) string { return "same" }))
			a := New(cache).Canonicalize(tt.a())
			b := New(cache).Canonicalize(tt.b())
			if a == b {
				t.Error("nodes that differ in one field were merged")
			}
		})
	}
}

func TestCanonicalizeNilListEqualsEmpty(t *testing.T) {
	cache := NewVariantCache()
	a := New(cache).Canonicalize(&javatype.Class{FullyQualifiedName: "a.A"})
	b := New(cache).Canonicalize(&javatype.Class{FullyQualifiedName: "a.A", Interfaces: []javatype.FullyQualified{}})
	if a != b {
		t.Error("nil and empty interface lists were not treated as equal")
	}
}

func TestSignatureCollisionDoesNotMerge(t *testing.T) {
	cache := NewVariantCache(WithSigner(func(javatype.Type) string { return "collide" }))

	a := &javatype.Class{Flags: javatype.Public, FullyQualifiedName: "a.A"}
	b := &javatype.Class{Flags: javatype.Public, FullyQualifiedName: "b.B"}

	ca := New(cache).Canonicalize(a)
	cb := New(cache).Canonicalize(b)
	if ca == cb {
		t.Fatal("distinct classes merged on a signature collision")
	}
	if got := cache.Len(); got != 2 {
		t.Errorf("cache holds %d nodes, want 2", got)
	}
	if sigs := cache.Signatures(); len(sigs) != 1 || sigs[0] != "collide" {
		t.Errorf("signatures = %v, want [collide]", sigs)
	}
}

func TestFailedHypothesisRollsBack(t *testing.T) {
	// Every node collides, so canonicalizing the second graph first tries
	// to match each node against the wrong candidates. Proofs made under
	// those failed hypotheses must not leak into the final result.
	cache := NewVariantCache(WithSigner(func(javatype.Type) string { return "collide" }))

	first := New(cache).Canonicalize(newFoo()).(*javatype.Class)

	other := newFoo()
	other.FullyQualifiedName = "org.Other"
	second := New(cache).Canonicalize(other).(*javatype.Class)

	if second == first {
		t.Fatal("org.Other merged with org.Foo")
	}
	if second.Methods[0].DeclaringType != second || second.Members[0].Owner != second {
		t.Error("second canonical graph points into the first")
	}
	if second.Methods[0] == first.Methods[0] {
		t.Error("method of a different class was reused")
	}
}

func TestCanonicalizeUnit(t *testing.T) {
	cache := NewVariantCache()
	foo := newFoo()
	u := &javatype.Unit{
		SourcePath:   "org/Foo.java",
		Types:        []javatype.Type{foo, foo.Methods[0]},
		Declarations: []javatype.Type{foo.Members[0]},
	}

	cu := New(cache).CanonicalizeUnit(u)
	if cu == u || cu.SourcePath != u.SourcePath {
		t.Fatalf("unexpected canonical unit %+v", cu)
	}
	cfoo := cu.Types[0].(*javatype.Class)
	if cu.Types[1] != cfoo.Methods[0] {
		t.Error("method root not the canonical class's method")
	}
	if cu.Declarations[0] != cfoo.Members[0] {
		t.Error("declaration root not the canonical class's member")
	}
	if u.Types[0] != foo {
		t.Error("input unit was modified")
	}
}

func TestDeterministicAcrossOrders(t *testing.T) {
	cache := NewVariantCache()
	d := New(cache)

	bar := newFoo().Methods[0]
	fooFirst := d.Canonicalize(newFoo()).(*javatype.Class)
	barLater := New(cache).Canonicalize(bar)

	if barLater != fooFirst.Methods[0] {
		t.Error("method canonicalized on its own did not resolve to the class's canonical method")
	}
}

func TestConcurrentCanonicalize(t *testing.T) {
	cache := NewVariantCache()

	const workers = 8
	results := make([]javatype.Type, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := New(cache)
			for j := 0; j < 20; j++ {
				d.Canonicalize(newListOf(fmt.Sprintf("p.C%d", j)))
			}
			results[i] = d.Canonicalize(newFoo())
		}(i)
	}
	wg.Wait()

	// Concurrent first sightings may each publish a variant. Afterwards
	// every equal graph resolves to one of them.
	final := New(cache).Canonicalize(newFoo())
	if !cache.VariantsOf(final).Contains(final) {
		t.Error("canonical node missing from the cache")
	}
	for i, r := range results {
		if r == nil {
			t.Errorf("worker %d produced nil", i)
		}
	}
}
