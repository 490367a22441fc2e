// Package dedup merges structurally identical type nodes, across files and
// across cyclic references, into shared canonical instances.
//
// Equality is coinductive. To decide whether a node equals a cached
// candidate the engine first assumes it does (a proposed equivalence),
// compares every field, and compares nested types by canonicalizing them
// and checking identity. A nested comparison that cycles back to a node
// under evaluation sees the assumption instead of recursing forever.
package dedup

import (
	"reflect"

	"github.com/typedensity/typedensity/pkg/javatype"
)

// Stats counts the outcomes of one Deduplicator's canonicalizations.
type Stats struct {
	Hits    int `json:"hits"`    // nodes replaced by a cached variant
	Misses  int `json:"misses"`  // nodes that became a new variant
	Rebuilt int `json:"rebuilt"` // misses whose children changed, so a new node was built
}

// Deduplicator canonicalizes type graphs against a shared VariantCache.
//
// A Deduplicator holds per-call state and is not safe for concurrent use.
// Create one per unit of work and drop it afterwards; the cache is the only
// state that outlives it.
type Deduplicator struct {
	cache *VariantCache

	// proven maps an input node to its established canonical node.
	proven map[javatype.Type]javatype.Type
	// proposed maps a node under evaluation to its tentative canonical node.
	proposed map[javatype.Type]javatype.Type

	// hypotheses is the number of candidate comparisons in flight. While
	// positive, proven entries are journaled so a failed hypothesis can be
	// rolled back.
	hypotheses int
	journal    []javatype.Type
	// pending holds variants built during the current top-level call. They
	// are published to the cache only once the call returns, when every
	// node they reach is complete.
	pending []pendingVariant

	stats Stats
}

type pendingVariant struct {
	set  *VariantSet
	node javatype.Type
}

// New creates a Deduplicator backed by cache.
func New(cache *VariantCache) *Deduplicator {
	return &Deduplicator{
		cache:    cache,
		proven:   make(map[javatype.Type]javatype.Type),
		proposed: make(map[javatype.Type]javatype.Type),
	}
}

// Stats returns the counters accumulated so far.
func (d *Deduplicator) Stats() Stats {
	return d.stats
}

// Canonicalize returns the canonical node for t. Structurally equal inputs
// yield the identical output, and canonicalizing a canonical node returns
// it unchanged. Nil and opaque kinds are returned as-is.
func (d *Deduplicator) Canonicalize(t javatype.Type) javatype.Type {
	c := d.visit(t)
	d.publish()
	return c
}

// CanonicalizeUnit canonicalizes every root of u and returns a new unit
// referencing the canonical nodes. u itself is not modified.
func (d *Deduplicator) CanonicalizeUnit(u *javatype.Unit) *javatype.Unit {
	roots := u.Roots()
	out := make([]javatype.Type, len(roots))
	for i, r := range roots {
		out[i] = d.visit(r)
		d.publish()
	}
	return u.WithRoots(out)
}

func (d *Deduplicator) visit(t javatype.Type) javatype.Type {
	if javatype.IsNil(t) || javatype.IsOpaque(t) {
		return t
	}
	if p, ok := d.proven[t]; ok {
		return p
	}
	if p, ok := d.proposed[t]; ok {
		return p
	}

	variants := d.cache.VariantsOf(t)
	for _, candidate := range d.candidates(variants) {
		if d.matches(t, candidate) {
			d.stats.Hits++
			return candidate
		}
	}

	// No variant matched. Assume t is its own canonical form while its
	// children are canonicalized. Cycles close on the copy under
	// construction, so a cyclic node is always rebuilt; an acyclic node
	// whose children are all unchanged keeps its identity.
	// The replacement becomes a candidate only after its children, so two
	// distinct but equal cyclic nodes reached in the same graph (Foo.bar returning another
	// Foo whose bar returns the first) each become a variant here. Later
	// graphs match against either.
	replacement := javatype.ShallowCopy(t)
	d.proposed[t] = replacement
	changed := javatype.MapChildren(replacement, d.visit)
	delete(d.proposed, t)

	if !changed {
		replacement = t
	} else {
		d.stats.Rebuilt++
	}
	d.stats.Misses++
	d.addVariant(variants, replacement)
	d.prove(t, replacement)
	return replacement
}

// matches tests the hypothesis t == candidate and commits it on success.
// On failure everything proven under the hypothesis is rolled back.
func (d *Deduplicator) matches(t, candidate javatype.Type) bool {
	journalMark, pendingMark := len(d.journal), len(d.pending)

	d.proposed[t] = candidate
	d.hypotheses++
	same := d.isEqual(t, candidate)
	d.hypotheses--
	delete(d.proposed, t)

	if !same {
		for _, k := range d.journal[journalMark:] {
			delete(d.proven, k)
		}
		d.journal = d.journal[:journalMark]
		d.pending = d.pending[:pendingMark]
		return false
	}

	d.prove(t, candidate)
	if d.hypotheses == 0 {
		d.journal = d.journal[:0]
	}
	return true
}

func (d *Deduplicator) candidates(variants *VariantSet) []javatype.Type {
	out := variants.Snapshot()
	for _, p := range d.pending {
		if p.set == variants {
			out = append(out, p.node)
		}
	}
	return out
}

func (d *Deduplicator) prove(t, canonical javatype.Type) {
	d.proven[t] = canonical
	if d.hypotheses > 0 {
		d.journal = append(d.journal, t)
	}
}

func (d *Deduplicator) addVariant(set *VariantSet, t javatype.Type) {
	d.pending = append(d.pending, pendingVariant{set: set, node: t})
}

// publish adds the variants of a completed top-level call to the cache.
func (d *Deduplicator) publish() {
	for _, p := range d.pending {
		p.set.Add(p.node)
	}
	d.pending = d.pending[:0]
}

func (d *Deduplicator) isEqual(t, variant javatype.Type) bool {
	if t == variant {
		return true
	}
	if reflect.TypeOf(t) != reflect.TypeOf(variant) {
		return false
	}

	switch a := t.(type) {
	case *javatype.Class:
		b := variant.(*javatype.Class)
		return a.Flags == b.Flags &&
			a.FullyQualifiedName == b.FullyQualifiedName &&
			a.Kind == b.Kind &&
			d.same(a.OwningClass, b.OwningClass) &&
			d.same(a.Supertype, b.Supertype) &&
			sameList(d, a.Interfaces, b.Interfaces) &&
			sameList(d, a.Methods, b.Methods) &&
			sameList(d, a.Members, b.Members) &&
			sameList(d, a.Annotations, b.Annotations) &&
			sameList(d, a.TypeParameters, b.TypeParameters)
	case *javatype.Parameterized:
		b := variant.(*javatype.Parameterized)
		return d.same(a.Type, b.Type) &&
			sameList(d, a.TypeParameters, b.TypeParameters)
	case *javatype.Array:
		b := variant.(*javatype.Array)
		return d.same(a.ElemType, b.ElemType)
	case *javatype.GenericTypeVariable:
		b := variant.(*javatype.GenericTypeVariable)
		return a.Name == b.Name &&
			a.Variance == b.Variance &&
			sameList(d, a.Bounds, b.Bounds)
	case *javatype.Method:
		b := variant.(*javatype.Method)
		return a.Name == b.Name &&
			a.Flags == b.Flags &&
			sameStrings(a.ParameterNames, b.ParameterNames) &&
			sameList(d, a.Annotations, b.Annotations) &&
			sameList(d, a.ParameterTypes, b.ParameterTypes) &&
			d.same(a.ReturnType, b.ReturnType) &&
			sameList(d, a.ThrownExceptions, b.ThrownExceptions) &&
			d.same(a.DeclaringType, b.DeclaringType)
	case *javatype.Variable:
		b := variant.(*javatype.Variable)
		return a.Name == b.Name &&
			a.Flags == b.Flags &&
			d.same(a.Owner, b.Owner) &&
			d.same(a.Type, b.Type) &&
			sameList(d, a.Annotations, b.Annotations)
	case *javatype.MultiCatch:
		b := variant.(*javatype.MultiCatch)
		return sameList(d, a.ThrowableTypes, b.ThrowableTypes)
	}

	return true
}

// same reports whether test canonicalizes to exactly variant.
func (d *Deduplicator) same(test, variant javatype.Type) bool {
	testNil, variantNil := javatype.IsNil(test), javatype.IsNil(variant)
	if testNil || variantNil {
		return testNil && variantNil
	}
	return d.visit(test) == variant
}

// sameList compares element-wise with same. A nil list equals an empty one.
func sameList[T javatype.Type](d *Deduplicator, test, variant []T) bool {
	if len(test) != len(variant) {
		return false
	}
	for i := range test {
		if !d.same(test[i], variant[i]) {
			return false
		}
	}
	return true
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
