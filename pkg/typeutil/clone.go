package typeutil

import "github.com/typedensity/typedensity/pkg/javatype"

// Clones maps nodes of one graph to their counterparts in another, by identity.
type Clones map[javatype.Type]javatype.Type

// Invert returns the reverse mapping.
func (c Clones) Invert() Clones {
	inv := make(Clones, len(c))
	for k, v := range c {
		inv[v] = k
	}
	return inv
}

// Lookup returns the counterpart of t, or t itself if it has none.
func (c Clones) Lookup(t javatype.Type) javatype.Type {
	if r, ok := c[t]; ok {
		return r
	}
	return t
}

// Clone deep-copies the graph reachable from roots. The copy shares no
// node with the input, while sharing and cycles inside the input are
// reproduced inside the copy. It returns the cloned roots, in order, and
// the original-to-clone map.
//
// The copy is made in two passes: the first allocates a placeholder for
// every reachable node, the second points each placeholder's references at
// the other placeholders.
func Clone(roots []javatype.Type) ([]javatype.Type, Clones) {
	clones := make(Clones)
	allocateClones(roots, clones)

	g := NewGuard()
	var rewrite func(t javatype.Type) javatype.Type
	rewrite = func(t javatype.Type) javatype.Type {
		return g.Visit(clones.Lookup(t), func(c javatype.Type) javatype.Type {
			javatype.MapChildren(c, rewrite)
			return c
		})
	}

	out := make([]javatype.Type, len(roots))
	for i, r := range roots {
		out[i] = rewrite(r)
	}
	return out, clones
}

// CloneUnit clones every root of u into a new unit.
func CloneUnit(u *javatype.Unit) (*javatype.Unit, Clones) {
	roots, clones := Clone(u.Roots())
	return u.WithRoots(roots), clones
}

func allocateClones(roots []javatype.Type, clones Clones) {
	stack := append([]javatype.Type(nil), roots...)
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if javatype.IsNil(t) || javatype.IsOpaque(t) {
			continue
		}
		if _, ok := clones[t]; ok {
			continue
		}
		clones[t] = javatype.ShallowCopy(t)
		stack = append(stack, javatype.Children(t)...)
	}
}
