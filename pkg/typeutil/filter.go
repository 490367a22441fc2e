package typeutil

import "github.com/typedensity/typedensity/pkg/javatype"

// Membership is a set of nodes tested by identity.
type Membership interface {
	Contains(javatype.Type) bool
}

// FilterResult summarizes a visibility filter pass.
type FilterResult struct {
	DroppedMembers int
	DroppedMethods int
}

// FilterVisibility removes, in place, every class member and method that is
// neither public nor protected, unless its origin is in keep. origins maps
// nodes of the filtered graph back to the graph keep refers to; nodes
// without an origin are looked up as themselves.
//
// The graph must be unpublished, typically a fresh Clone. Each node is
// rewritten once, so nodes shared before filtering stay shared after.
func FilterVisibility(roots []javatype.Type, keep Membership, origins Clones) FilterResult {
	f := &visibilityFilter{guard: NewGuard(), keep: keep, origins: origins}
	for _, r := range roots {
		f.visit(r)
	}
	return f.result
}

type visibilityFilter struct {
	guard   *Guard
	keep    Membership
	origins Clones
	result  FilterResult
}

func (f *visibilityFilter) visit(t javatype.Type) javatype.Type {
	return f.guard.Visit(t, func(t javatype.Type) javatype.Type {
		if c, ok := t.(*javatype.Class); ok {
			c.Members = retain(c.Members, f.externallyUsed, &f.result.DroppedMembers)
			c.Methods = retain(c.Methods, f.externallyUsed, &f.result.DroppedMethods)
		}
		for _, child := range javatype.Children(t) {
			f.visit(child)
		}
		return t
	})
}

func (f *visibilityFilter) externallyUsed(t javatype.Type, flags javatype.Flag) bool {
	if flags.Visible() {
		return true
	}
	return f.keep != nil && f.keep.Contains(f.origins.Lookup(t))
}

type flagged interface {
	javatype.Type
	*javatype.Variable | *javatype.Method
}

func retain[T flagged](entries []T, ok func(javatype.Type, javatype.Flag) bool, dropped *int) []T {
	if len(entries) == 0 {
		return entries
	}
	out := entries[:0]
	for _, e := range entries {
		if javatype.IsNil(e) {
			continue
		}
		if ok(e, flagsOf(e)) {
			out = append(out, e)
		} else {
			*dropped++
		}
	}
	return out
}

func flagsOf(t javatype.Type) javatype.Flag {
	switch v := t.(type) {
	case *javatype.Variable:
		return v.Flags
	case *javatype.Method:
		return v.Flags
	}
	return 0
}
