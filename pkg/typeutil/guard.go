// Package typeutil provides cycle-safe traversals over type graphs:
// cloning, weighing, and visibility filtering.
package typeutil

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/typedensity/typedensity/pkg/javatype"
)

// Guard visits each distinct node at most once. It is the cycle breaker
// for one-shot rewrites that do not need structural comparison.
type Guard struct {
	seen *set.Set[javatype.Type]
}

// NewGuard returns a Guard that has seen nothing.
func NewGuard() *Guard {
	return &Guard{seen: set.New[javatype.Type](0)}
}

// Visit calls fn(t) the first time t is seen and returns its result. Later
// visits of the same node return t unchanged. Nil is returned as nil.
func (g *Guard) Visit(t javatype.Type, fn func(javatype.Type) javatype.Type) javatype.Type {
	if javatype.IsNil(t) {
		return t
	}
	if g.seen.Insert(t) {
		return fn(t)
	}
	return t
}

// Seen reports whether t has been visited.
func (g *Guard) Seen(t javatype.Type) bool {
	return g.seen.Contains(t)
}

// Len returns the number of distinct nodes visited.
func (g *Guard) Len() int {
	return g.seen.Size()
}
