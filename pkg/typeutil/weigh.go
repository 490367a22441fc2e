package typeutil

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/typedensity/typedensity/pkg/javatype"
)

// Weigh returns the number of distinct nodes reachable from roots, counted
// by identity. A node reached along several paths, or through a cycle,
// counts once. Primitives, unknowns and absent edges do not count.
func Weigh(roots ...javatype.Type) int {
	seen := set.New[javatype.Type](len(roots))
	stack := make([]javatype.Type, 0, len(roots))
	for _, r := range roots {
		if !javatype.IsNil(r) && !javatype.IsOpaque(r) {
			stack = append(stack, r)
		}
	}

	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !seen.Insert(t) {
			continue
		}
		for _, c := range javatype.Children(t) {
			if !javatype.IsOpaque(c) && !seen.Contains(c) {
				stack = append(stack, c)
			}
		}
	}
	return seen.Size()
}

// WeighUnit weighs every root of u.
func WeighUnit(u *javatype.Unit) int {
	return Weigh(u.Roots()...)
}
