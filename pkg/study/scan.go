package study

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/typedensity/typedensity/pkg/javatype"
)

// ScanDeclarations collects, across all units, the declared methods and
// fields that are neither public nor protected. Such members are referenced
// from their own source, so the visibility filter keeps them.
func ScanDeclarations(units []*javatype.Unit) *set.Set[javatype.Type] {
	declared := set.New[javatype.Type](0)
	for _, u := range units {
		for _, d := range u.Declarations {
			switch v := d.(type) {
			case *javatype.Method:
				if v != nil && !v.Flags.Visible() {
					declared.Insert(v)
				}
			case *javatype.Variable:
				if v != nil && !v.Flags.Visible() {
					declared.Insert(v)
				}
			}
		}
	}
	return declared
}
