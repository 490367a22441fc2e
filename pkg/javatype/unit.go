package javatype

// Unit is the type information attached to one parsed source file.
type Unit struct {
	SourcePath string
	SourceSet  *SourceSet
	// Types are the type attributions of syntax positions, in tree order.
	// The same node may appear many times.
	Types []Type
	// Declarations are the method and field types at their declaration
	// sites in this file.
	Declarations []Type
}

// SourceSet describes the compilation classpath the unit was parsed against.
type SourceSet struct {
	Name      string
	Classpath []FullyQualified
}

// Roots returns every type the unit references directly: classpath entries,
// then attributions, then declarations.
func (u *Unit) Roots() []Type {
	var roots []Type
	if u.SourceSet != nil {
		for _, c := range u.SourceSet.Classpath {
			roots = append(roots, c)
		}
	}
	roots = append(roots, u.Types...)
	roots = append(roots, u.Declarations...)
	return roots
}

// WithRoots returns a copy of u whose roots are replaced, in Roots order,
// by the given slice. It is the inverse of Roots for graph rewrites.
func (u *Unit) WithRoots(roots []Type) *Unit {
	out := &Unit{SourcePath: u.SourcePath}
	i := 0
	if u.SourceSet != nil {
		ss := &SourceSet{Name: u.SourceSet.Name}
		for range u.SourceSet.Classpath {
			fq, _ := roots[i].(FullyQualified)
			ss.Classpath = append(ss.Classpath, fq)
			i++
		}
		out.SourceSet = ss
	}
	out.Types = append([]Type(nil), roots[i:i+len(u.Types)]...)
	i += len(u.Types)
	out.Declarations = append([]Type(nil), roots[i:i+len(u.Declarations)]...)
	return out
}
