package javatype

import "strings"

// Signature returns the printable form of t, built from field values.
// Cycles are cut by identity: a type variable re-entered while printing
// its own bounds prints by name, and any other re-entered node prints as
// "...". Acyclic equal nodes therefore share a signature, but an unrolled
// recursion such as T1 extends Comparable<T2 extends Comparable<T1>>
// prints longer than the self-loop T extends Comparable<T> it is
// coinductively equal to. Such nodes land in separate variant sets and
// are never merged with each other.
func Signature(t Type) string {
	p := printer{onStack: make(map[Type]bool)}
	p.print(t)
	return p.b.String()
}

func (c *Class) String() string               { return Signature(c) }
func (p *Parameterized) String() string       { return Signature(p) }
func (a *Array) String() string               { return Signature(a) }
func (g *GenericTypeVariable) String() string { return Signature(g) }
func (m *Method) String() string              { return Signature(m) }
func (v *Variable) String() string            { return Signature(v) }
func (m *MultiCatch) String() string          { return Signature(m) }
func (p *Primitive) String() string           { return p.Keyword }
func (*Unknown) String() string               { return "{undefined}" }

type printer struct {
	b strings.Builder
	// nodes currently being printed. A recursive bound such as
	// T extends Comparable<T> prints the inner T by name only; any other
	// re-entered node prints as "..." so malformed graphs still terminate.
	onStack map[Type]bool
}

func (p *printer) print(t Type) {
	if IsNil(t) {
		p.b.WriteString("null")
		return
	}
	if _, ok := t.(*GenericTypeVariable); !ok && !IsOpaque(t) {
		if p.onStack[t] {
			p.b.WriteString("...")
			return
		}
		p.onStack[t] = true
		defer delete(p.onStack, t)
	}
	switch v := t.(type) {
	case *Class:
		p.b.WriteString(v.FullyQualifiedName)
	case *Parameterized:
		p.print(v.Type)
		p.b.WriteByte('<')
		p.list(v.TypeParameters, ", ")
		p.b.WriteByte('>')
	case *Array:
		p.print(v.ElemType)
		p.b.WriteString("[]")
	case *GenericTypeVariable:
		p.generic(v)
	case *Method:
		p.print(v.DeclaringType)
		p.b.WriteString("{name=")
		p.b.WriteString(v.Name)
		p.b.WriteString(",return=")
		p.print(v.ReturnType)
		p.b.WriteString(",parameters=[")
		p.list(v.ParameterTypes, ",")
		p.b.WriteString("]}")
	case *Variable:
		p.owner(v.Owner)
		p.b.WriteString("{name=")
		p.b.WriteString(v.Name)
		p.b.WriteString(",type=")
		p.print(v.Type)
		p.b.WriteByte('}')
	case *MultiCatch:
		p.list(v.ThrowableTypes, " | ")
	default:
		p.b.WriteString(t.String())
	}
}

// owner prints a variable's owner. Owners that are methods print only
// their declaring type and name, which keeps parameter signatures from
// expanding the whole method.
func (p *printer) owner(t Type) {
	if m, ok := t.(*Method); ok && m != nil {
		p.print(m.DeclaringType)
		p.b.WriteByte('#')
		p.b.WriteString(m.Name)
		return
	}
	p.print(t)
}

func (p *printer) generic(g *GenericTypeVariable) {
	name := g.Name
	if name == "" {
		name = "?"
	}
	p.b.WriteString(name)
	if p.onStack[g] || len(g.Bounds) == 0 {
		return
	}
	p.onStack[g] = true
	defer delete(p.onStack, g)
	switch g.Variance {
	case Contravariant:
		p.b.WriteString(" super ")
	default:
		p.b.WriteString(" extends ")
	}
	p.list(g.Bounds, " & ")
}

func (p *printer) list(ts []Type, sep string) {
	for i, t := range ts {
		if i > 0 {
			p.b.WriteString(sep)
		}
		p.print(t)
	}
}
