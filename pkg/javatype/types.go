// Package javatype defines the type-attribution graph produced by the source
// parser. These types are the shared vocabulary across all modules.
//
// A graph is made of pointer nodes. Identity is pointer identity: two nodes
// are the same node only if they are the same pointer, regardless of their
// field values. Graphs may be cyclic (a class refers to its methods, whose
// declaring type refers back to the class) and nodes may be shared between
// many syntax positions.
package javatype

// Type is one node of a type graph. The set of implementations is closed.
type Type interface {
	String() string
	isType()
}

// FullyQualified is implemented by the nodes that carry a fully-qualified
// class name: classes and parameterized types.
type FullyQualified interface {
	Type
	FQN() string
}

// Class is a declared or referenced class, interface, enum, annotation or record.
type Class struct {
	Flags              Flag
	FullyQualifiedName string
	Kind               ClassKind
	TypeParameters     []Type
	Supertype          FullyQualified
	OwningClass        FullyQualified
	Annotations        []FullyQualified
	Interfaces         []FullyQualified
	Members            []*Variable
	Methods            []*Method
}

// Parameterized is a generic class applied to type arguments.
type Parameterized struct {
	Type           FullyQualified
	TypeParameters []Type
}

// Array is an array of ElemType.
type Array struct {
	ElemType Type
}

// GenericTypeVariable is a type variable or wildcard with its bounds.
type GenericTypeVariable struct {
	Name     string
	Variance Variance
	Bounds   []Type
}

// Method is a method signature attributed to its declaring type.
type Method struct {
	Name             string
	Flags            Flag
	DeclaringType    FullyQualified
	ParameterNames   []string
	ParameterTypes   []Type
	ReturnType       Type
	ThrownExceptions []FullyQualified
	Annotations      []FullyQualified
}

// Variable is a field, local variable or parameter.
type Variable struct {
	Name        string
	Flags       Flag
	Owner       Type
	Type        Type
	Annotations []FullyQualified
}

// MultiCatch is the union type of a multi-catch clause.
type MultiCatch struct {
	ThrowableTypes []Type
}

// Primitive is a primitive keyword type. Primitives are flyweights: there is
// exactly one instance per keyword, so they are never cached, cloned or
// weighed.
type Primitive struct {
	Keyword string
}

// Unknown is an attribution the parser could not resolve.
type Unknown struct{}

// Primitive flyweights.
var (
	Boolean = &Primitive{Keyword: "boolean"}
	Byte    = &Primitive{Keyword: "byte"}
	Char    = &Primitive{Keyword: "char"}
	Double  = &Primitive{Keyword: "double"}
	Float   = &Primitive{Keyword: "float"}
	Int     = &Primitive{Keyword: "int"}
	Long    = &Primitive{Keyword: "long"}
	Short   = &Primitive{Keyword: "short"}
	Void    = &Primitive{Keyword: "void"}
	String  = &Primitive{Keyword: "String"}
	Null    = &Primitive{Keyword: "null"}
	None    = &Primitive{Keyword: ""}

	UnknownType = &Unknown{}
)

var primitives = map[string]*Primitive{}

func init() {
	for _, p := range []*Primitive{Boolean, Byte, Char, Double, Float, Int, Long, Short, Void, String, Null, None} {
		primitives[p.Keyword] = p
	}
}

// PrimitiveOf returns the flyweight for a keyword, or nil if the keyword is
// not a primitive.
func PrimitiveOf(keyword string) *Primitive {
	return primitives[keyword]
}

func (*Class) isType()               {}
func (*Parameterized) isType()       {}
func (*Array) isType()               {}
func (*GenericTypeVariable) isType() {}
func (*Method) isType()              {}
func (*Variable) isType()            {}
func (*MultiCatch) isType()          {}
func (*Primitive) isType()           {}
func (*Unknown) isType()             {}

// FQN returns the fully-qualified class name.
func (c *Class) FQN() string { return c.FullyQualifiedName }

// FQN returns the fully-qualified name of the generic base class.
func (p *Parameterized) FQN() string {
	if p.Type == nil {
		return ""
	}
	return p.Type.FQN()
}

// HasFlags reports whether all of the given flags are set on the method.
func (m *Method) HasFlags(flags ...Flag) bool { return m.Flags.Has(flags...) }

// HasFlags reports whether all of the given flags are set on the variable.
func (v *Variable) HasFlags(flags ...Flag) bool { return v.Flags.Has(flags...) }

// HasFlags reports whether all of the given flags are set on the class.
func (c *Class) HasFlags(flags ...Flag) bool { return c.Flags.Has(flags...) }

// IsOpaque reports whether t is a leaf kind outside the graph schema:
// primitives, unknowns, and nil. Opaque nodes are never rebuilt.
func IsOpaque(t Type) bool {
	switch t.(type) {
	case *Class, *Parameterized, *Array, *GenericTypeVariable, *Method, *Variable, *MultiCatch:
		return false
	}
	return true
}

// IsNil reports whether t is nil or a typed nil pointer.
func IsNil(t Type) bool {
	switch v := t.(type) {
	case nil:
		return true
	case *Class:
		return v == nil
	case *Parameterized:
		return v == nil
	case *Array:
		return v == nil
	case *GenericTypeVariable:
		return v == nil
	case *Method:
		return v == nil
	case *Variable:
		return v == nil
	case *MultiCatch:
		return v == nil
	case *Primitive:
		return v == nil
	case *Unknown:
		return v == nil
	}
	return false
}
