package javatype

// Children returns the direct references of t in schema order. Absent edges
// are omitted. Opaque kinds have no children.
//
// Class: type parameters, supertype, owning class, annotations, interfaces,
// members, methods. Method: declaring type, parameter types, return type,
// thrown exceptions, annotations. Variable: owner, type, annotations.
func Children(t Type) []Type {
	var out []Type
	add := func(c Type) {
		if !IsNil(c) {
			out = append(out, c)
		}
	}
	switch v := t.(type) {
	case *Class:
		for _, c := range v.TypeParameters {
			add(c)
		}
		add(v.Supertype)
		add(v.OwningClass)
		for _, c := range v.Annotations {
			add(c)
		}
		for _, c := range v.Interfaces {
			add(c)
		}
		for _, c := range v.Members {
			add(c)
		}
		for _, c := range v.Methods {
			add(c)
		}
	case *Parameterized:
		add(v.Type)
		for _, c := range v.TypeParameters {
			add(c)
		}
	case *Array:
		add(v.ElemType)
	case *GenericTypeVariable:
		for _, c := range v.Bounds {
			add(c)
		}
	case *Method:
		add(v.DeclaringType)
		for _, c := range v.ParameterTypes {
			add(c)
		}
		add(v.ReturnType)
		for _, c := range v.ThrownExceptions {
			add(c)
		}
		for _, c := range v.Annotations {
			add(c)
		}
	case *Variable:
		add(v.Owner)
		add(v.Type)
		for _, c := range v.Annotations {
			add(c)
		}
	case *MultiCatch:
		for _, c := range v.ThrowableTypes {
			add(c)
		}
	}
	return out
}

// ShallowCopy returns a new node of the same kind whose fields reference the
// same children as t. Slices are copied so the copy can be rewritten without
// touching t. Opaque kinds are returned as-is.
func ShallowCopy(t Type) Type {
	switch v := t.(type) {
	case *Class:
		c := *v
		c.TypeParameters = cloneSlice(v.TypeParameters)
		c.Annotations = cloneSlice(v.Annotations)
		c.Interfaces = cloneSlice(v.Interfaces)
		c.Members = cloneSlice(v.Members)
		c.Methods = cloneSlice(v.Methods)
		return &c
	case *Parameterized:
		p := *v
		p.TypeParameters = cloneSlice(v.TypeParameters)
		return &p
	case *Array:
		a := *v
		return &a
	case *GenericTypeVariable:
		g := *v
		g.Bounds = cloneSlice(v.Bounds)
		return &g
	case *Method:
		m := *v
		m.ParameterNames = cloneSlice(v.ParameterNames)
		m.ParameterTypes = cloneSlice(v.ParameterTypes)
		m.ThrownExceptions = cloneSlice(v.ThrownExceptions)
		m.Annotations = cloneSlice(v.Annotations)
		return &m
	case *Variable:
		vv := *v
		vv.Annotations = cloneSlice(v.Annotations)
		return &vv
	case *MultiCatch:
		mc := *v
		mc.ThrowableTypes = cloneSlice(v.ThrowableTypes)
		return &mc
	}
	return t
}

// MapChildren replaces, in place, every child reference of t with fn(child)
// and reports whether any reference changed identity. It must only be
// called on nodes that have not been published yet (fresh copies or
// clones). A replacement whose kind does not fit the field is ignored and
// the original reference kept.
func MapChildren(t Type, fn func(Type) Type) bool {
	changed := false
	mapType := func(c Type) Type {
		if IsNil(c) {
			return c
		}
		r := fn(c)
		if IsNil(r) || r == c {
			return c
		}
		changed = true
		return r
	}
	mapFQ := func(c FullyQualified) FullyQualified {
		if IsNil(c) {
			return c
		}
		if r, ok := mapType(c).(FullyQualified); ok {
			return r
		}
		return c
	}
	mapTypes := func(cs []Type) {
		for i, c := range cs {
			cs[i] = mapType(c)
		}
	}
	mapFQs := func(cs []FullyQualified) {
		for i, c := range cs {
			cs[i] = mapFQ(c)
		}
	}

	switch v := t.(type) {
	case *Class:
		mapTypes(v.TypeParameters)
		v.Supertype = mapFQ(v.Supertype)
		v.OwningClass = mapFQ(v.OwningClass)
		mapFQs(v.Annotations)
		mapFQs(v.Interfaces)
		for i, m := range v.Members {
			if r, ok := mapType(m).(*Variable); ok {
				v.Members[i] = r
			}
		}
		for i, m := range v.Methods {
			if r, ok := mapType(m).(*Method); ok {
				v.Methods[i] = r
			}
		}
	case *Parameterized:
		v.Type = mapFQ(v.Type)
		mapTypes(v.TypeParameters)
	case *Array:
		v.ElemType = mapType(v.ElemType)
	case *GenericTypeVariable:
		mapTypes(v.Bounds)
	case *Method:
		v.DeclaringType = mapFQ(v.DeclaringType)
		mapTypes(v.ParameterTypes)
		v.ReturnType = mapType(v.ReturnType)
		mapFQs(v.ThrownExceptions)
		mapFQs(v.Annotations)
	case *Variable:
		v.Owner = mapType(v.Owner)
		v.Type = mapType(v.Type)
		mapFQs(v.Annotations)
	case *MultiCatch:
		mapTypes(v.ThrowableTypes)
	}
	return changed
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
