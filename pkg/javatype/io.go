package javatype

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Node kinds on the wire.
const (
	wireClass         = "class"
	wireParameterized = "parameterized"
	wireArray         = "array"
	wireGeneric       = "generic"
	wireMethod        = "method"
	wireVariable      = "variable"
	wireMultiCatch    = "multicatch"
	wireUnknown       = "unknown"
)

// unitJSON is the on-disk form of a Unit. Nodes live in a flat table and
// refer to each other by id, so shared and cyclic references survive a
// round trip. A reference that is not a node id may name a primitive
// keyword. An empty reference is an absent edge.
type unitJSON struct {
	SourcePath   string               `json:"source_path"`
	SourceSet    *sourceSetJSON       `json:"source_set,omitempty"`
	Nodes        map[string]*nodeJSON `json:"nodes"`
	Types        []string             `json:"types"`
	Declarations []string             `json:"declarations,omitempty"`
}

type sourceSetJSON struct {
	Name      string   `json:"name"`
	Classpath []string `json:"classpath,omitempty"`
}

type nodeJSON struct {
	Kind           string   `json:"kind"`
	Name           string   `json:"name,omitempty"` // FQN for classes
	Flags          []string `json:"flags,omitempty"`
	ClassKind      string   `json:"class_kind,omitempty"`
	Variance       string   `json:"variance,omitempty"`
	Type           string   `json:"type,omitempty"` // base, element or declared type
	TypeParameters []string `json:"type_parameters,omitempty"`
	Supertype      string   `json:"supertype,omitempty"`
	OwningClass    string   `json:"owning_class,omitempty"`
	Annotations    []string `json:"annotations,omitempty"`
	Interfaces     []string `json:"interfaces,omitempty"`
	Members        []string `json:"members,omitempty"`
	Methods        []string `json:"methods,omitempty"`
	Bounds         []string `json:"bounds,omitempty"`
	DeclaringType  string   `json:"declaring_type,omitempty"`
	ParameterNames []string `json:"parameter_names,omitempty"`
	ParameterTypes []string `json:"parameter_types,omitempty"`
	ReturnType     string   `json:"return_type,omitempty"`
	Thrown         []string `json:"thrown,omitempty"`
	Owner          string   `json:"owner,omitempty"`
	Throwables     []string `json:"throwables,omitempty"`
}

// SaveUnit writes a unit to disk as JSON.
func SaveUnit(path string, u *Unit) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for unit: %w", err)
	}

	data, err := EncodeUnit(u)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing unit: %w", err)
	}

	return nil
}

// LoadUnit reads a unit from disk.
func LoadUnit(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading unit: %w", err)
	}
	return DecodeUnit(data)
}

// EncodeUnit marshals a unit to indented JSON. Node ids are assigned in
// first-visit order from the unit's roots.
func EncodeUnit(u *Unit) ([]byte, error) {
	e := &encoder{ids: make(map[Type]string), nodes: make(map[string]*nodeJSON)}
	out := unitJSON{SourcePath: u.SourcePath, Nodes: e.nodes}
	if u.SourceSet != nil {
		out.SourceSet = &sourceSetJSON{Name: u.SourceSet.Name, Classpath: refsOf(e, u.SourceSet.Classpath)}
	}
	out.Types = refsOf(e, u.Types)
	out.Declarations = refsOf(e, u.Declarations)
	if out.Types == nil {
		out.Types = []string{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling unit: %w", err)
	}
	return data, nil
}

// DecodeUnit unmarshals a unit in two passes: allocate every node, then
// link references.
func DecodeUnit(data []byte) (*Unit, error) {
	var in unitJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("unmarshaling unit: %w", err)
	}

	d := &decoder{wire: in.Nodes, nodes: make(map[string]Type, len(in.Nodes))}
	for id, n := range in.Nodes {
		t, err := allocate(n)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		d.nodes[id] = t
	}
	for id, n := range in.Nodes {
		if err := d.link(d.nodes[id], n); err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
	}

	u := &Unit{SourcePath: in.SourcePath}
	var err error
	if in.SourceSet != nil {
		u.SourceSet = &SourceSet{Name: in.SourceSet.Name}
		if u.SourceSet.Classpath, err = d.fqs(in.SourceSet.Classpath); err != nil {
			return nil, fmt.Errorf("classpath: %w", err)
		}
	}
	if u.Types, err = d.refs(in.Types); err != nil {
		return nil, fmt.Errorf("types: %w", err)
	}
	if u.Declarations, err = d.refs(in.Declarations); err != nil {
		return nil, fmt.Errorf("declarations: %w", err)
	}
	return u, nil
}

type encoder struct {
	ids   map[Type]string
	nodes map[string]*nodeJSON
}

func refsOf[T Type](e *encoder, ts []T) []string {
	if ts == nil {
		return nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = e.ref(t)
	}
	return out
}

func (e *encoder) ref(t Type) string {
	if IsNil(t) {
		return ""
	}
	switch v := t.(type) {
	case *Primitive:
		return v.Keyword
	}
	if id, ok := e.ids[t]; ok {
		return id
	}
	id := "n" + strconv.Itoa(len(e.ids)+1)
	e.ids[t] = id
	n := &nodeJSON{}
	e.nodes[id] = n

	switch v := t.(type) {
	case *Class:
		n.Kind = wireClass
		n.Name = v.FullyQualifiedName
		n.Flags = v.Flags.Names()
		if v.Kind != KindClass {
			n.ClassKind = v.Kind.String()
		}
		n.TypeParameters = refsOf(e, v.TypeParameters)
		n.Supertype = e.ref(v.Supertype)
		n.OwningClass = e.ref(v.OwningClass)
		n.Annotations = refsOf(e, v.Annotations)
		n.Interfaces = refsOf(e, v.Interfaces)
		n.Members = refsOf(e, v.Members)
		n.Methods = refsOf(e, v.Methods)
	case *Parameterized:
		n.Kind = wireParameterized
		n.Type = e.ref(v.Type)
		n.TypeParameters = refsOf(e, v.TypeParameters)
	case *Array:
		n.Kind = wireArray
		n.Type = e.ref(v.ElemType)
	case *GenericTypeVariable:
		n.Kind = wireGeneric
		n.Name = v.Name
		if v.Variance != Invariant {
			n.Variance = v.Variance.String()
		}
		n.Bounds = refsOf(e, v.Bounds)
	case *Method:
		n.Kind = wireMethod
		n.Name = v.Name
		n.Flags = v.Flags.Names()
		n.DeclaringType = e.ref(v.DeclaringType)
		n.ParameterNames = v.ParameterNames
		n.ParameterTypes = refsOf(e, v.ParameterTypes)
		n.ReturnType = e.ref(v.ReturnType)
		n.Thrown = refsOf(e, v.ThrownExceptions)
		n.Annotations = refsOf(e, v.Annotations)
	case *Variable:
		n.Kind = wireVariable
		n.Name = v.Name
		n.Flags = v.Flags.Names()
		n.Owner = e.ref(v.Owner)
		n.Type = e.ref(v.Type)
		n.Annotations = refsOf(e, v.Annotations)
	case *MultiCatch:
		n.Kind = wireMultiCatch
		n.Throwables = refsOf(e, v.ThrowableTypes)
	default:
		n.Kind = wireUnknown
	}
	return id
}

func allocate(n *nodeJSON) (Type, error) {
	if n == nil {
		return nil, fmt.Errorf("null node")
	}
	switch n.Kind {
	case wireClass:
		flags, err := ParseFlags(n.Flags)
		if err != nil {
			return nil, err
		}
		kind, err := ParseClassKind(n.ClassKind)
		if err != nil {
			return nil, err
		}
		return &Class{Flags: flags, FullyQualifiedName: n.Name, Kind: kind}, nil
	case wireParameterized:
		return &Parameterized{}, nil
	case wireArray:
		return &Array{}, nil
	case wireGeneric:
		variance, err := ParseVariance(n.Variance)
		if err != nil {
			return nil, err
		}
		return &GenericTypeVariable{Name: n.Name, Variance: variance}, nil
	case wireMethod:
		flags, err := ParseFlags(n.Flags)
		if err != nil {
			return nil, err
		}
		return &Method{Name: n.Name, Flags: flags, ParameterNames: n.ParameterNames}, nil
	case wireVariable:
		flags, err := ParseFlags(n.Flags)
		if err != nil {
			return nil, err
		}
		return &Variable{Name: n.Name, Flags: flags}, nil
	case wireMultiCatch:
		return &MultiCatch{}, nil
	case wireUnknown:
		return UnknownType, nil
	}
	return nil, fmt.Errorf("unknown node kind %q", n.Kind)
}

type decoder struct {
	wire  map[string]*nodeJSON
	nodes map[string]Type
}

func (d *decoder) ref(r string) (Type, error) {
	if r == "" {
		return nil, nil
	}
	if t, ok := d.nodes[r]; ok {
		return t, nil
	}
	if p := PrimitiveOf(r); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("dangling reference %q", r)
}

func (d *decoder) fq(r string) (FullyQualified, error) {
	t, err := d.ref(r)
	if err != nil || t == nil {
		return nil, err
	}
	fq, ok := t.(FullyQualified)
	if !ok {
		return nil, fmt.Errorf("reference %q is not a class or parameterized type", r)
	}
	return fq, nil
}

func (d *decoder) refs(rs []string) ([]Type, error) {
	if rs == nil {
		return nil, nil
	}
	out := make([]Type, 0, len(rs))
	for _, r := range rs {
		t, err := d.ref(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (d *decoder) fqs(rs []string) ([]FullyQualified, error) {
	if rs == nil {
		return nil, nil
	}
	out := make([]FullyQualified, 0, len(rs))
	for _, r := range rs {
		fq, err := d.fq(r)
		if err != nil {
			return nil, err
		}
		out = append(out, fq)
	}
	return out, nil
}

func (d *decoder) link(t Type, n *nodeJSON) error {
	var err error
	switch v := t.(type) {
	case *Class:
		if v.TypeParameters, err = d.refs(n.TypeParameters); err != nil {
			return err
		}
		if v.Supertype, err = d.fq(n.Supertype); err != nil {
			return err
		}
		if v.OwningClass, err = d.fq(n.OwningClass); err != nil {
			return err
		}
		if v.Annotations, err = d.fqs(n.Annotations); err != nil {
			return err
		}
		if v.Interfaces, err = d.fqs(n.Interfaces); err != nil {
			return err
		}
		for _, r := range n.Members {
			m, err := d.ref(r)
			if err != nil {
				return err
			}
			mv, ok := m.(*Variable)
			if !ok {
				return fmt.Errorf("member %q is not a variable", r)
			}
			v.Members = append(v.Members, mv)
		}
		for _, r := range n.Methods {
			m, err := d.ref(r)
			if err != nil {
				return err
			}
			mm, ok := m.(*Method)
			if !ok {
				return fmt.Errorf("method %q is not a method", r)
			}
			v.Methods = append(v.Methods, mm)
		}
	case *Parameterized:
		if v.Type, err = d.fq(n.Type); err != nil {
			return err
		}
		v.TypeParameters, err = d.refs(n.TypeParameters)
	case *Array:
		v.ElemType, err = d.ref(n.Type)
	case *GenericTypeVariable:
		v.Bounds, err = d.refs(n.Bounds)
	case *Method:
		if v.DeclaringType, err = d.fq(n.DeclaringType); err != nil {
			return err
		}
		if v.ParameterTypes, err = d.refs(n.ParameterTypes); err != nil {
			return err
		}
		if v.ReturnType, err = d.ref(n.ReturnType); err != nil {
			return err
		}
		if v.ThrownExceptions, err = d.fqs(n.Thrown); err != nil {
			return err
		}
		v.Annotations, err = d.fqs(n.Annotations)
	case *Variable:
		if v.Owner, err = d.ref(n.Owner); err != nil {
			return err
		}
		if v.Type, err = d.ref(n.Type); err != nil {
			return err
		}
		v.Annotations, err = d.fqs(n.Annotations)
	case *MultiCatch:
		v.ThrowableTypes, err = d.refs(n.Throwables)
	}
	return err
}
