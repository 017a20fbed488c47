// Package rusttype reads Rust type expressions and the handful of module
// items (use, struct, type alias) that appear in generated comparison
// modules. It renders types back in a canonical spelling and decides
// whether two canonical types unify.
package rusttype

import (
	"strings"
)

// Type is a parsed Rust type expression.
type Type interface {
	String() string
	rustType()
}

// Path is a possibly global path such as `::std::vec::Vec<T>`.
type Path struct {
	Global   bool
	Segments []Segment
}

// Segment is one path component with its generic arguments.
type Segment struct {
	Name string
	Args []Type
}

// Tuple is `(A, B)`; the empty tuple is the unit type.
type Tuple struct {
	Elems []Type
}

// Slice is `[T]`.
type Slice struct {
	Elem Type
}

// Array is `[T; N]`.
type Array struct {
	Elem Type
	Len  string
}

// Reference is `&'a mut T`.
type Reference struct {
	Lifetime string
	Mut      bool
	Elem     Type
}

// Pointer is `*const T` or `*mut T`.
type Pointer struct {
	Mut  bool
	Elem Type
}

// Lifetime is a lifetime generic argument.
type Lifetime struct {
	Name string
}

// Infer is `_`.
type Infer struct{}

// Never is `!`.
type Never struct{}

// Opaque keeps type text that is compared only textually, such as trait
// objects and function pointers.
type Opaque struct {
	Text string
}

func (*Path) rustType()      {}
func (*Tuple) rustType()     {}
func (*Slice) rustType()     {}
func (*Array) rustType()     {}
func (*Reference) rustType() {}
func (*Pointer) rustType()   {}
func (*Lifetime) rustType()  {}
func (*Infer) rustType()     {}
func (*Never) rustType()     {}
func (*Opaque) rustType()    {}

// Unit is the empty tuple.
var Unit Type = &Tuple{}

func (p *Path) String() string {
	var sb strings.Builder
	if p.Global {
		sb.WriteString("::")
	}
	for i, s := range p.Segments {
		if i > 0 {
			sb.WriteString("::")
		}
		sb.WriteString(s.Name)
		if len(s.Args) > 0 {
			sb.WriteString("<")
			sb.WriteString(join(s.Args))
			sb.WriteString(">")
		}
	}
	return sb.String()
}

// Name returns the path without generic arguments.
func (p *Path) Name() string {
	names := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		names[i] = s.Name
	}
	prefix := ""
	if p.Global {
		prefix = "::"
	}
	return prefix + strings.Join(names, "::")
}

// Last returns the final segment.
func (p *Path) Last() *Segment {
	if len(p.Segments) == 0 {
		return nil
	}
	return &p.Segments[len(p.Segments)-1]
}

func (t *Tuple) String() string {
	if len(t.Elems) == 1 {
		return "(" + t.Elems[0].String() + ",)"
	}
	return "(" + join(t.Elems) + ")"
}

func (s *Slice) String() string { return "[" + s.Elem.String() + "]" }

func (a *Array) String() string { return "[" + a.Elem.String() + "; " + a.Len + "]" }

func (r *Reference) String() string {
	var sb strings.Builder
	sb.WriteString("&")
	if r.Lifetime != "" {
		sb.WriteString(r.Lifetime)
		sb.WriteString(" ")
	}
	if r.Mut {
		sb.WriteString("mut ")
	}
	sb.WriteString(r.Elem.String())
	return sb.String()
}

func (p *Pointer) String() string {
	if p.Mut {
		return "*mut " + p.Elem.String()
	}
	return "*const " + p.Elem.String()
}

func (l *Lifetime) String() string { return l.Name }
func (*Infer) String() string      { return "_" }
func (*Never) String() string      { return "!" }
func (o *Opaque) String() string   { return o.Text }

func join(types []Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
