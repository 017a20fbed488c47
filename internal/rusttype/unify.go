package rusttype

import (
	"strings"
)

// Unify reports whether a and b can denote the same type. `_` unifies
// with anything, lifetimes are erased, opaque text compares verbatim
// modulo whitespace.
func Unify(a, b Type) bool {
	if _, ok := a.(*Infer); ok {
		return true
	}
	if _, ok := b.(*Infer); ok {
		return true
	}
	switch x := a.(type) {
	case *Path:
		y, ok := b.(*Path)
		if !ok || x.Name() != y.Name() {
			return false
		}
		for i := range x.Segments {
			if !unifyAll(typeArgs(x.Segments[i].Args), typeArgs(y.Segments[i].Args)) {
				return false
			}
		}
		return true
	case *Tuple:
		y, ok := b.(*Tuple)
		return ok && unifyAll(x.Elems, y.Elems)
	case *Slice:
		y, ok := b.(*Slice)
		return ok && Unify(x.Elem, y.Elem)
	case *Array:
		y, ok := b.(*Array)
		return ok && x.Len == y.Len && Unify(x.Elem, y.Elem)
	case *Reference:
		y, ok := b.(*Reference)
		return ok && x.Mut == y.Mut && Unify(x.Elem, y.Elem)
	case *Pointer:
		y, ok := b.(*Pointer)
		return ok && x.Mut == y.Mut && Unify(x.Elem, y.Elem)
	case *Never:
		_, ok := b.(*Never)
		return ok
	case *Lifetime:
		_, ok := b.(*Lifetime)
		return ok
	case *Opaque:
		y, ok := b.(*Opaque)
		return ok && squash(x.Text) == squash(y.Text)
	}
	return false
}

func unifyAll(xs, ys []Type) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !Unify(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

// typeArgs drops lifetime arguments.
func typeArgs(args []Type) []Type {
	out := make([]Type, 0, len(args))
	for _, a := range args {
		if _, ok := a.(*Lifetime); ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Map rebuilds t bottom-up, replacing every node for which fn returns a
// non-nil result.
func Map(t Type, fn func(Type) Type) Type {
	switch x := t.(type) {
	case *Path:
		out := &Path{Global: x.Global, Segments: make([]Segment, len(x.Segments))}
		for i, s := range x.Segments {
			seg := Segment{Name: s.Name}
			for _, a := range s.Args {
				seg.Args = append(seg.Args, Map(a, fn))
			}
			out.Segments[i] = seg
		}
		t = out
	case *Tuple:
		out := &Tuple{}
		for _, e := range x.Elems {
			out.Elems = append(out.Elems, Map(e, fn))
		}
		t = out
	case *Slice:
		t = &Slice{Elem: Map(x.Elem, fn)}
	case *Array:
		t = &Array{Elem: Map(x.Elem, fn), Len: x.Len}
	case *Reference:
		t = &Reference{Lifetime: x.Lifetime, Mut: x.Mut, Elem: Map(x.Elem, fn)}
	case *Pointer:
		t = &Pointer{Mut: x.Mut, Elem: Map(x.Elem, fn)}
	}
	if replaced := fn(t); replaced != nil {
		return replaced
	}
	return t
}

// Substitute replaces single-segment paths named in bindings.
func Substitute(t Type, bindings map[string]Type) Type {
	if len(bindings) == 0 {
		return t
	}
	return Map(t, func(n Type) Type {
		p, ok := n.(*Path)
		if !ok || p.Global || len(p.Segments) != 1 || len(p.Segments[0].Args) > 0 {
			return nil
		}
		return bindings[p.Segments[0].Name]
	})
}
