package resolve

import (
	"strings"

	"github.com/orizon-lang/lalrpop-ide/internal/grammar"
)

// Resolver computes types for the nodes of one grammar file. A resolver
// carries the cycle-tracking set and result cache of a single request and
// must not be reused across requests or shared between goroutines.
type Resolver struct {
	file  *grammar.File
	ctx   Context
	stack map[string]bool
	// rules whose bodies are being resolved, innermost last
	scopes []*grammar.Nonterminal
	cache  map[string]string
}

// NewResolver creates a resolver for one request.
func NewResolver(file *grammar.File, ctx Context) *Resolver {
	return &Resolver{
		file:  file,
		ctx:   ctx,
		stack: make(map[string]bool),
		cache: make(map[string]string),
	}
}

// ResolveType resolves node with a fresh resolver and the file's own
// ambient context.
func ResolveType(file *grammar.File, node grammar.Node, args MacroArguments) string {
	return NewResolver(file, ContextFor(file)).Resolve(node, args)
}

// Resolve returns the Rust type of node.
func (r *Resolver) Resolve(node grammar.Node, args MacroArguments) string {
	switch n := node.(type) {
	case *grammar.Terminal:
		return r.ctx.TokenType
	case *grammar.NonterminalRef:
		return r.resolveReference(n, args)
	case *grammar.Repeat:
		inner := r.Resolve(n.Expr, args)
		if n.Op == grammar.RepeatOptional {
			return "::std::option::Option<" + inner + ">"
		}
		return "::std::vec::Vec<" + inner + ">"
	case *grammar.Group:
		return r.ResolveSymbols(n.Symbols, args)
	case *grammar.Lookaround:
		return r.ctx.LocationType
	case *grammar.ErrorRecovery:
		return r.ctx.ErrorRecovery()
	case *grammar.Symbol:
		return r.Resolve(n.Expr, args)
	case *grammar.Alternative:
		if n.Action != nil {
			// decided by the host compiler through injected code
			return UnitType
		}
		if len(r.scopes) == 0 && r.file != nil {
			if nt := r.file.EnclosingRule(n); nt != nil {
				r.scopes = append(r.scopes, nt)
				defer r.popScope()
			}
		}
		return r.ResolveSymbols(n.Symbols, args)
	case *grammar.Nonterminal:
		return r.resolveRule(n, args)
	}
	return UnitType
}

// ResolveSymbols applies the selection rule: a single selected symbol
// yields its own type, any other count yields a tuple.
func (r *Resolver) ResolveSymbols(symbols []*grammar.Symbol, args MacroArguments) string {
	selected := grammar.Selected(symbols)
	if len(selected) == 1 {
		return r.Resolve(selected[0], args)
	}
	types := make([]string, len(selected))
	for i, s := range selected {
		types[i] = r.Resolve(s, args)
	}
	return "(" + strings.Join(types, ", ") + ")"
}

// SelectedType is a selected symbol with its resolved type.
type SelectedType struct {
	Name string // empty when the symbol is not named
	Type string
}

// SelectedTypes resolves the selected symbols of alternative in order.
func (r *Resolver) SelectedTypes(alternative *grammar.Alternative, args MacroArguments) []SelectedType {
	if r.file != nil {
		if nt := r.file.EnclosingRule(alternative); nt != nil {
			r.scopes = append(r.scopes, nt)
			defer r.popScope()
		}
	}
	selected := alternative.Selected()
	out := make([]SelectedType, len(selected))
	for i, s := range selected {
		out[i] = SelectedType{Name: s.Name, Type: r.Resolve(s, args)}
	}
	return out
}

func (r *Resolver) resolveReference(ref *grammar.NonterminalRef, args MacroArguments) string {
	if arg, ok := args.Lookup(ref.Name); ok {
		return arg.Type
	}
	target := r.file.Resolve(r.scope(), ref.Name)
	if target.Kind == grammar.TargetRule {
		nt := target.Rule
		if r.stack[nt.Name] {
			return UnitType
		}
		// caller-side arguments resolve in the caller's scope
		var bound []MacroArgument
		for i, param := range nt.Params {
			if i >= len(ref.Args) {
				break
			}
			bound = append(bound, MacroArgument{Type: r.Resolve(ref.Args[i], args), Name: param})
		}
		return r.resolveRule(nt, args.Bind(bound))
	}
	if arg, ok := args.LookupRoot(ref.Name); ok {
		return arg.Type
	}
	if target.Kind == grammar.TargetParam {
		return ref.Name
	}
	return UnitType
}

func (r *Resolver) resolveRule(nt *grammar.Nonterminal, args MacroArguments) string {
	key := nt.Name + "<" + args.key() + ">"
	if t, ok := r.cache[key]; ok {
		return t
	}
	if r.stack[nt.Name] {
		return UnitType
	}
	r.stack[nt.Name] = true
	r.scopes = append(r.scopes, nt)
	t := r.ruleType(nt, args)
	r.popScope()
	delete(r.stack, nt.Name)
	r.cache[key] = t
	return t
}

// ruleType is the declared type, else the type of the first alternative.
// An alternative with action code counts as unit, since the generator
// supplies a unit action for rules declared without a type.
func (r *Resolver) ruleType(nt *grammar.Nonterminal, args MacroArguments) string {
	if nt.Type != nil {
		return r.ResolveTypeRef(nt.Type, args)
	}
	if len(nt.Alternatives) == 0 {
		return UnitType
	}
	first := nt.Alternatives[0]
	if first.Action != nil {
		return UnitType
	}
	return r.ResolveSymbols(first.Symbols, args)
}

// ResolveTypeRef renders a declared type, substituting bound macro
// parameters.
func (r *Resolver) ResolveTypeRef(ref grammar.TypeRef, args MacroArguments) string {
	switch t := ref.(type) {
	case *grammar.TypePath:
		if len(t.Args) == 0 {
			if arg, ok := args.Lookup(t.Path); ok {
				return arg.Type
			}
			return t.Path
		}
		return t.Path + "<" + r.joinTypeRefs(t.Args, args) + ">"
	case *grammar.TypeTuple:
		if len(t.Elems) == 1 {
			return "(" + r.ResolveTypeRef(t.Elems[0], args) + ",)"
		}
		return "(" + r.joinTypeRefs(t.Elems, args) + ")"
	case *grammar.TypeSlice:
		return "[" + r.ResolveTypeRef(t.Elem, args) + "]"
	case *grammar.TypeReference:
		var sb strings.Builder
		sb.WriteString("&")
		if t.Lifetime != "" {
			sb.WriteString(t.Lifetime)
			sb.WriteString(" ")
		}
		if t.Mut {
			sb.WriteString("mut ")
		}
		sb.WriteString(r.ResolveTypeRef(t.Elem, args))
		return sb.String()
	case *grammar.TypeOfSymbol:
		return r.Resolve(t.Expr, args)
	case *grammar.TypeLifetime:
		return t.Name
	case *grammar.TypeRaw:
		return t.Text
	}
	return UnitType
}

func (r *Resolver) joinTypeRefs(refs []grammar.TypeRef, args MacroArguments) string {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		parts[i] = r.ResolveTypeRef(ref, args)
	}
	return strings.Join(parts, ", ")
}

func (r *Resolver) scope() *grammar.Nonterminal {
	if len(r.scopes) == 0 {
		return nil
	}
	return r.scopes[len(r.scopes)-1]
}

func (r *Resolver) popScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}
