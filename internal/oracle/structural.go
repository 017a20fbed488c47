package oracle

import (
	"context"
	"strings"

	"github.com/orizon-lang/lalrpop-ide/internal/hostcode"
	"github.com/orizon-lang/lalrpop-ide/internal/rusttype"
)

// maxExpansion bounds alias expansion so alias cycles terminate.
const maxExpansion = 32

// prelude maps names every Rust module sees to their defining paths.
var prelude = map[string]string{
	"Box":     "std::boxed::Box",
	"Option":  "std::option::Option",
	"Result":  "std::result::Result",
	"String":  "std::string::String",
	"Vec":     "std::vec::Vec",
	"ToOwned": "std::borrow::ToOwned",
}

var primitives = map[string]bool{
	"bool": true, "char": true, "str": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
	"f32": true, "f64": true,
}

// reexports maps public paths of the standard library to the defining
// path when the two differ.
var reexports = map[string]string{
	"std::collections::HashMap":             "std::collections::hash::map::HashMap",
	"std::collections::hash_map::HashMap":   "std::collections::hash::map::HashMap",
	"std::collections::HashSet":             "std::collections::hash::set::HashSet",
	"std::collections::hash_set::HashSet":   "std::collections::hash::set::HashSet",
	"std::collections::BTreeMap":            "std::collections::btree::map::BTreeMap",
	"std::collections::btree_map::BTreeMap": "std::collections::btree::map::BTreeMap",
	"std::collections::BTreeSet":            "std::collections::btree::set::BTreeSet",
	"std::collections::btree_set::BTreeSet": "std::collections::btree::set::BTreeSet",
	"std::collections::VecDeque":            "std::collections::vec_deque::VecDeque",
}

// StructuralHost resolves synthetic modules without a Rust front end. It
// follows imports, renames, local aliases and unit structs, the prelude,
// and a table of re-exports, then unifies the results structurally. It
// does not solve traits or infer beyond `_`.
type StructuralHost struct {
	index map[string]string
}

// NewStructuralHost creates a host; index maps re-exported project paths
// (written from the crate root, e.g. `crate::ast::Expr`) to defining paths.
func NewStructuralHost(index map[string]string) *StructuralHost {
	merged := make(map[string]string, len(reexports)+len(index))
	for k, v := range reexports {
		merged[k] = v
	}
	for k, v := range index {
		merged[k] = v
	}
	return &StructuralHost{index: merged}
}

// Load parses source. Items the parser does not understand are dropped,
// which the adapter notices through the alias count.
func (h *StructuralHost) Load(ctx context.Context, scope Scope, source string) (Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := rusttype.ParseModule(source)
	if err != nil {
		return nil, err
	}
	m := &structuralModule{
		host:    h,
		scope:   scope,
		parsed:  parsed,
		uses:    make(map[string]string),
		structs: make(map[string]bool),
		aliases: make(map[string]rusttype.AliasItem),
	}
	for _, u := range parsed.Uses {
		if !u.Glob {
			m.uses[u.Name] = u.Path
		}
	}
	for _, s := range parsed.Structs {
		m.structs[s] = true
	}
	for _, a := range parsed.Aliases {
		m.aliases[a.Name] = a
	}
	return m, nil
}

type structuralModule struct {
	host    *StructuralHost
	scope   Scope
	parsed  *rusttype.Module
	uses    map[string]string
	structs map[string]bool
	aliases map[string]rusttype.AliasItem
}

func (m *structuralModule) Aliases() []string {
	names := make([]string, len(m.parsed.Aliases))
	for i, a := range m.parsed.Aliases {
		names[i] = a.Name
	}
	return names
}

func (m *structuralModule) Resolve(alias string) rusttype.Type {
	item, ok := m.aliases[alias]
	if !ok {
		return nil
	}
	return m.canonical(item.Target, 0)
}

func (m *structuralModule) CanCombine(a, b rusttype.Type) bool {
	return rusttype.Unify(a, b)
}

// canonical rewrites every path of t to its defining path.
func (m *structuralModule) canonical(t rusttype.Type, depth int) rusttype.Type {
	return rusttype.Map(t, func(n rusttype.Type) rusttype.Type {
		p, ok := n.(*rusttype.Path)
		if !ok {
			return nil
		}
		return m.canonicalPath(p, depth)
	})
}

func (m *structuralModule) canonicalPath(p *rusttype.Path, depth int) rusttype.Type {
	if len(p.Segments) == 0 {
		return nil
	}
	first := p.Segments[0].Name
	if !p.Global && len(p.Segments) == 1 {
		if m.structs[first] {
			return pathOf(append(m.modulePath(), hostcode.ModuleName, first))
		}
		if item, ok := m.aliases[first]; ok && depth < maxExpansion {
			return m.expand(item, p.Segments[0].Args, depth)
		}
	}

	var names []string
	switch {
	case p.Global:
		names = segmentNames(p)
	case m.uses[first] != "":
		names = append(m.absolute(splitPath(m.uses[first])), segmentNames(p)[1:]...)
	case first == "crate" || first == "self" || first == "super":
		names = append(m.absolute([]string{first}), segmentNames(p)[1:]...)
	case len(p.Segments) == 1 && primitives[first]:
		return nil
	case prelude[first] != "":
		names = append(splitPath(prelude[first]), segmentNames(p)[1:]...)
	default:
		names = segmentNames(p)
	}
	names = m.normalize(names)

	out := pathOf(names)
	// generic arguments stay on the trailing segments they were written on
	offset := len(names) - len(p.Segments)
	for i, s := range p.Segments {
		if j := i + offset; j >= 0 && len(s.Args) > 0 {
			out.Segments[j].Args = s.Args
		}
	}
	return out
}

// expand replaces a local alias by its target with the alias parameters
// bound to args.
func (m *structuralModule) expand(item rusttype.AliasItem, args []rusttype.Type, depth int) rusttype.Type {
	bindings := make(map[string]rusttype.Type, len(item.Params))
	for i, param := range item.Params {
		if i < len(args) {
			bindings[param] = args[i]
		} else {
			bindings[param] = &rusttype.Infer{}
		}
	}
	return m.canonical(rusttype.Substitute(item.Target, bindings), depth+1)
}

// absolute turns a use path into a path from the crate root. Relative
// forms are taken from the module that includes the grammar.
func (m *structuralModule) absolute(names []string) []string {
	if len(names) == 0 {
		return names
	}
	rest := names[1:]
	switch names[0] {
	case "crate":
		return append([]string{"crate"}, rest...)
	case "self":
		return append(m.modulePath(), rest...)
	case "super":
		base := m.modulePath()
		if len(base) > 1 {
			base = base[:len(base)-1]
		}
		for len(rest) > 0 && rest[0] == "super" && len(base) > 1 {
			base = base[:len(base)-1]
			rest = rest[1:]
		}
		return append(base, rest...)
	}
	return names
}

func (m *structuralModule) modulePath() []string {
	return append([]string{"crate"}, m.scope.ModulePath...)
}

// normalize folds core/alloc into std, the crate's own name into `crate`,
// and applies the re-export index, longest prefix first.
func (m *structuralModule) normalize(names []string) []string {
	if len(names) == 0 {
		return names
	}
	switch names[0] {
	case "core", "alloc":
		names = append([]string{"std"}, names[1:]...)
	case m.scope.CrateName:
		if m.scope.CrateName != "" {
			names = append([]string{"crate"}, names[1:]...)
		}
	}
	for n := len(names); n > 0; n-- {
		key := strings.Join(names[:n], "::")
		if target, ok := m.host.index[key]; ok && target != key {
			return m.normalizeTarget(target, names[n:])
		}
	}
	return names
}

func (m *structuralModule) normalizeTarget(target string, rest []string) []string {
	names := splitPath(target)
	if len(names) > 0 && names[0] == m.scope.CrateName && m.scope.CrateName != "" {
		names[0] = "crate"
	}
	return append(names, rest...)
}

func pathOf(names []string) *rusttype.Path {
	out := &rusttype.Path{Segments: make([]rusttype.Segment, len(names))}
	for i, name := range names {
		out.Segments[i] = rusttype.Segment{Name: name}
	}
	return out
}

func segmentNames(p *rusttype.Path) []string {
	names := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		names[i] = s.Name
	}
	return names
}

func splitPath(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "::"), "::")
}
