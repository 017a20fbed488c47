package grammar

import (
	"sort"
	"strings"
)

// TargetKind tells what a nonterminal reference resolved to.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetRule
	TargetParam
)

// Target is the result of resolving a name at a reference site.
type Target struct {
	Kind  TargetKind
	Rule  *Nonterminal // the referenced rule, or the rule declaring the parameter
	Param string
}

// FindNonterminal returns the first rule named name.
func (f *File) FindNonterminal(name string) *Nonterminal {
	if f == nil {
		return nil
	}
	for _, nt := range f.Nonterminals {
		if nt.Name == name {
			return nt
		}
	}
	return nil
}

// Resolve resolves name as referenced from inside scope. Rules take
// precedence over the macro parameters of scope.
func (f *File) Resolve(scope *Nonterminal, name string) Target {
	if nt := f.FindNonterminal(name); nt != nil {
		return Target{Kind: TargetRule, Rule: nt}
	}
	if scope != nil && scope.HasParam(name) {
		return Target{Kind: TargetParam, Rule: scope, Param: name}
	}
	return Target{}
}

// Variants lists the names that can be referenced from inside scope,
// sorted, without duplicates.
func (f *File) Variants(scope *Nonterminal) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, nt := range f.Nonterminals {
		add(nt.Name)
	}
	if scope != nil {
		for _, p := range scope.Params {
			add(p)
		}
	}
	sort.Strings(out)
	return out
}

// ImportCode returns every use statement of the file in source order,
// one per line.
func (f *File) ImportCode() string {
	texts := make([]string, 0, len(f.Uses))
	for _, u := range f.Uses {
		texts = append(texts, u.Text)
	}
	return strings.Join(texts, "\n")
}

// Enclosing returns the rule and alternative that own action.
func (f *File) Enclosing(action *Action) (*Nonterminal, *Alternative, bool) {
	for _, nt := range f.Nonterminals {
		for _, alt := range nt.Alternatives {
			if alt.Action == action {
				return nt, alt, true
			}
		}
	}
	return nil, nil, false
}

// EnclosingRule returns the rule owning alternative.
func (f *File) EnclosingRule(alternative *Alternative) *Nonterminal {
	for _, nt := range f.Nonterminals {
		for _, alt := range nt.Alternatives {
			if alt == alternative {
				return nt
			}
		}
	}
	return nil
}

// Actions returns every action of the file in source order.
func (f *File) Actions() []*Action {
	var out []*Action
	for _, nt := range f.Nonterminals {
		for _, alt := range nt.Alternatives {
			if alt.Action != nil {
				out = append(out, alt.Action)
			}
		}
	}
	return out
}
