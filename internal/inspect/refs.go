package inspect

import (
	"github.com/orizon-lang/lalrpop-ide/internal/grammar"
)

// Reference is one nonterminal reference of a grammar together with what
// it resolves to from inside its rule.
type Reference struct {
	Ref    *grammar.NonterminalRef
	Rule   *grammar.Nonterminal
	Target grammar.Target
}

// References lists the nonterminal references of file in source order,
// including the ones nested in repetitions, groups and macro arguments.
func References(file *grammar.File) []Reference {
	var out []Reference
	var visit func(nt *grammar.Nonterminal, expr grammar.SymbolExpr)
	visit = func(nt *grammar.Nonterminal, expr grammar.SymbolExpr) {
		switch e := expr.(type) {
		case *grammar.NonterminalRef:
			out = append(out, Reference{Ref: e, Rule: nt, Target: file.Resolve(nt, e.Name)})
			for _, arg := range e.Args {
				visit(nt, arg)
			}
		case *grammar.Repeat:
			visit(nt, e.Expr)
		case *grammar.Group:
			for _, s := range e.Symbols {
				visit(nt, s.Expr)
			}
		}
	}
	for _, nt := range file.Nonterminals {
		for _, alt := range nt.Alternatives {
			for _, s := range alt.Symbols {
				visit(nt, s.Expr)
			}
		}
	}
	return out
}

// Unresolved returns the references of file that name neither a rule nor
// a parameter of their rule.
func Unresolved(file *grammar.File) []Reference {
	var out []Reference
	for _, ref := range References(file) {
		if ref.Target.Kind == grammar.TargetNone {
			out = append(out, ref)
		}
	}
	return out
}
