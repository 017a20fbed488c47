// Package grammar defines the syntax tree of a LALRPOP grammar file as it
// is handed over by the grammar parser. The tree is read-only for the rest
// of the tooling: every resolution pass works on a tree that was re-read
// after the last edit.
package grammar

import (
	"github.com/orizon-lang/lalrpop-ide/internal/position"
)

// Node is implemented by every syntax tree node.
type Node interface {
	NodeSpan() position.Span
}

// File is the root of a grammar file.
type File struct {
	Path         string
	Source       *position.SourceFile
	Uses         []*UseStmt
	Grammar      *GrammarDecl
	Externs      []*ExternToken
	Nonterminals []*Nonterminal
}

// UseStmt is a `use ...;` item copied verbatim into generated code.
type UseStmt struct {
	Text string
	Span position.Span
}

func (u *UseStmt) NodeSpan() position.Span { return u.Span }

// GrammarDecl is the `grammar<...>(...) where ...;` declaration. All parts
// are kept as raw text because they are spliced into host code unchanged.
type GrammarDecl struct {
	TypeParams   []string
	Params       []*GrammarParam
	WhereClauses []string
	Span         position.Span
}

func (g *GrammarDecl) NodeSpan() position.Span { return g.Span }

// GrammarParam is a value parameter of the grammar declaration.
type GrammarParam struct {
	Name string
	Type string
}

// ExternToken is an `extern { ... }` block.
type ExternToken struct {
	AssociatedTypes []*AssociatedType
	Enum            *EnumToken
	Span            position.Span
}

func (e *ExternToken) NodeSpan() position.Span { return e.Span }

// AssociatedType is a `type Location = ...;` style entry of an extern block.
type AssociatedType struct {
	Name string
	Type TypeRef
}

// EnumToken is the `enum Tok { ... }` entry of an extern block.
type EnumToken struct {
	Type TypeRef
}

// Nonterminal is a rule definition.
type Nonterminal struct {
	Name         string
	Params       []string
	Type         TypeRef
	Alternatives []*Alternative
	Span         position.Span
}

func (n *Nonterminal) NodeSpan() position.Span { return n.Span }

// HasParam reports whether name is one of the macro parameters of n.
func (n *Nonterminal) HasParam(name string) bool {
	for _, p := range n.Params {
		if p == name {
			return true
		}
	}
	return false
}

// Alternative is one right-hand side of a rule.
type Alternative struct {
	Symbols []*Symbol
	Action  *Action
	Span    position.Span
}

func (a *Alternative) NodeSpan() position.Span { return a.Span }

// Selected returns the symbols contributing to the alternative value.
func (a *Alternative) Selected() []*Symbol {
	return Selected(a.Symbols)
}

// Selected returns the explicitly selected symbols, or all symbols when
// none carries a selection marker.
func Selected(symbols []*Symbol) []*Symbol {
	var out []*Symbol
	for _, s := range symbols {
		if s.Selected {
			out = append(out, s)
		}
	}
	if out == nil {
		return symbols
	}
	return out
}

// Action is the action code of an alternative.
type Action struct {
	Code     string
	Fallible bool // `=>?`
	Span     position.Span
	CodeSpan position.Span
}

func (a *Action) NodeSpan() position.Span { return a.Span }

// CodeRange returns the range of the code relative to the action node.
func (a *Action) CodeRange() position.Range {
	return a.CodeSpan.Range().Shift(a.Span.Start.Offset)
}

// Symbol is an element of an alternative. `<name:E>` sets both Name and
// Selected, `<E>` only Selected.
type Symbol struct {
	Name     string
	Selected bool
	Expr     SymbolExpr
	Span     position.Span
}

func (s *Symbol) NodeSpan() position.Span { return s.Span }

// SymbolExpr is the closed set of symbol kinds.
type SymbolExpr interface {
	Node
	symbolExpr()
}

// Terminal is a quoted, regex or named terminal.
type Terminal struct {
	Text string
	Span position.Span
}

// NonterminalRef references a rule or a macro parameter, optionally with
// macro arguments.
type NonterminalRef struct {
	Name string
	Args []SymbolExpr
	Span position.Span
}

// RepeatOp is the operator of a repetition.
type RepeatOp byte

const (
	RepeatOptional RepeatOp = '?'
	RepeatStar     RepeatOp = '*'
	RepeatPlus     RepeatOp = '+'
)

// Repeat is `E?`, `E*` or `E+`.
type Repeat struct {
	Op   RepeatOp
	Expr SymbolExpr
	Span position.Span
}

// Group is a parenthesized sequence of symbols.
type Group struct {
	Symbols []*Symbol
	Span    position.Span
}

// LookaroundKind distinguishes `@L` from `@R`.
type LookaroundKind int

const (
	Lookahead LookaroundKind = iota
	Lookbehind
)

// Lookaround is `@L` or `@R`.
type Lookaround struct {
	Kind LookaroundKind
	Span position.Span
}

// ErrorRecovery is the `!` symbol.
type ErrorRecovery struct {
	Span position.Span
}

func (t *Terminal) NodeSpan() position.Span       { return t.Span }
func (r *NonterminalRef) NodeSpan() position.Span { return r.Span }
func (r *Repeat) NodeSpan() position.Span         { return r.Span }
func (g *Group) NodeSpan() position.Span          { return g.Span }
func (l *Lookaround) NodeSpan() position.Span     { return l.Span }
func (e *ErrorRecovery) NodeSpan() position.Span  { return e.Span }

func (*Terminal) symbolExpr()       {}
func (*NonterminalRef) symbolExpr() {}
func (*Repeat) symbolExpr()         {}
func (*Group) symbolExpr()          {}
func (*Lookaround) symbolExpr()     {}
func (*ErrorRecovery) symbolExpr()  {}
