package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orizon-lang/lalrpop-ide/internal/grammar"
)

func ref(name string, args ...grammar.SymbolExpr) *grammar.NonterminalRef {
	return &grammar.NonterminalRef{Name: name, Args: args}
}

func term(text string) *grammar.Terminal {
	return &grammar.Terminal{Text: text}
}

func sym(expr grammar.SymbolExpr) *grammar.Symbol {
	return &grammar.Symbol{Expr: expr}
}

func sel(name string, expr grammar.SymbolExpr) *grammar.Symbol {
	return &grammar.Symbol{Name: name, Selected: true, Expr: expr}
}

func alt(symbols ...*grammar.Symbol) *grammar.Alternative {
	return &grammar.Alternative{Symbols: symbols}
}

func path(p string, args ...grammar.TypeRef) *grammar.TypePath {
	return &grammar.TypePath{Path: p, Args: args}
}

func TestContext(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		ctx := ContextFor(&grammar.File{})
		assert.Equal(t, Context{LocationType: "usize", ErrorType: "()", TokenType: "&str"}, ctx)
		assert.Equal(t, "::lalrpop_util::ParseError<usize, &str, ()>", ctx.ParseError())
		assert.Equal(t, "::lalrpop_util::ErrorRecovery<usize, &str, ()>", ctx.ErrorRecovery())
	})

	t.Run("extern overrides, first declaration wins", func(t *testing.T) {
		file := &grammar.File{Externs: []*grammar.ExternToken{
			{
				AssociatedTypes: []*grammar.AssociatedType{
					{Name: "Location", Type: path("Loc")},
					{Name: "Error", Type: path("LexicalError")},
				},
				Enum: &grammar.EnumToken{Type: path("Tok", &grammar.TypeLifetime{Name: "'input"})},
			},
			{
				AssociatedTypes: []*grammar.AssociatedType{{Name: "Location", Type: path("Other")}},
			},
		}}
		ctx := ContextFor(file)
		assert.Equal(t, "Loc", ctx.LocationType)
		assert.Equal(t, "LexicalError", ctx.ErrorType)
		assert.Equal(t, "Tok<'input>", ctx.TokenType)
	})

	t.Run("caller defaults", func(t *testing.T) {
		ctx := ContextWithDefaults(&grammar.File{}, Context{LocationType: "u32", ErrorType: "E", TokenType: "Tok"})
		assert.Equal(t, "u32", ctx.LocationType)
		assert.Equal(t, "E", ctx.ErrorType)
	})
}

func TestResolveSymbols(t *testing.T) {
	num := &grammar.Nonterminal{Name: "Num", Type: path("i32"), Alternatives: []*grammar.Alternative{alt(sym(term(`r"[0-9]+"`)))}}
	name := &grammar.Nonterminal{Name: "Name", Type: path("String")}
	file := &grammar.File{Nonterminals: []*grammar.Nonterminal{num, name}}
	r := NewResolver(file, DefaultContext())

	tests := []struct {
		name     string
		node     grammar.Node
		expected string
	}{
		{name: "terminal", node: term(`"+"`), expected: "&str"},
		{name: "rule reference", node: ref("Num"), expected: "i32"},
		{name: "dangling reference", node: ref("Missing"), expected: "()"},
		{name: "optional", node: &grammar.Repeat{Op: grammar.RepeatOptional, Expr: ref("Num")}, expected: "::std::option::Option<i32>"},
		{name: "star", node: &grammar.Repeat{Op: grammar.RepeatStar, Expr: ref("Name")}, expected: "::std::vec::Vec<String>"},
		{name: "plus", node: &grammar.Repeat{Op: grammar.RepeatPlus, Expr: term(`","`)}, expected: "::std::vec::Vec<&str>"},
		{name: "lookahead", node: &grammar.Lookaround{Kind: grammar.Lookahead}, expected: "usize"},
		{name: "error recovery", node: &grammar.ErrorRecovery{}, expected: "::lalrpop_util::ErrorRecovery<usize, &str, ()>"},
		{name: "group", node: &grammar.Group{Symbols: []*grammar.Symbol{sym(ref("Num")), sym(term(`","`))}}, expected: "(i32, &str)"},
		{name: "group with selection", node: &grammar.Group{Symbols: []*grammar.Symbol{sel("", ref("Num")), sym(term(`","`))}}, expected: "i32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.Resolve(tt.node, MacroArguments{}))
		})
	}
}

func TestSelectionSemantics(t *testing.T) {
	a := &grammar.Nonterminal{Name: "A", Type: path("u8")}
	b := &grammar.Nonterminal{Name: "B", Type: path("u16")}
	c := &grammar.Nonterminal{Name: "C", Type: path("u32")}
	file := &grammar.File{Nonterminals: []*grammar.Nonterminal{a, b, c}}

	explicit := alt(sym(ref("A")), sel("", ref("B")), sym(ref("C")))
	implicit := alt(sym(ref("A")), sym(ref("B")), sym(ref("C")))
	empty := alt()

	assert.Equal(t, "u16", ResolveType(file, explicit, MacroArguments{}))
	assert.Equal(t, "(u8, u16, u32)", ResolveType(file, implicit, MacroArguments{}))
	assert.Equal(t, "()", ResolveType(file, empty, MacroArguments{}))

	two := alt(sel("x", ref("A")), sym(ref("B")), sel("y", ref("C")))
	assert.Equal(t, "(u8, u32)", ResolveType(file, two, MacroArguments{}))
}

func TestGenericSubstitution(t *testing.T) {
	// Outer<T> = Inner<T>;  Inner<U>: Vec<U> = ...;
	outer := &grammar.Nonterminal{
		Name:         "Outer",
		Params:       []string{"T"},
		Alternatives: []*grammar.Alternative{alt(sym(ref("Inner", ref("T"))))},
	}
	inner := &grammar.Nonterminal{
		Name:         "Inner",
		Params:       []string{"U"},
		Type:         path("Vec", path("U")),
		Alternatives: []*grammar.Alternative{alt(sym(&grammar.Repeat{Op: grammar.RepeatStar, Expr: ref("U")}))},
	}
	file := &grammar.File{Nonterminals: []*grammar.Nonterminal{outer, inner}}

	bound := []MacroArgument{{Type: "i32", Name: "T"}}
	args := MacroArguments{Root: bound, Arguments: bound}
	assert.Equal(t, "Vec<i32>", ResolveType(file, outer, args))

	// identity bindings keep the parameter name
	assert.Equal(t, "Vec<T>", ResolveType(file, outer, Identity(outer.Params)))

	// inferred rather than declared type
	inner.Type = nil
	assert.Equal(t, "::std::vec::Vec<i32>", ResolveType(file, outer, args))
}

func TestMacroArgumentsResolveInCallerScope(t *testing.T) {
	// Comma<E>: Vec<E> = ...;  List<T> = "[" <Comma<T>> "]";  Top = List<Num>;
	comma := &grammar.Nonterminal{Name: "Comma", Params: []string{"E"}, Type: path("Vec", path("E"))}
	list := &grammar.Nonterminal{
		Name:         "List",
		Params:       []string{"T"},
		Alternatives: []*grammar.Alternative{alt(sym(term(`"["`)), sel("", ref("Comma", ref("T"))), sym(term(`"]"`)))},
	}
	num := &grammar.Nonterminal{Name: "Num", Type: path("i64")}
	top := &grammar.Nonterminal{Name: "Top", Alternatives: []*grammar.Alternative{alt(sym(ref("List", ref("Num"))))}}
	file := &grammar.File{Nonterminals: []*grammar.Nonterminal{comma, list, num, top}}

	r := NewResolver(file, DefaultContext())
	assert.Equal(t, "Vec<i64>", r.Resolve(top, Identity(nil)))
	// the same macro with other arguments is not served from the cache
	assert.Equal(t, "Vec<&str>", r.Resolve(ref("Comma", term(`"x"`)), MacroArguments{}))
}

func TestRecursiveRulesTerminate(t *testing.T) {
	// Expr = Expr "+" Term | Term;  A = B; B = A;
	expr := &grammar.Nonterminal{Name: "Expr"}
	expr.Alternatives = []*grammar.Alternative{
		alt(sym(ref("Expr")), sym(term(`"+"`)), sym(ref("Term"))),
		alt(sym(ref("Term"))),
	}
	termRule := &grammar.Nonterminal{Name: "Term", Type: path("i32")}
	a := &grammar.Nonterminal{Name: "A", Alternatives: []*grammar.Alternative{alt(sym(ref("B")))}}
	b := &grammar.Nonterminal{Name: "B", Alternatives: []*grammar.Alternative{alt(sym(ref("A")))}}
	file := &grammar.File{Nonterminals: []*grammar.Nonterminal{expr, termRule, a, b}}

	assert.Equal(t, "((), &str, i32)", ResolveType(file, expr, Identity(nil)))
	assert.Equal(t, "()", ResolveType(file, a, Identity(nil)))
	assert.Equal(t, "()", ResolveType(file, ref("B"), MacroArguments{}))
}

func TestRuleTypeWithActionCode(t *testing.T) {
	withAction := &grammar.Nonterminal{
		Name: "Stmt",
		Alternatives: []*grammar.Alternative{
			{Symbols: []*grammar.Symbol{sym(term(`"x"`))}, Action: &grammar.Action{Code: `String::new()`}},
			alt(sym(ref("Num"))),
		},
	}
	num := &grammar.Nonterminal{Name: "Num", Type: path("i32")}
	file := &grammar.File{Nonterminals: []*grammar.Nonterminal{withAction, num}}

	assert.Equal(t, "()", ResolveType(file, withAction, Identity(nil)))
	assert.Equal(t, "()", ResolveType(file, withAction.Alternatives[0], Identity(nil)))
	assert.Equal(t, "i32", ResolveType(file, withAction.Alternatives[1], Identity(nil)))
	assert.Equal(t, "()", ResolveType(file, &grammar.Nonterminal{Name: "Empty"}, Identity(nil)))
}

func TestResolveTypeRef(t *testing.T) {
	num := &grammar.Nonterminal{Name: "Num", Type: path("i32")}
	file := &grammar.File{Nonterminals: []*grammar.Nonterminal{num}}
	r := NewResolver(file, DefaultContext())
	args := MacroArguments{Arguments: []MacroArgument{{Type: "u8", Name: "T"}}}

	tests := []struct {
		name     string
		ref      grammar.TypeRef
		expected string
	}{
		{name: "bound parameter", ref: path("T"), expected: "u8"},
		{name: "qualified path is not substituted", ref: path("a::T"), expected: "a::T"},
		{name: "generic path", ref: path("Box", path("T")), expected: "Box<u8>"},
		{name: "tuple", ref: &grammar.TypeTuple{Elems: []grammar.TypeRef{path("T"), path("String")}}, expected: "(u8, String)"},
		{name: "one tuple", ref: &grammar.TypeTuple{Elems: []grammar.TypeRef{path("T")}}, expected: "(u8,)"},
		{name: "unit", ref: &grammar.TypeTuple{}, expected: "()"},
		{name: "slice", ref: &grammar.TypeSlice{Elem: path("T")}, expected: "[u8]"},
		{name: "reference", ref: &grammar.TypeReference{Lifetime: "'input", Mut: true, Elem: path("str")}, expected: "&'input mut str"},
		{name: "type of symbol", ref: &grammar.TypeOfSymbol{Expr: ref("Num")}, expected: "i32"},
		{name: "raw", ref: &grammar.TypeRaw{Text: "dyn Fn(u8)"}, expected: "dyn Fn(u8)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.ResolveTypeRef(tt.ref, args))
		})
	}
}

func TestUnboundParameterKeepsItsName(t *testing.T) {
	comma := &grammar.Nonterminal{
		Name:   "Comma",
		Params: []string{"T"},
		Alternatives: []*grammar.Alternative{
			alt(sel("v", &grammar.Repeat{Op: grammar.RepeatStar, Expr: ref("T")}), sym(term(`","`))),
		},
	}
	file := &grammar.File{Nonterminals: []*grammar.Nonterminal{comma}}

	assert.Equal(t, "::std::vec::Vec<T>", ResolveType(file, comma, MacroArguments{}))
	assert.Equal(t, "::std::vec::Vec<T>", ResolveType(file, comma.Alternatives[0], MacroArguments{}))
}
