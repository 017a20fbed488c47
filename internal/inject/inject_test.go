package inject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/lalrpop-ide/internal/grammar"
	"github.com/orizon-lang/lalrpop-ide/internal/position"
)

func offsets(start, end int) position.Span {
	return position.Span{Start: position.Position{Offset: start}, End: position.Position{Offset: end}}
}

func symbol(name string, selected bool, expr grammar.SymbolExpr) *grammar.Symbol {
	return &grammar.Symbol{Name: name, Selected: selected, Expr: expr}
}

func ruleRef(name string) *grammar.NonterminalRef {
	return &grammar.NonterminalRef{Name: name}
}

// arithmetic builds
//
//	use std::str::FromStr;
//	grammar<'input>(input: &'input str) where 'input: 'input;
//	Num: i32 = r"[0-9]+" => i32::from_str(<>).unwrap();
//	Sum: i32 = <l:Sum> "+" <Num> => l + ...;
//	Pair = <Num> <Num> =>? Ok(..);
func arithmetic() (*grammar.File, map[string]*grammar.Action) {
	numAction := &grammar.Action{Code: "i32::from_str(<>).unwrap()", Span: offsets(40, 70), CodeSpan: offsets(43, 70)}
	sumAction := &grammar.Action{Code: "l + __intellij_lalrpop_noname_1", Span: offsets(100, 134), CodeSpan: offsets(103, 134)}
	pairAction := &grammar.Action{Code: "Ok((a, b))", Fallible: true, Span: offsets(150, 164), CodeSpan: offsets(154, 164)}

	file := &grammar.File{
		Uses: []*grammar.UseStmt{{Text: "use std::str::FromStr;"}},
		Grammar: &grammar.GrammarDecl{
			TypeParams:   []string{"'input"},
			Params:       []*grammar.GrammarParam{{Name: "input", Type: "&'input str"}},
			WhereClauses: []string{"'input: 'input"},
		},
		Nonterminals: []*grammar.Nonterminal{
			{
				Name: "Num",
				Type: &grammar.TypePath{Path: "i32"},
				Alternatives: []*grammar.Alternative{{
					Symbols: []*grammar.Symbol{symbol("", false, &grammar.Terminal{Text: `r"[0-9]+"`})},
					Action:  numAction,
				}},
			},
			{
				Name: "Sum",
				Type: &grammar.TypePath{Path: "i32"},
				Alternatives: []*grammar.Alternative{{
					Symbols: []*grammar.Symbol{
						symbol("l", true, ruleRef("Sum")),
						symbol("", false, &grammar.Terminal{Text: `"+"`}),
						symbol("", true, ruleRef("Num")),
					},
					Action: sumAction,
				}},
			},
			{
				Name: "Pair",
				Alternatives: []*grammar.Alternative{{
					Symbols: []*grammar.Symbol{symbol("", true, ruleRef("Num")), symbol("", true, ruleRef("Num"))},
					Action:  pairAction,
				}},
			},
		},
	}
	return file, map[string]*grammar.Action{"Num": numAction, "Sum": sumAction, "Pair": pairAction}
}

func TestSynthesize(t *testing.T) {
	file, actions := arithmetic()

	tests := []struct {
		rule     string
		prefix   string
		rangeLen int
	}{
		{
			rule: "Num",
			prefix: "mod __intellij_lalrpop {\nuse std::str::FromStr;\n" +
				"fn __intellij_lalrpop<'input>(input: &'input str, __intellij_lalrpop_noname_0: &str) -> i32 where 'input: 'input {\n",
			rangeLen: 27,
		},
		{
			rule: "Sum",
			prefix: "mod __intellij_lalrpop {\nuse std::str::FromStr;\n" +
				"fn __intellij_lalrpop<'input>(input: &'input str, l: i32, __intellij_lalrpop_noname_1: i32) -> i32 where 'input: 'input {\n",
			rangeLen: 31,
		},
		{
			rule: "Pair",
			prefix: "mod __intellij_lalrpop {\nuse std::str::FromStr;\n" +
				"fn __intellij_lalrpop<'input>(input: &'input str, __intellij_lalrpop_noname_0: i32, __intellij_lalrpop_noname_1: i32) -> " +
				"::std::result::Result<(), ::lalrpop_util::ParseError<usize, &str, ()>> where 'input: 'input {\n",
			rangeLen: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			snippet, err := Synthesize(file, actions[tt.rule])
			require.NoError(t, err)
			assert.Equal(t, tt.prefix, snippet.Prefix)
			assert.Equal(t, "\n}\n}", snippet.Suffix)
			assert.Equal(t, tt.rangeLen, snippet.Range.Len())
		})
	}
}

func TestSynthesizeRange(t *testing.T) {
	file, actions := arithmetic()
	snippet, err := Synthesize(file, actions["Sum"])
	require.NoError(t, err)
	assert.Equal(t, position.Range{Start: 3, End: 34}, snippet.Range)
	assert.Equal(t, snippet.Prefix+"x"+"\n}\n}", snippet.Text("x"))
}

func TestPlaceholdersAreUniqueAndStable(t *testing.T) {
	action := &grammar.Action{Code: "()"}
	file := &grammar.File{
		Nonterminals: []*grammar.Nonterminal{{
			Name: "Triple",
			Alternatives: []*grammar.Alternative{{
				Symbols: []*grammar.Symbol{
					symbol("", false, &grammar.Terminal{Text: `"a"`}),
					symbol("__intellij_lalrpop_noname_1", false, &grammar.Terminal{Text: `"b"`}),
					symbol("", false, &grammar.Terminal{Text: `"c"`}),
				},
				Action: action,
			}},
		}},
	}

	first, err := Synthesize(file, action)
	require.NoError(t, err)
	second, err := Synthesize(file, action)
	require.NoError(t, err)
	assert.Equal(t, first.Prefix, second.Prefix)
	assert.Contains(t, first.Prefix,
		"(__intellij_lalrpop_noname_0: &str, __intellij_lalrpop_noname_1: &str, __intellij_lalrpop_noname_2: &str)")
}

func TestPlaceholderAvoidsUserNames(t *testing.T) {
	action := &grammar.Action{Code: "()"}
	file := &grammar.File{
		Nonterminals: []*grammar.Nonterminal{{
			Name: "Two",
			Alternatives: []*grammar.Alternative{{
				Symbols: []*grammar.Symbol{
					symbol("", true, &grammar.Terminal{Text: `"a"`}),
					symbol("__intellij_lalrpop_noname_0", true, &grammar.Terminal{Text: `"b"`}),
				},
				Action: action,
			}},
		}},
	}

	snippet, err := Synthesize(file, action)
	require.NoError(t, err)
	assert.Contains(t, snippet.Prefix, "(__intellij_lalrpop_noname_0_: &str, __intellij_lalrpop_noname_0: &str)")
}

func TestSynthesizeUsesIdentityArguments(t *testing.T) {
	action := &grammar.Action{Code: "v"}
	file := &grammar.File{
		Nonterminals: []*grammar.Nonterminal{{
			Name:   "Comma",
			Params: []string{"T"},
			Type:   &grammar.TypePath{Path: "Vec", Args: []grammar.TypeRef{&grammar.TypePath{Path: "T"}}},
			Alternatives: []*grammar.Alternative{{
				Symbols: []*grammar.Symbol{symbol("v", true, &grammar.Repeat{Op: grammar.RepeatStar, Expr: ruleRef("T")})},
				Action:  action,
			}},
		}},
	}

	snippet, err := Synthesize(file, action)
	require.NoError(t, err)
	assert.Equal(t,
		"mod __intellij_lalrpop {\n\nfn __intellij_lalrpop(v: ::std::vec::Vec<T>) -> Vec<T> {\n",
		snippet.Prefix)
}

func TestSynthesizeDetached(t *testing.T) {
	file, _ := arithmetic()
	_, err := Synthesize(file, &grammar.Action{Code: "()"})
	assert.ErrorIs(t, err, ErrDetached)

	_, err = Synthesize(nil, nil)
	assert.ErrorIs(t, err, ErrDetached)
}
