package grammar

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lperrors "github.com/orizon-lang/lalrpop-ide/internal/errors"
	"github.com/orizon-lang/lalrpop-ide/internal/position"
)

const numDump = `
path: src/calc.lalrpop
source: "use std::str::FromStr;\ngrammar;\nNum: i32 = r\"[0-9]+\" => i32::from_str(<>).unwrap();\n"
uses:
  - text: "use std::str::FromStr;"
    span: [0, 22]
grammar:
  span: [23, 31]
nonterminals:
  - name: Num
    type: i32
    span: [32, 83]
    alternatives:
      - span: [43, 82]
        symbols:
          - terminal: 'r"[0-9]+"'
            span: [43, 52]
        action:
          span: [53, 82]
          code_span: [56, 82]
`

func TestDecodeWithSource(t *testing.T) {
	file, err := Decode([]byte(numDump))
	require.NoError(t, err)

	assert.Equal(t, "src/calc.lalrpop", file.Path)
	assert.Equal(t, "use std::str::FromStr;", file.ImportCode())
	require.NotNil(t, file.Grammar)
	assert.Equal(t, 2, file.Grammar.Span.Start.Line)

	num := file.FindNonterminal("Num")
	require.NotNil(t, num)
	assert.Equal(t, &TypePath{Path: "i32"}, num.Type)
	assert.Equal(t, "calc.lalrpop:3:1-52", num.Span.String())

	alt := num.Alternatives[0]
	require.Len(t, alt.Symbols, 1)
	assert.Equal(t, &Terminal{Text: `r"[0-9]+"`, Span: alt.Symbols[0].Span}, alt.Symbols[0].Expr)
	assert.Equal(t, 12, alt.Symbols[0].Span.Start.Column)

	action := alt.Action
	require.NotNil(t, action)
	assert.Equal(t, "i32::from_str(<>).unwrap()", action.Code)
	assert.Equal(t, position.Range{Start: 3, End: 29}, action.CodeRange())
	assert.Equal(t, 22, action.Span.Start.Column)
}

const fullDump = `
path: grammar.lalrpop
uses:
  - text: "use crate::ast::{Expr, Opcode};"
grammar:
  type_params: ["'input"]
  params:
    - {name: input, type: "&'input str"}
  where: ["'input: 'input"]
extern:
  - types:
      - {name: Location, type: usize}
      - {name: Error, type: {path: LexError, args: [{lifetime: "'input"}]}}
    enum: "Tok<'input>"
nonterminals:
  - name: Comma
    params: [T]
    type: {path: Vec, args: [T]}
    alternatives:
      - symbols:
          - name: v
            repeat: "*"
            of:
              group:
                - selected: true
                  ref: T
                - terminal: '","'
          - name: e
            repeat: "?"
            of: {ref: T}
        action: {code: "v", span: [100, 110], code_span: [103, 104]}
  - name: Spanned
    type:
      tuple: [usize, {symbol: {ref: Num}}, usize]
    alternatives:
      - symbols:
          - {lookahead: true, selected: true}
          - {ref: Num, selected: true}
          - {lookbehind: true, selected: true}
  - name: Recover
    type: {ref: {slice: u8}, lifetime: "'a", mut: true}
    alternatives:
      - symbols:
          - {error: true}
  - name: Call
    type: {raw: "dyn Fn(u32) -> u32"}
    alternatives:
      - symbols:
          - {ref: Comma, args: [{ref: Num}]}
        action: {code: "()", fallible: true}
  - name: Unit
    type: {unit: true}
  - name: Num
    type: "::std::primitive::i32"
`

func TestDecodeAllShapes(t *testing.T) {
	file, err := Decode([]byte(fullDump))
	require.NoError(t, err)

	assert.Equal(t, "use crate::ast::{Expr, Opcode};", file.ImportCode())
	assert.Equal(t, []string{"'input"}, file.Grammar.TypeParams)
	assert.Equal(t, []*GrammarParam{{Name: "input", Type: "&'input str"}}, file.Grammar.Params)
	assert.Equal(t, []string{"'input: 'input"}, file.Grammar.WhereClauses)

	require.Len(t, file.Externs, 1)
	ext := file.Externs[0]
	assert.Equal(t, &TypePath{Path: "usize"}, ext.AssociatedTypes[0].Type)
	assert.Equal(t, &TypePath{Path: "LexError", Args: []TypeRef{&TypeLifetime{Name: "'input"}}}, ext.AssociatedTypes[1].Type)
	assert.Equal(t, &TypePath{Path: "Tok", Args: []TypeRef{&TypeLifetime{Name: "'input"}}}, ext.Enum.Type)

	comma := file.FindNonterminal("Comma")
	assert.Equal(t, []string{"T"}, comma.Params)
	assert.Equal(t, &TypePath{Path: "Vec", Args: []TypeRef{&TypePath{Path: "T"}}}, comma.Type)
	symbols := comma.Alternatives[0].Symbols
	require.Len(t, symbols, 2)
	assert.Equal(t, "v", symbols[0].Name)
	assert.True(t, symbols[0].Selected)
	repeat, ok := symbols[0].Expr.(*Repeat)
	require.True(t, ok)
	assert.Equal(t, RepeatStar, repeat.Op)
	group, ok := repeat.Expr.(*Group)
	require.True(t, ok)
	require.Len(t, group.Symbols, 2)
	assert.True(t, group.Symbols[0].Selected)
	assert.False(t, group.Symbols[1].Selected)
	assert.Equal(t, RepeatOptional, symbols[1].Expr.(*Repeat).Op)
	assert.Equal(t, position.Range{Start: 3, End: 4}, comma.Alternatives[0].Action.CodeRange())

	spanned := file.FindNonterminal("Spanned")
	tuple, ok := spanned.Type.(*TypeTuple)
	require.True(t, ok)
	require.Len(t, tuple.Elems, 3)
	assert.Equal(t, &TypeOfSymbol{Expr: &NonterminalRef{Name: "Num"}}, tuple.Elems[1])
	assert.Equal(t, Lookahead, spanned.Alternatives[0].Symbols[0].Expr.(*Lookaround).Kind)
	assert.Equal(t, Lookbehind, spanned.Alternatives[0].Symbols[2].Expr.(*Lookaround).Kind)

	rec := file.FindNonterminal("Recover")
	assert.Equal(t, &TypeReference{Lifetime: "'a", Mut: true, Elem: &TypeSlice{Elem: &TypePath{Path: "u8"}}}, rec.Type)
	assert.IsType(t, &ErrorRecovery{}, rec.Alternatives[0].Symbols[0].Expr)

	call := file.FindNonterminal("Call")
	assert.Equal(t, &TypeRaw{Text: "dyn Fn(u32) -> u32"}, call.Type)
	ref := call.Alternatives[0].Symbols[0].Expr.(*NonterminalRef)
	assert.Equal(t, []SymbolExpr{&NonterminalRef{Name: "Num"}}, ref.Args)
	assert.True(t, call.Alternatives[0].Action.Fallible)

	assert.Equal(t, &TypeTuple{}, file.FindNonterminal("Unit").Type)
	assert.Equal(t, &TypePath{Path: "::std::primitive::i32"}, file.FindNonterminal("Num").Type)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		dump string
	}{
		{"not yaml", "nonterminals: [\n"},
		{"missing name", "nonterminals:\n  - type: i32\n"},
		{"symbol without kind", "nonterminals:\n  - name: A\n    alternatives:\n      - symbols:\n          - {name: x}\n"},
		{"bad repetition", "nonterminals:\n  - name: A\n    alternatives:\n      - symbols:\n          - {repeat: '!', of: {ref: B}}\n"},
		{"repetition without operand", "nonterminals:\n  - name: A\n    alternatives:\n      - symbols:\n          - {repeat: '*'}\n"},
		{"type without kind", "nonterminals:\n  - name: A\n    type: {mut: true}\n"},
		{"associated type without type", "extern:\n  - types:\n      - {name: Location}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.dump))
			assert.Error(t, err)
		})
	}
}

func TestParseTypeRef(t *testing.T) {
	tests := []struct {
		text     string
		expected TypeRef
	}{
		{"i32", &TypePath{Path: "i32"}},
		{"()", &TypeTuple{}},
		{"(A, B)", &TypeTuple{Elems: []TypeRef{&TypePath{Path: "A"}, &TypePath{Path: "B"}}}},
		{"&'input str", &TypeReference{Lifetime: "'input", Elem: &TypePath{Path: "str"}}},
		{"[u8]", &TypeSlice{Elem: &TypePath{Path: "u8"}}},
		{"Box<dyn Error>", &TypePath{Path: "Box", Args: []TypeRef{&TypeRaw{Text: "dyn Error"}}}},
		{"Vec<", &TypeRaw{Text: "Vec<"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseTypeRef(tt.text))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nonterminals:\n  - name: A\n    type: u8\n"), 0o644))

	file, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, file.Path)
	assert.NotNil(t, file.FindNonterminal("A"))

	_, err = Load(context.Background(), filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, lperrors.CategoryInput, lperrors.CategoryOf(err))
}
