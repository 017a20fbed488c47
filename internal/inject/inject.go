// Package inject builds the Rust code that surrounds action code so the
// Rust tooling can analyse it in place: a module holding one function whose
// parameters are the selected symbols of the alternative and whose return
// type is the type of the rule.
package inject

import (
	"errors"
	"fmt"

	"github.com/orizon-lang/lalrpop-ide/internal/grammar"
	"github.com/orizon-lang/lalrpop-ide/internal/hostcode"
	"github.com/orizon-lang/lalrpop-ide/internal/position"
	"github.com/orizon-lang/lalrpop-ide/internal/resolve"
)

// ErrDetached is returned for action code that no rule of the file owns.
var ErrDetached = errors.New("action code does not belong to the file")

// Snippet is the text placed around action code. Range is the code range
// relative to the start of the action node.
type Snippet struct {
	Prefix string
	Suffix string
	Range  position.Range
}

// Text returns the complete host source with code spliced in.
func (s *Snippet) Text(code string) string {
	return s.Prefix + code + s.Suffix
}

// Synthesize builds the snippet for action using the ambient types
// declared by file.
func Synthesize(file *grammar.File, action *grammar.Action) (*Snippet, error) {
	return SynthesizeWithContext(file, action, resolve.ContextFor(file))
}

// SynthesizeWithContext is Synthesize with explicit ambient types.
func SynthesizeWithContext(file *grammar.File, action *grammar.Action, ctx resolve.Context) (*Snippet, error) {
	if file == nil || action == nil {
		return nil, ErrDetached
	}
	nt, alt, ok := file.Enclosing(action)
	if !ok {
		return nil, fmt.Errorf("synthesize %s: %w", action.Span, ErrDetached)
	}

	r := resolve.NewResolver(file, ctx)
	sig := hostcode.Signature{
		Params: parameters(file, r.SelectedTypes(alt, resolve.Identity(nt.Params))),
		Return: r.Resolve(nt, resolve.MacroArguments{}),
	}
	if action.Fallible {
		sig.Return = "::std::result::Result<" + sig.Return + ", " + ctx.ParseError() + ">"
	}
	if g := file.Grammar; g != nil {
		sig.TypeParams = g.TypeParams
		sig.WhereClauses = g.WhereClauses
		for _, p := range g.Params {
			sig.GrammarParams = append(sig.GrammarParams, hostcode.Param{Name: p.Name, Type: p.Type})
		}
	}

	return &Snippet{
		Prefix: hostcode.FunctionPrefix(file.ImportCode(), sig),
		Suffix: hostcode.FunctionSuffix,
		Range:  action.CodeRange(),
	}, nil
}

// parameters names every selected symbol. Unnamed symbols get a
// placeholder derived from their index; user names and grammar parameters
// are never shadowed.
func parameters(file *grammar.File, selected []resolve.SelectedType) []hostcode.Param {
	taken := make(map[string]bool)
	for _, s := range selected {
		if s.Name != "" {
			taken[s.Name] = true
		}
	}
	if file.Grammar != nil {
		for _, p := range file.Grammar.Params {
			taken[p.Name] = true
		}
	}

	params := make([]hostcode.Param, len(selected))
	for i, s := range selected {
		name := s.Name
		if name == "" {
			name = hostcode.PlaceholderName(i, taken)
			taken[name] = true
		}
		params[i] = hostcode.Param{Name: name, Type: s.Type}
	}
	return params
}
