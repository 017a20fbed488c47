// Package inspect reports alternatives whose type disagrees with the type
// of their rule.
package inspect

import (
	"context"
	"strings"

	"github.com/orizon-lang/lalrpop-ide/internal/cli"
	"github.com/orizon-lang/lalrpop-ide/internal/diagnostic"
	"github.com/orizon-lang/lalrpop-ide/internal/grammar"
	"github.com/orizon-lang/lalrpop-ide/internal/hostcode"
	"github.com/orizon-lang/lalrpop-ide/internal/oracle"
	"github.com/orizon-lang/lalrpop-ide/internal/resolve"
)

// Checker runs the inconsistent type inspection.
type Checker struct {
	adapter  *oracle.Adapter
	logger   *cli.Logger
	defaults *resolve.Context
}

// NewChecker creates a checker comparing types through adapter.
func NewChecker(adapter *oracle.Adapter, logger *cli.Logger) *Checker {
	if logger == nil {
		logger = cli.Discard()
	}
	return &Checker{adapter: adapter, logger: logger}
}

// WithDefaults returns a checker using defaults for the ambient types a
// grammar does not declare.
func (c *Checker) WithDefaults(defaults resolve.Context) *Checker {
	clone := *c
	clone.defaults = &defaults
	return &clone
}

func (c *Checker) context(file *grammar.File) resolve.Context {
	if c.defaults != nil {
		return resolve.ContextWithDefaults(file, *c.defaults)
	}
	return resolve.ContextFor(file)
}

// Check inspects every rule of file. scope is the project module the
// grammar is generated into; without it no two spellings compare equal.
// When ctx is cancelled the partial result is dropped and ctx.Err() is
// returned.
func (c *Checker) Check(ctx context.Context, file *grammar.File, scope *oracle.Scope) ([]diagnostic.Diagnostic, error) {
	r := resolve.NewResolver(file, c.context(file))
	imports := file.ImportCode()
	grammarGenerics := grammarTypeParams(file)

	var out []diagnostic.Diagnostic
	for _, nt := range file.Nonterminals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		args := resolve.Identity(nt.Params)

		var seen string
		if nt.Type != nil {
			seen = r.ResolveTypeRef(nt.Type, args)
			if seen == resolve.UnitType {
				c.logger.Debug("%s: declared unit type, skipped", nt.Name)
				continue
			}
		}

		generics := hostcode.GenericUnitStructs(union(grammarGenerics, nt.Params))
		for _, alt := range nt.Alternatives {
			if alt.Action != nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			altType := r.Resolve(alt, args)
			if seen == "" {
				seen = altType
				continue
			}
			if altType == seen || c.adapter.SameType(ctx, scope, imports, generics, seen, altType) {
				continue
			}
			c.logger.Debug("%s: %s differs from %s", nt.Name, altType, seen)
			out = append(out, *diagnostic.InconsistentType(alt.Span, altType, seen))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// grammarTypeParams returns the type parameter names of the grammar
// declaration without lifetimes and bounds.
func grammarTypeParams(file *grammar.File) []string {
	if file.Grammar == nil {
		return nil
	}
	var names []string
	for _, p := range file.Grammar.TypeParams {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "'") {
			continue
		}
		if i := strings.IndexAny(p, ":= "); i >= 0 {
			p = p[:i]
		}
		names = append(names, p)
	}
	return names
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
