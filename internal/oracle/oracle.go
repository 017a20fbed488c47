// Package oracle decides whether two Rust type expressions denote the same
// type. The decision is delegated to a Host, a Rust front end that loads
// a synthetic module inside the real project, resolves the two aliases it
// declares and unifies them.
package oracle

import (
	"context"

	"github.com/orizon-lang/lalrpop-ide/internal/cli"
	"github.com/orizon-lang/lalrpop-ide/internal/hostcode"
	"github.com/orizon-lang/lalrpop-ide/internal/rusttype"
)

// Host loads Rust source in the context of a project module.
type Host interface {
	Load(ctx context.Context, scope Scope, source string) (Module, error)
}

// Module is a loaded synthetic module.
type Module interface {
	// Aliases lists the type aliases the module declares, in source order.
	Aliases() []string
	// Resolve returns the fully resolved target of alias, nil if unknown.
	Resolve(alias string) rusttype.Type
	// CanCombine reports whether a and b unify.
	CanCombine(a, b rusttype.Type) bool
}

// Adapter answers type equivalence questions through a Host.
type Adapter struct {
	host   Host
	logger *cli.Logger
}

// NewAdapter creates an adapter; a nil logger discards output.
func NewAdapter(host Host, logger *cli.Logger) *Adapter {
	if logger == nil {
		logger = cli.Discard()
	}
	return &Adapter{host: host, logger: logger}
}

// SameType reports whether a and b denote the same type when seen from
// scope with imports in effect. generics declares stand-ins for generic
// parameter names. Every failure along the way answers false.
func (a *Adapter) SameType(ctx context.Context, scope *Scope, imports, generics, typeA, typeB string) bool {
	if scope == nil {
		a.logger.Debug("no module includes the grammar, comparing %s and %s fails", typeA, typeB)
		return false
	}
	source := hostcode.AliasModule(imports, generics, typeA, typeB)
	module, err := a.host.Load(ctx, *scope, source)
	if err != nil {
		a.logger.Debug("load comparison module: %v", err)
		return false
	}

	aliases := module.Aliases()
	if len(aliases) != 2 {
		a.logger.Debug("comparison module declares %d aliases", len(aliases))
		return false
	}
	first, second := module.Resolve(aliases[0]), module.Resolve(aliases[1])
	if first == nil || second == nil {
		return false
	}
	same := module.CanCombine(first, second)
	a.logger.Debug("%s == %s: %v", first, second, same)
	return same
}
