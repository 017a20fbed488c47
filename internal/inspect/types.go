package inspect

import (
	"github.com/orizon-lang/lalrpop-ide/internal/grammar"
	"github.com/orizon-lang/lalrpop-ide/internal/resolve"
)

// RuleType is the resolved type of one rule, as shown on hover.
type RuleType struct {
	Rule string `json:"rule"`
	Type string `json:"type"`
}

// RuleTypes resolves every rule of file with its own parameters unbound.
func RuleTypes(file *grammar.File, ctx resolve.Context) []RuleType {
	r := resolve.NewResolver(file, ctx)
	out := make([]RuleType, 0, len(file.Nonterminals))
	for _, nt := range file.Nonterminals {
		out = append(out, RuleType{Rule: nt.Name, Type: r.Resolve(nt, resolve.Identity(nt.Params))})
	}
	return out
}
