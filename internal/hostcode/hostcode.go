// Package hostcode holds every Rust text template the tooling generates:
// the wrapper module around injected action code, the comparison module
// handed to the type-equivalence oracle, and the naming rules for
// synthesized identifiers.
package hostcode

import (
	"fmt"
	"strings"
)

// ModuleName names both the wrapper module and the wrapper function.
const ModuleName = "__intellij_lalrpop"

const placeholderPrefix = ModuleName + "_noname_"

// Alias names used by the comparison module.
const (
	FirstAlias  = "T1"
	SecondAlias = "T2"
)

// PlaceholderName names the unnamed selected symbol at index. The name is
// derived from the index only, so it is stable across calls; it is
// extended with underscores while it collides with a name in taken.
func PlaceholderName(index int, taken map[string]bool) string {
	name := fmt.Sprintf("%s%d", placeholderPrefix, index)
	for taken[name] {
		name += "_"
	}
	return name
}

// GenericUnitStructs declares a unit struct per generic parameter so that
// types mentioning the parameter resolve to a concrete stand-in.
func GenericUnitStructs(params []string) string {
	lines := make([]string, len(params))
	for i, p := range params {
		lines[i] = "struct " + p + ";"
	}
	return strings.Join(lines, "\n")
}

// Param is a `name: Type` function parameter.
type Param struct {
	Name string
	Type string
}

func (p Param) String() string {
	return p.Name + ": " + p.Type
}

// Signature is the wrapper function's signature. Grammar-level parts are
// raw text copied from the grammar declaration.
type Signature struct {
	TypeParams    []string
	GrammarParams []Param
	Params        []Param
	Return        string
	WhereClauses  []string
}

// String renders `fn name<TP>(grammar params, params) -> R where ...`.
func (s Signature) String() string {
	var sb strings.Builder
	sb.WriteString("fn ")
	sb.WriteString(ModuleName)
	if len(s.TypeParams) > 0 {
		sb.WriteString("<")
		sb.WriteString(strings.Join(s.TypeParams, ", "))
		sb.WriteString(">")
	}
	params := make([]string, 0, len(s.GrammarParams)+len(s.Params))
	for _, p := range s.GrammarParams {
		params = append(params, p.String())
	}
	for _, p := range s.Params {
		params = append(params, p.String())
	}
	sb.WriteString("(")
	sb.WriteString(strings.Join(params, ", "))
	sb.WriteString(") -> ")
	sb.WriteString(s.Return)
	if len(s.WhereClauses) > 0 {
		sb.WriteString(" where ")
		sb.WriteString(strings.Join(s.WhereClauses, ", "))
	}
	return sb.String()
}

// FunctionPrefix opens the wrapper module and function; action code goes
// right after it, followed by FunctionSuffix.
func FunctionPrefix(imports string, sig Signature) string {
	return "mod " + ModuleName + " {\n" + imports + "\n" + sig.String() + " {\n"
}

// FunctionSuffix closes what FunctionPrefix opened.
const FunctionSuffix = "\n}\n}"

// AliasModule is the comparison module: imports, generic stand-ins and
// the two aliases to compare, in that order.
func AliasModule(imports, generics, first, second string) string {
	var sb strings.Builder
	sb.WriteString("mod " + ModuleName + " {\n")
	for _, block := range []string{imports, generics} {
		if strings.TrimSpace(block) != "" {
			sb.WriteString(block)
			sb.WriteString("\n")
		}
	}
	fmt.Fprintf(&sb, "type %s = %s;\n", FirstAlias, first)
	fmt.Fprintf(&sb, "type %s = %s;\n", SecondAlias, second)
	sb.WriteString("}")
	return sb.String()
}
