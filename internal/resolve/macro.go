package resolve

import (
	"strings"
)

// MacroArgument binds a macro parameter Name to a Rust type.
type MacroArgument struct {
	Type string
	Name string
}

// MacroArguments is the substitution environment of a resolution.
//
// Root holds the identity bindings of the rule the top-level request was
// made for. It never changes while the request runs, so nested references
// can still see the outermost rule's parameters. Arguments holds the
// bindings of the current recursion level; it is replaced at every
// nonterminal reference with the callee's parameters bound to the
// caller's argument types.
type MacroArguments struct {
	Root      []MacroArgument
	Arguments []MacroArgument
}

// Identity binds every parameter to its own name, in both lists.
func Identity(params []string) MacroArguments {
	args := make([]MacroArgument, 0, len(params))
	for _, p := range params {
		args = append(args, MacroArgument{Type: p, Name: p})
	}
	return MacroArguments{Root: args, Arguments: args}
}

// Bind returns the arguments for a call level: the same root, new bindings.
func (m MacroArguments) Bind(arguments []MacroArgument) MacroArguments {
	return MacroArguments{Root: m.Root, Arguments: arguments}
}

// Lookup finds name among the current bindings.
func (m MacroArguments) Lookup(name string) (MacroArgument, bool) {
	return find(m.Arguments, name)
}

// LookupRoot finds name among the root bindings.
func (m MacroArguments) LookupRoot(name string) (MacroArgument, bool) {
	return find(m.Root, name)
}

// key renders the current bindings for cache keys.
func (m MacroArguments) key() string {
	parts := make([]string, len(m.Arguments))
	for i, a := range m.Arguments {
		parts[i] = a.Name + "=" + a.Type
	}
	return strings.Join(parts, ";")
}

func find(args []MacroArgument, name string) (MacroArgument, bool) {
	for _, a := range args {
		if a.Name == name {
			return a, true
		}
	}
	return MacroArgument{}, false
}
