package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/orizon-lang/lalrpop-ide/internal/cli"
	"github.com/orizon-lang/lalrpop-ide/internal/grammar"
	"github.com/orizon-lang/lalrpop-ide/internal/inject"
	"github.com/orizon-lang/lalrpop-ide/internal/inspect"
	"github.com/orizon-lang/lalrpop-ide/internal/resolve"
)

type typesCommand struct {
	app  *app
	JSON bool `short:"j" long:"json" description:"print as JSON"`
	Args struct {
		Dump string `positional-arg-name:"DUMP"`
	} `positional-args:"yes" required:"yes"`
}

func (c *typesCommand) Execute([]string) error {
	config, _, err := c.app.config()
	if err != nil {
		return err
	}
	file, err := grammar.Load(c.app.ctx, c.Args.Dump)
	if err != nil {
		return err
	}
	types := inspect.RuleTypes(file, resolve.ContextWithDefaults(file, defaults(config)))
	if c.JSON {
		encoder := json.NewEncoder(c.app.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(types)
	}
	for _, t := range types {
		fmt.Fprintf(c.app.stdout, "%s: %s\n", t.Rule, t.Type)
	}
	return nil
}

type injectCommand struct {
	app         *app
	Rule        string `short:"r" long:"rule" description:"rule holding the action; every action of the file without one"`
	Alternative int    `short:"a" long:"alternative" default:"0" description:"index of the alternative within the rule"`
	JSON        bool   `short:"j" long:"json" description:"print prefix, suffix and range as JSON"`
	Args        struct {
		Dump string `positional-arg-name:"DUMP"`
	} `positional-args:"yes" required:"yes"`
}

type injectOutput struct {
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

func (c *injectCommand) Execute([]string) error {
	config, _, err := c.app.config()
	if err != nil {
		return err
	}
	file, err := grammar.Load(c.app.ctx, c.Args.Dump)
	if err != nil {
		return err
	}
	actions := file.Actions()
	if c.Rule != "" {
		action, err := c.selectAction(file)
		if err != nil {
			return err
		}
		actions = []*grammar.Action{action}
	}

	ctx := resolve.ContextWithDefaults(file, defaults(config))
	var outputs []injectOutput
	for i, action := range actions {
		snippet, err := inject.SynthesizeWithContext(file, action, ctx)
		if err != nil {
			return err
		}
		if c.JSON {
			outputs = append(outputs, injectOutput{
				Prefix: snippet.Prefix,
				Suffix: snippet.Suffix,
				Start:  snippet.Range.Start,
				End:    snippet.Range.End,
			})
			continue
		}
		if i > 0 {
			fmt.Fprintln(c.app.stdout)
		}
		fmt.Fprintln(c.app.stdout, snippet.Text(action.Code))
	}
	if !c.JSON {
		return nil
	}
	encoder := json.NewEncoder(c.app.stdout)
	encoder.SetIndent("", "  ")
	if c.Rule != "" {
		return encoder.Encode(outputs[0])
	}
	return encoder.Encode(outputs)
}

func (c *injectCommand) selectAction(file *grammar.File) (*grammar.Action, error) {
	nt := file.FindNonterminal(c.Rule)
	if nt == nil {
		return nil, fmt.Errorf("no rule %s in %s", c.Rule, c.Args.Dump)
	}
	if c.Alternative < 0 || c.Alternative >= len(nt.Alternatives) {
		return nil, fmt.Errorf("rule %s has %d alternative(s), index %d out of range", c.Rule, len(nt.Alternatives), c.Alternative)
	}
	action := nt.Alternatives[c.Alternative].Action
	if action == nil {
		return nil, fmt.Errorf("alternative %d of %s has no action code", c.Alternative, c.Rule)
	}
	return action, nil
}

type refsCommand struct {
	app  *app
	Args struct {
		Dump string `positional-arg-name:"DUMP"`
	} `positional-args:"yes" required:"yes"`
}

// Execute prints what every nonterminal reference resolves to. Unresolved
// references list the names visible from their rule and fail the command.
func (c *refsCommand) Execute([]string) error {
	file, err := grammar.Load(c.app.ctx, c.Args.Dump)
	if err != nil {
		return err
	}
	unresolved := 0
	for _, ref := range inspect.References(file) {
		fmt.Fprintf(c.app.stdout, "%s: %s -> ", ref.Ref.Span.Start, ref.Ref.Name)
		switch ref.Target.Kind {
		case grammar.TargetRule:
			fmt.Fprintf(c.app.stdout, "rule %s\n", ref.Target.Rule.Name)
		case grammar.TargetParam:
			fmt.Fprintf(c.app.stdout, "parameter %s of %s\n", ref.Target.Param, ref.Target.Rule.Name)
		default:
			unresolved++
			fmt.Fprintf(c.app.stdout, "unresolved (visible: %s)\n", strings.Join(file.Variants(ref.Rule), ", "))
		}
	}
	if unresolved > 0 {
		return errIssues
	}
	return nil
}

type versionCommand struct {
	app  *app
	JSON bool `short:"j" long:"json" description:"print as JSON"`
}

func (c *versionCommand) Execute([]string) error {
	cli.PrintVersion(c.app.stdout, toolName, c.JSON)
	return nil
}
