package rusttype

import (
	"strings"
)

// Module is the flattened item list of a module body. Only the items
// that matter for type comparison are kept; everything else is skipped.
type Module struct {
	Name    string
	Uses    []Use
	Structs []string
	Aliases []AliasItem
}

// Use is one leaf of a use tree: `use a::b::C as D;` gives Path
// `a::b::C` and Name `D`. Glob imports have an empty Name.
type Use struct {
	Path string
	Name string
	Glob bool
}

// AliasItem is `type Name<Params> = Target;`.
type AliasItem struct {
	Name   string
	Params []string
	Target Type
}

// ParseModule reads module text. Items that fail to parse are dropped
// rather than failing the whole module, so callers can count what
// survived.
func ParseModule(text string) (*Module, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{text: text, tokens: tokens}
	m := &Module{}
	p.parseItems(m, false)
	return m, nil
}

func (p *parser) parseItems(m *Module, nested bool) {
	for !p.eof() {
		if nested && p.peek().is("}") {
			return
		}
		start := p.pos
		p.parseItem(m)
		if p.pos == start {
			p.next()
		}
	}
}

func (p *parser) parseItem(m *Module) {
	p.skipAttributes()
	if p.accept("pub") {
		// pub(crate), pub(super)
		if p.peek().is("(") {
			p.skipBalanced("(", ")")
		}
	}
	switch {
	case p.accept("mod"):
		name := p.next()
		if m.Name == "" {
			m.Name = name.text
		}
		if p.accept("{") {
			p.parseItems(m, true)
			p.accept("}")
			return
		}
		p.accept(";")
	case p.accept("use"):
		prefix := ""
		if p.accept("::") {
			prefix = "::"
		}
		uses, ok := p.parseUseTree(prefix)
		if ok && p.accept(";") {
			m.Uses = append(m.Uses, uses...)
			return
		}
		p.skipItem()
	case p.accept("struct"):
		name := p.next()
		if name.code != identifierToken {
			p.skipItem()
			return
		}
		m.Structs = append(m.Structs, name.text)
		if p.peek().is("<") {
			p.skipBalanced("<", ">")
		}
		switch {
		case p.peek().is("{"):
			p.skipBalanced("{", "}")
		case p.peek().is("("):
			p.skipBalanced("(", ")")
			p.accept(";")
		default:
			p.skipItem()
		}
	case p.accept("type"):
		item, ok := p.parseAlias()
		if ok {
			m.Aliases = append(m.Aliases, item)
			return
		}
		p.skipItem()
	default:
		p.skipItem()
	}
}

func (p *parser) parseAlias() (AliasItem, bool) {
	name := p.next()
	if name.code != identifierToken {
		return AliasItem{}, false
	}
	item := AliasItem{Name: name.text}
	if p.accept("<") {
		for !p.peek().is(">") && !p.eof() {
			param := p.next()
			if param.code == identifierToken {
				item.Params = append(item.Params, param.text)
			}
			// bounds
			if p.accept(":") {
				for !p.eof() && !p.peek().is(",") && !p.peek().is(">") {
					p.next()
				}
			}
			p.accept(",")
		}
		if !p.accept(">") {
			return AliasItem{}, false
		}
	}
	if !p.accept("=") {
		return AliasItem{}, false
	}
	target, err := p.parseType()
	if err != nil || !p.accept(";") {
		return AliasItem{}, false
	}
	item.Target = target
	return item, true
}

func (p *parser) parseUseTree(prefix string) ([]Use, bool) {
	var segments []string
	for {
		switch {
		case p.accept("*"):
			return []Use{{Path: prefix + strings.Join(segments, "::"), Glob: true}}, true
		case p.accept("{"):
			base := prefix + strings.Join(segments, "::")
			if len(segments) > 0 {
				base += "::"
			}
			var out []Use
			for !p.peek().is("}") {
				sub, ok := p.parseUseTree(base)
				if !ok {
					return nil, false
				}
				out = append(out, sub...)
				if !p.accept(",") {
					break
				}
			}
			return out, p.accept("}")
		}
		name := p.next()
		if name.code != identifierToken {
			return nil, false
		}
		segments = append(segments, name.text)
		if p.accept("::") {
			continue
		}
		path := prefix + strings.Join(segments, "::")
		alias := name.text
		if p.accept("as") {
			renamed := p.next()
			if renamed.code != identifierToken {
				return nil, false
			}
			alias = renamed.text
		}
		// `use a::b::{self}` imports b
		if alias == "self" && len(segments) == 1 {
			path = strings.TrimSuffix(prefix, "::")
			alias = path[strings.LastIndex(path, ":")+1:]
		}
		return []Use{{Path: path, Name: alias}}, true
	}
}

func (p *parser) skipAttributes() {
	for p.peek().is("#") {
		p.next()
		p.accept("!")
		if p.peek().is("[") {
			p.skipBalanced("[", "]")
		}
	}
}

// skipItem advances past the next `;` or balanced `{...}` at depth zero.
func (p *parser) skipItem() {
	for !p.eof() {
		switch {
		case p.peek().is(";"):
			p.next()
			return
		case p.peek().is("{"):
			p.skipBalanced("{", "}")
			return
		case p.peek().is("}"):
			return
		}
		p.next()
	}
}

func (p *parser) skipBalanced(open, closing string) {
	depth := 0
	for !p.eof() {
		t := p.next()
		switch {
		case t.is(open):
			depth++
		case t.is(closing):
			depth--
			if depth == 0 {
				return
			}
		}
	}
}
