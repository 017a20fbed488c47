package rusttype

import (
	"fmt"
	"strings"
)

type parser struct {
	text   string
	tokens []token
	pos    int
}

// Parse parses a complete type expression.
func Parse(text string) (Type, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{text: text, tokens: tokens}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf("unexpected %q after type", p.peek().text)
	}
	return t, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(text string) Type {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

func (p *parser) eof() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) peek() token {
	if p.eof() {
		return token{code: -1}
	}
	return p.tokens[p.pos]
}

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.tokens) {
		return token{code: -1}
	}
	return p.tokens[p.pos+n]
}

func (p *parser) next() token {
	t := p.peek()
	if !p.eof() {
		p.pos++
	}
	return t
}

func (p *parser) accept(text string) bool {
	if p.peek().is(text) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if !p.accept(text) {
		if p.eof() {
			return p.errorf("expected %q, found end of input", text)
		}
		return p.errorf("expected %q, found %q", text, p.peek().text)
	}
	return nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	offset := len(p.text)
	if !p.eof() {
		offset = p.peek().offset
	}
	return fmt.Errorf("type syntax error at %d: %s", offset, fmt.Sprintf(format, args...))
}

func (p *parser) parseType() (Type, error) {
	t := p.peek()
	switch {
	case t.is("("):
		return p.parseTuple()
	case t.is("["):
		return p.parseSliceOrArray()
	case t.is("&"):
		p.next()
		ref := &Reference{}
		if p.peek().code == lifetimeToken {
			ref.Lifetime = p.next().text
		}
		ref.Mut = p.accept("mut")
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ref.Elem = elem
		return ref, nil
	case t.is("*"):
		p.next()
		ptr := &Pointer{}
		switch {
		case p.accept("mut"):
			ptr.Mut = true
		case p.accept("const"):
		default:
			return nil, p.errorf("expected const or mut after *")
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ptr.Elem = elem
		return ptr, nil
	case t.is("!"):
		p.next()
		return &Never{}, nil
	case t.is("_"):
		p.next()
		return &Infer{}, nil
	case t.is("dyn"), t.is("impl"), t.is("fn"), t.is("unsafe"), t.is("extern"), t.is("for"), t.is("<"):
		return p.parseOpaque()
	case t.is("::"), t.code == identifierToken:
		return p.parsePath()
	case t.code == -1:
		return nil, p.errorf("expected type, found end of input")
	}
	return nil, p.errorf("expected type, found %q", t.text)
}

func (p *parser) parseTuple() (Type, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	tuple := &Tuple{}
	trailingComma := false
	for !p.peek().is(")") {
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		tuple.Elems = append(tuple.Elems, elem)
		trailingComma = p.accept(",")
		if !trailingComma {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	// (T) is a parenthesized type, (T,) a one-tuple
	if len(tuple.Elems) == 1 && !trailingComma {
		return tuple.Elems[0], nil
	}
	return tuple, nil
}

func (p *parser) parseSliceOrArray() (Type, error) {
	if err := p.expect("["); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.accept(";") {
		start := p.pos
		depth := 0
		for !p.eof() && !(depth == 0 && p.peek().is("]")) {
			switch {
			case p.peek().is("["), p.peek().is("("), p.peek().is("{"):
				depth++
			case p.peek().is(")"), p.peek().is("}"):
				depth--
			}
			p.next()
		}
		length := p.join(start, p.pos)
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		return &Array{Elem: elem, Len: length}, nil
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	return &Slice{Elem: elem}, nil
}

func (p *parser) parsePath() (Type, error) {
	path := &Path{Global: p.accept("::")}
	for {
		name := p.next()
		if name.code != identifierToken {
			return nil, p.errorf("expected path segment, found %q", name.text)
		}
		seg := Segment{Name: strings.TrimPrefix(name.text, "r#")}
		// turbofish
		if p.peek().is("::") && p.peekAt(1).is("<") {
			p.next()
		}
		if p.peek().is("<") {
			args, err := p.parseGenericArgs()
			if err != nil {
				return nil, err
			}
			seg.Args = args
		}
		path.Segments = append(path.Segments, seg)
		if !p.peek().is("::") || p.peekAt(1).code != identifierToken {
			break
		}
		p.next()
	}
	return path, nil
}

func (p *parser) parseGenericArgs() ([]Type, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	var args []Type
	for !p.peek().is(">") {
		if p.peek().code == lifetimeToken {
			args = append(args, &Lifetime{Name: p.next().text})
		} else if p.peek().code == identifierToken && p.peekAt(1).is("=") {
			// associated type binding, e.g. Iterator<Item = T>
			name := p.next().text
			p.next()
			bound, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, &Opaque{Text: name + " = " + bound.String()})
		} else {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	return args, nil
}

// parseOpaque consumes a trait object, impl trait or function pointer up
// to the next delimiter at nesting depth zero.
func (p *parser) parseOpaque() (Type, error) {
	start := p.pos
	depth := 0
	for !p.eof() {
		t := p.peek()
		if depth == 0 && (t.is(",") || t.is(">") || t.is(")") || t.is("]") || t.is(";") || t.is("=") || t.is("{")) {
			break
		}
		switch {
		case t.is("<"), t.is("("), t.is("["):
			depth++
		case t.is(">"), t.is(")"), t.is("]"):
			depth--
		}
		p.next()
	}
	if p.pos == start {
		return nil, p.errorf("expected type")
	}
	return &Opaque{Text: p.join(start, p.pos)}, nil
}

// join renders tokens [from, to) with single spaces between words only.
func (p *parser) join(from, to int) string {
	var sb strings.Builder
	for i := from; i < to; i++ {
		t := p.tokens[i]
		if i > from && needsSpace(p.tokens[i-1], t) {
			sb.WriteString(" ")
		}
		sb.WriteString(t.text)
	}
	return sb.String()
}

func needsSpace(prev, cur token) bool {
	word := func(t token) bool {
		return t.code == identifierToken || t.code == numberToken || t.code == lifetimeToken
	}
	if word(prev) && word(cur) {
		return true
	}
	return prev.is(",") || prev.code == arrowToken || cur.code == arrowToken || prev.is("+") || cur.is("+")
}
