package grammar

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	lperrors "github.com/orizon-lang/lalrpop-ide/internal/errors"
	"github.com/orizon-lang/lalrpop-ide/internal/position"
	"github.com/orizon-lang/lalrpop-ide/internal/rusttype"
)

// Load reads a tree dump from a local path or URL.
func Load(ctx context.Context, URL string) (*File, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, lperrors.InvalidTree(URL, err)
	}
	file, err := decode(data, URL)
	if err != nil {
		return nil, lperrors.InvalidTree(URL, err)
	}
	return file, nil
}

// Decode builds a File from a YAML or JSON tree dump. Spans are
// `[start, end]` byte offsets into `source`.
func Decode(data []byte) (*File, error) {
	return decode(data, "")
}

// decode uses path when the dump does not name its grammar file.
func decode(data []byte, path string) (*File, error) {
	var dto fileDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, errors.Wrap(err, "decode tree")
	}
	if dto.Path == "" {
		dto.Path = path
	}
	c := &converter{source: position.NewSourceFile(dto.Path, dto.Source)}
	file := &File{Path: dto.Path, Source: c.source}

	for _, u := range dto.Uses {
		file.Uses = append(file.Uses, &UseStmt{Text: strings.TrimSpace(u.Text), Span: c.span(u.Span)})
	}
	if g := dto.Grammar; g != nil {
		decl := &GrammarDecl{TypeParams: g.TypeParams, WhereClauses: g.Where, Span: c.span(g.Span)}
		for _, p := range g.Params {
			decl.Params = append(decl.Params, &GrammarParam{Name: p.Name, Type: p.Type})
		}
		file.Grammar = decl
	}
	for i, e := range dto.Externs {
		ext, err := c.extern(e)
		if err != nil {
			return nil, errors.Wrapf(err, "extern %d", i)
		}
		file.Externs = append(file.Externs, ext)
	}
	for _, n := range dto.Nonterminals {
		nt, err := c.nonterminal(n)
		if err != nil {
			return nil, errors.Wrapf(err, "nonterminal %s", n.Name)
		}
		file.Nonterminals = append(file.Nonterminals, nt)
	}
	return file, nil
}

type fileDTO struct {
	Path         string           `yaml:"path"`
	Source       string           `yaml:"source"`
	Uses         []useDTO         `yaml:"uses"`
	Grammar      *grammarDTO      `yaml:"grammar"`
	Externs      []externDTO      `yaml:"extern"`
	Nonterminals []nonterminalDTO `yaml:"nonterminals"`
}

type useDTO struct {
	Text string `yaml:"text"`
	Span []int  `yaml:"span"`
}

type grammarDTO struct {
	TypeParams []string   `yaml:"type_params"`
	Params     []paramDTO `yaml:"params"`
	Where      []string   `yaml:"where"`
	Span       []int      `yaml:"span"`
}

type paramDTO struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type externDTO struct {
	Types []associatedDTO `yaml:"types"`
	Enum  *yaml.Node      `yaml:"enum"`
	Span  []int           `yaml:"span"`
}

type associatedDTO struct {
	Name string    `yaml:"name"`
	Type yaml.Node `yaml:"type"`
}

type nonterminalDTO struct {
	Name         string           `yaml:"name"`
	Params       []string         `yaml:"params"`
	Type         *yaml.Node       `yaml:"type"`
	Alternatives []alternativeDTO `yaml:"alternatives"`
	Span         []int            `yaml:"span"`
}

type alternativeDTO struct {
	Symbols []symbolDTO `yaml:"symbols"`
	Action  *actionDTO  `yaml:"action"`
	Span    []int       `yaml:"span"`
}

type actionDTO struct {
	Code     string `yaml:"code"`
	Fallible bool   `yaml:"fallible"`
	Span     []int  `yaml:"span"`
	CodeSpan []int  `yaml:"code_span"`
}

// symbolDTO carries exactly one of the expression keys.
type symbolDTO struct {
	Name       string      `yaml:"name"`
	Selected   bool        `yaml:"selected"`
	Span       []int       `yaml:"span"`
	Terminal   *string     `yaml:"terminal"`
	Ref        string      `yaml:"ref"`
	Args       []symbolDTO `yaml:"args"`
	Repeat     string      `yaml:"repeat"`
	Of         *symbolDTO  `yaml:"of"`
	Group      []symbolDTO `yaml:"group"`
	Lookahead  bool        `yaml:"lookahead"`
	Lookbehind bool        `yaml:"lookbehind"`
	Error      bool        `yaml:"error"`
}

// typeRefDTO is the mapping form of a type reference; a scalar is
// shorthand for type text.
type typeRefDTO struct {
	Path     string      `yaml:"path"`
	Args     []yaml.Node `yaml:"args"`
	Tuple    []yaml.Node `yaml:"tuple"`
	Slice    *yaml.Node  `yaml:"slice"`
	Ref      *yaml.Node  `yaml:"ref"`
	Lifetime string      `yaml:"lifetime"`
	Mut      bool        `yaml:"mut"`
	Symbol   *symbolDTO  `yaml:"symbol"`
	Raw      string      `yaml:"raw"`
	Unit     bool        `yaml:"unit"`
}

type converter struct {
	source *position.SourceFile
}

// span maps offsets to a Span. Offsets are kept even when the dump has no
// source text to compute lines from.
func (c *converter) span(offsets []int) position.Span {
	if len(offsets) != 2 {
		return position.Span{}
	}
	r := position.Range{Start: offsets[0], End: offsets[1]}
	if r.End <= len(c.source.Content) && r.Start >= 0 && r.Start <= r.End {
		return c.source.SpanFromRange(r)
	}
	return position.Span{
		Start: position.Position{Filename: c.source.Filename, Offset: r.Start},
		End:   position.Position{Filename: c.source.Filename, Offset: r.End},
	}
}

func (c *converter) extern(dto externDTO) (*ExternToken, error) {
	ext := &ExternToken{Span: c.span(dto.Span)}
	for _, t := range dto.Types {
		ref, err := c.typeRef(&t.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "associated type %s", t.Name)
		}
		ext.AssociatedTypes = append(ext.AssociatedTypes, &AssociatedType{Name: t.Name, Type: ref})
	}
	if dto.Enum != nil {
		ref, err := c.typeRef(dto.Enum)
		if err != nil {
			return nil, errors.Wrap(err, "enum")
		}
		ext.Enum = &EnumToken{Type: ref}
	}
	return ext, nil
}

func (c *converter) nonterminal(dto nonterminalDTO) (*Nonterminal, error) {
	if dto.Name == "" {
		return nil, errors.New("missing name")
	}
	nt := &Nonterminal{Name: dto.Name, Params: dto.Params, Span: c.span(dto.Span)}
	if dto.Type != nil {
		ref, err := c.typeRef(dto.Type)
		if err != nil {
			return nil, errors.Wrap(err, "type")
		}
		nt.Type = ref
	}
	for i, a := range dto.Alternatives {
		alt := &Alternative{Span: c.span(a.Span)}
		for j, s := range a.Symbols {
			sym, err := c.symbol(s)
			if err != nil {
				return nil, errors.Wrapf(err, "alternative %d, symbol %d", i, j)
			}
			alt.Symbols = append(alt.Symbols, sym)
		}
		if a.Action != nil {
			alt.Action = c.action(a.Action)
		}
		nt.Alternatives = append(nt.Alternatives, alt)
	}
	return nt, nil
}

func (c *converter) action(dto *actionDTO) *Action {
	action := &Action{
		Code:     dto.Code,
		Fallible: dto.Fallible,
		Span:     c.span(dto.Span),
		CodeSpan: c.span(dto.CodeSpan),
	}
	if action.Code == "" {
		action.Code = c.source.Text(action.CodeSpan.Range())
	}
	return action
}

func (c *converter) symbol(dto symbolDTO) (*Symbol, error) {
	expr, err := c.expr(dto)
	if err != nil {
		return nil, err
	}
	return &Symbol{Name: dto.Name, Selected: dto.Selected || dto.Name != "", Expr: expr, Span: c.span(dto.Span)}, nil
}

func (c *converter) expr(dto symbolDTO) (SymbolExpr, error) {
	span := c.span(dto.Span)
	switch {
	case dto.Terminal != nil:
		return &Terminal{Text: *dto.Terminal, Span: span}, nil
	case dto.Ref != "":
		ref := &NonterminalRef{Name: dto.Ref, Span: span}
		for i, a := range dto.Args {
			arg, err := c.expr(a)
			if err != nil {
				return nil, errors.Wrapf(err, "argument %d of %s", i, dto.Ref)
			}
			ref.Args = append(ref.Args, arg)
		}
		return ref, nil
	case dto.Repeat != "":
		op := RepeatOp(dto.Repeat[0])
		if len(dto.Repeat) != 1 || (op != RepeatOptional && op != RepeatStar && op != RepeatPlus) {
			return nil, errors.Errorf("unknown repetition %q", dto.Repeat)
		}
		if dto.Of == nil {
			return nil, errors.New("repetition without operand")
		}
		inner, err := c.expr(*dto.Of)
		if err != nil {
			return nil, err
		}
		return &Repeat{Op: op, Expr: inner, Span: span}, nil
	case dto.Group != nil:
		group := &Group{Span: span}
		for _, s := range dto.Group {
			sym, err := c.symbol(s)
			if err != nil {
				return nil, errors.Wrap(err, "group")
			}
			group.Symbols = append(group.Symbols, sym)
		}
		return group, nil
	case dto.Lookahead:
		return &Lookaround{Kind: Lookahead, Span: span}, nil
	case dto.Lookbehind:
		return &Lookaround{Kind: Lookbehind, Span: span}, nil
	case dto.Error:
		return &ErrorRecovery{Span: span}, nil
	}
	return nil, errors.New("symbol has no kind")
}

func (c *converter) typeRef(node *yaml.Node) (TypeRef, error) {
	if node == nil || node.Kind == 0 || node.Tag == "!!null" {
		return nil, errors.New("missing type")
	}
	if node.Kind == yaml.ScalarNode {
		return ParseTypeRef(node.Value), nil
	}
	var dto typeRefDTO
	if err := node.Decode(&dto); err != nil {
		return nil, err
	}
	switch {
	case dto.Path != "":
		path := &TypePath{Path: dto.Path}
		for i := range dto.Args {
			arg, err := c.typeRef(&dto.Args[i])
			if err != nil {
				return nil, err
			}
			path.Args = append(path.Args, arg)
		}
		return path, nil
	case dto.Tuple != nil || dto.Unit:
		tuple := &TypeTuple{}
		for i := range dto.Tuple {
			elem, err := c.typeRef(&dto.Tuple[i])
			if err != nil {
				return nil, err
			}
			tuple.Elems = append(tuple.Elems, elem)
		}
		return tuple, nil
	case dto.Slice != nil:
		elem, err := c.typeRef(dto.Slice)
		if err != nil {
			return nil, err
		}
		return &TypeSlice{Elem: elem}, nil
	case dto.Ref != nil:
		elem, err := c.typeRef(dto.Ref)
		if err != nil {
			return nil, err
		}
		return &TypeReference{Lifetime: dto.Lifetime, Mut: dto.Mut, Elem: elem}, nil
	case dto.Symbol != nil:
		expr, err := c.expr(*dto.Symbol)
		if err != nil {
			return nil, err
		}
		return &TypeOfSymbol{Expr: expr}, nil
	case dto.Lifetime != "":
		return &TypeLifetime{Name: dto.Lifetime}, nil
	case dto.Raw != "":
		return &TypeRaw{Text: dto.Raw}, nil
	}
	return nil, errors.Errorf("line %d: type reference has no kind", node.Line)
}

// ParseTypeRef reads type text into a TypeRef. Shapes without a
// TypeRef counterpart are kept as raw text.
func ParseTypeRef(text string) TypeRef {
	t, err := rusttype.Parse(text)
	if err != nil {
		return &TypeRaw{Text: strings.TrimSpace(text)}
	}
	return fromRustType(t)
}

func fromRustType(t rusttype.Type) TypeRef {
	switch x := t.(type) {
	case *rusttype.Path:
		if len(x.Segments) == 0 {
			break
		}
		for _, s := range x.Segments[:len(x.Segments)-1] {
			if len(s.Args) > 0 {
				return &TypeRaw{Text: x.String()}
			}
		}
		path := &TypePath{Path: x.Name()}
		for _, a := range x.Last().Args {
			path.Args = append(path.Args, fromRustType(a))
		}
		return path
	case *rusttype.Tuple:
		tuple := &TypeTuple{}
		for _, e := range x.Elems {
			tuple.Elems = append(tuple.Elems, fromRustType(e))
		}
		return tuple
	case *rusttype.Slice:
		return &TypeSlice{Elem: fromRustType(x.Elem)}
	case *rusttype.Reference:
		return &TypeReference{Lifetime: x.Lifetime, Mut: x.Mut, Elem: fromRustType(x.Elem)}
	case *rusttype.Lifetime:
		return &TypeLifetime{Name: x.Name}
	}
	return &TypeRaw{Text: t.String()}
}
