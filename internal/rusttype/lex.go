package rusttype

import (
	"fmt"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceToken = iota
	commentToken
	pathSepToken
	arrowToken
	lifetimeToken
	identifierToken
	numberToken
	stringToken
	punctToken
)

var whitespaceMatcher = parsly.NewToken(whitespaceToken, "Whitespace", matcher.NewWhiteSpace())
var lineCommentMatcher = parsly.NewToken(commentToken, "LineComment", matcher.NewSeqBlock("//", "\n"))
var blockCommentMatcher = parsly.NewToken(commentToken, "BlockComment", matcher.NewSeqBlock("/*", "*/"))
var pathSepMatcher = parsly.NewToken(pathSepToken, "::", matcher.NewFragment("::"))
var arrowMatcher = parsly.NewToken(arrowToken, "->", matcher.NewFragment("->"))
var lifetimeMatcher = parsly.NewToken(lifetimeToken, "Lifetime", &lifetimeMatch{})
var identifierMatcher = parsly.NewToken(identifierToken, "Identifier", &identifierMatch{})
var numberMatcher = parsly.NewToken(numberToken, "Number", &numberMatch{})
var stringMatcher = parsly.NewToken(stringToken, "String", matcher.NewBlock('"', '"', '\\'))
var punctMatcher = parsly.NewToken(punctToken, "Punct", &punctMatch{})

// token is one lexeme of host type or item text. Multi-character
// operators other than `::` and `->` are split into single bytes so that
// `>>` closes two generic lists.
type token struct {
	code   int
	text   string
	offset int
}

func (t token) is(text string) bool {
	return (t.code == punctToken || t.code == pathSepToken || t.code == arrowToken || t.code == identifierToken) && t.text == text
}

func tokenize(text string) ([]token, error) {
	cursor := parsly.NewCursor("", []byte(text), 0)
	var out []token
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchAfterOptional(whitespaceMatcher,
			lineCommentMatcher,
			blockCommentMatcher,
			pathSepMatcher,
			arrowMatcher,
			lifetimeMatcher,
			identifierMatcher,
			numberMatcher,
			stringMatcher,
			punctMatcher,
		)
		switch matched.Code {
		case parsly.EOF:
			return out, nil
		case parsly.Invalid:
			return nil, fmt.Errorf("unexpected character at %d: %w", cursor.Pos, cursor.NewError(punctMatcher))
		case commentToken:
			continue
		default:
			out = append(out, token{code: matched.Code, text: matched.Text(cursor), offset: matched.Offset})
		}
	}
	return out, nil
}

type identifierMatch struct{}

func (i *identifierMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos >= cursor.InputSize {
		return 0
	}
	pos := cursor.Pos
	// raw identifiers
	if pos+1 < cursor.InputSize && cursor.Input[pos] == 'r' && cursor.Input[pos+1] == '#' {
		pos += 2
	}
	if pos >= cursor.InputSize || !isIdentifierStart(cursor.Input[pos]) {
		return 0
	}
	pos++
	for pos < cursor.InputSize && isIdentifierPart(cursor.Input[pos]) {
		pos++
	}
	return pos - cursor.Pos
}

type lifetimeMatch struct{}

func (l *lifetimeMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos+1 >= cursor.InputSize || cursor.Input[cursor.Pos] != '\'' {
		return 0
	}
	if !isIdentifierStart(cursor.Input[cursor.Pos+1]) {
		return 0
	}
	pos := cursor.Pos + 2
	for pos < cursor.InputSize && isIdentifierPart(cursor.Input[pos]) {
		pos++
	}
	// 'a' is a char literal, not a lifetime
	if pos < cursor.InputSize && cursor.Input[pos] == '\'' {
		return 0
	}
	return pos - cursor.Pos
}

type numberMatch struct{}

func (n *numberMatch) Match(cursor *parsly.Cursor) int {
	pos := cursor.Pos
	for pos < cursor.InputSize && (isDigit(cursor.Input[pos]) || cursor.Input[pos] == '_') {
		pos++
	}
	if pos == cursor.Pos || cursor.Input[cursor.Pos] == '_' {
		return 0
	}
	for pos < cursor.InputSize && isIdentifierPart(cursor.Input[pos]) {
		pos++
	}
	return pos - cursor.Pos
}

type punctMatch struct{}

func (p *punctMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos >= cursor.InputSize {
		return 0
	}
	switch cursor.Input[cursor.Pos] {
	case '<', '>', '(', ')', '[', ']', '{', '}', ',', ';', ':', '&', '*', '!', '=', '+', '?', '#', '.', '-', '|', '\'', '/', '@', '$', '%', '^', '~':
		return 1
	}
	return 0
}

func isIdentifierStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' || b >= 0x80
}

func isIdentifierPart(b byte) bool {
	return isIdentifierStart(b) || isDigit(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
