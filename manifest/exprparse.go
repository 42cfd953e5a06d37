package manifest

import (
	"strings"
	"unicode"

	"github.com/tolaworks/caps/errors"
	"github.com/tolaworks/caps/query"
)

// ParseExpression parses a requirement expression such as
// "Parsed & (Validated | Signed) & !Revoked" into a query AST.
//
// Grammar, loosest binding first:
//
//	expr   := term ('|' term)*
//	term   := factor ('&' factor)*
//	factor := '!' factor | '(' expr ')' | name
//
// Parentheses are preserved as group nodes so the evaluated trace renders
// the user's own bracketing.
func ParseExpression(input string) (query.Node, error) {
	p := &exprParser{input: input}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, errors.Newf("unexpected %q at offset %d in expression %q", p.input[p.pos], p.pos, p.input)
	}
	return node, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() (byte, bool) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

func (p *exprParser) parseOr() (query.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		c, ok := p.peek()
		if !ok || c != '|' {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = query.OrNode{Left: left, Right: right}
	}
}

func (p *exprParser) parseAnd() (query.Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		c, ok := p.peek()
		if !ok || c != '&' {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = query.AndNode{Left: left, Right: right}
	}
}

func (p *exprParser) parseFactor() (query.Node, error) {
	c, ok := p.peek()
	if !ok {
		return nil, errors.Newf("expression %q ends where a capability name was expected", p.input)
	}
	switch {
	case c == '!':
		p.pos++
		inner, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return query.NotNode{Inner: inner}, nil
	case c == '(':
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing != ')' {
			return nil, errors.Newf("unclosed parenthesis in expression %q", p.input)
		}
		p.pos++
		return query.GroupNode{Inner: inner}, nil
	default:
		return p.parseName()
	}
}

func isNameRune(c byte) bool {
	return unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) || c == '_'
}

func (p *exprParser) parseName() (query.Node, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) && isNameRune(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, errors.Newf("expected capability name at offset %d in expression %q", p.pos, p.input)
	}
	name := strings.TrimSpace(p.input[start:p.pos])
	return query.NameNode{Name: name}, nil
}
