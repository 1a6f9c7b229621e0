package parser

import "fmt"

// parseAttributes parses attributes until a token that cannot start one.
// A repeated key is reported and dropped; the first definition wins.
func (p *Parser) parseAttributes() *AttributeSet {
	set := NewAttributeSet()
	for p.current.Type == TokenIdent {
		attr := p.parseAttribute()
		if attr == nil {
			return nil
		}
		if !set.Insert(attr) {
			p.report(attr.Pos, "R002", attr.Key.String())
		}
	}
	return set
}

// parseAttribute parses key, key={expr} or key="text".
func (p *Parser) parseAttribute() *Attribute {
	attr := &Attribute{Pos: p.current.Pos}
	attr.Key = p.parseAttributeKey()
	if attr.Key == nil {
		return nil
	}

	if p.current.Type != TokenEquals {
		return attr
	}
	p.advance()

	switch p.current.Type {
	case TokenLBrace:
		attr.Value = p.parseBlock()
	case TokenQuote:
		attr.Value = p.parseQuoted()
	default:
		p.fail(p.current.Pos, "R101",
			fmt.Sprintf("expected '{' or '\"' after %s=, found %s", attr.Key, p.current.describe()))
	}
	if attr.Value == nil {
		return nil
	}
	return attr
}

// parseAttributeKey parses ident ('-' ident)*.
func (p *Parser) parseAttributeKey() AttributeKey {
	if !isIdentStart(p.current.Literal) {
		p.fail(p.current.Pos, "R101", fmt.Sprintf("attribute names must start with a letter, found %s", p.current.describe()))
		return nil
	}
	key := AttributeKey{p.current.Literal}
	p.advance()
	for p.current.Type == TokenDash {
		p.advance()
		if p.current.Type != TokenIdent {
			p.fail(p.current.Pos, "R101", fmt.Sprintf("expected a name after %s-, found %s", key, p.current.describe()))
			return nil
		}
		key = append(key, p.current.Literal)
		p.advance()
	}
	return key
}

// parseQuoted parses a "text" attribute value.
func (p *Parser) parseQuoted() *Expr {
	pos := p.current.Pos
	lit, err := p.lexer.ReadString(pos)
	if err != nil {
		p.fail(pos, "R101", "unterminated string value").Wrap(err)
		return nil
	}
	p.resync()
	return &Expr{Src: lit, Pos: pos, Quoted: true}
}
