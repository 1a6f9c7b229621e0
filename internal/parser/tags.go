package parser

// parseElement parses an element at '<': its open tag, and unless it
// self-closes, its children and closing tag.
func (p *Parser) parseElement() *Element {
	open := p.parseOpenTag()
	if open == nil {
		return nil
	}
	el := &Element{Tag: *open}
	if open.SelfClosing {
		return el
	}

	el.Children = p.parseChildren(open)
	if p.failed {
		return nil
	}

	closing := p.parseClosingTag()
	if closing == nil {
		return nil
	}
	el.Closing = closing

	if closing.Name.String() != open.Name.String() {
		p.report(closing.Pos, "R001", open.Name.String(), closing.Name.String()).
			WithSuggestion("Close the element with </" + open.Name.String() + ">")
		p.tainted = true
	}
	return el
}

// parseOpenTag parses '<' name? attribute* '/'? '>'.
func (p *Parser) parseOpenTag() *OpenTag {
	tag := &OpenTag{Pos: p.current.Pos}
	if !p.expect(TokenLAngle) {
		return nil
	}

	tag.Name = p.parseName()
	if p.failed {
		return nil
	}

	tag.Attributes = p.parseAttributes()
	if p.failed {
		return nil
	}

	if p.current.Type == TokenSlash {
		tag.SelfClosing = true
		p.advance()
	}
	if !p.expect(TokenRAngle) {
		return nil
	}
	return tag
}

// parseClosingTag parses '<' '/' name? '>'. Attributes are not allowed.
func (p *Parser) parseClosingTag() *ClosingTag {
	tag := &ClosingTag{Pos: p.current.Pos}
	if !p.expect(TokenLAngle) || !p.expect(TokenSlash) {
		return nil
	}

	tag.Name = p.parseName()
	if p.failed {
		return nil
	}

	if p.current.Type == TokenIdent {
		p.fail(p.current.Pos, "R103", TokenRAngle.String(), p.current.describe()).
			WithSuggestion("Closing tags cannot have attributes")
		return nil
	}
	if !p.expect(TokenRAngle) {
		return nil
	}
	return tag
}

// parseName parses an optional dotted name. A missing name is the fragment
// sentinel and yields nil.
func (p *Parser) parseName() Name {
	if p.current.Type != TokenIdent {
		return nil
	}
	if !isIdentStart(p.current.Literal) {
		p.fail(p.current.Pos, "R103", "a tag name", p.current.describe())
		return nil
	}

	name := Name{p.current.Literal}
	p.advance()
	for p.current.Type == TokenDot {
		p.advance()
		if p.current.Type != TokenIdent || !isIdentStart(p.current.Literal) {
			p.fail(p.current.Pos, "R103", "a name after '.'", p.current.describe())
			return nil
		}
		name = append(name, p.current.Literal)
		p.advance()
	}
	return name
}
