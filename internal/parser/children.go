package parser

import "strings"

// parseChildren parses the body of open up to, but not including, its
// closing tag. Reaching the end of input first is fatal.
func (p *Parser) parseChildren(open *OpenTag) []Child {
	var children []Child
	for !p.atClosingTag() {
		if p.current.Type == TokenEOF {
			p.fail(p.current.Pos, "R100", open.Name.String()).
				WithSuggestion("Add </" + open.Name.String() + "> or close the tag with />")
			return nil
		}
		child := p.parseChild()
		if child == nil {
			return nil
		}
		children = append(children, child)
	}
	return children
}

// parseChild parses one nested element, expression block or text run.
func (p *Parser) parseChild() Child {
	switch p.current.Type {
	case TokenLAngle:
		if el := p.parseElement(); el != nil {
			return el
		}
		return nil
	case TokenLBrace:
		if expr := p.parseBlock(); expr != nil {
			return &RawBlock{Expr: *expr}
		}
		return nil
	default:
		return p.parseLiteral()
	}
}

// parseLiteral collects tokens up to the next '<', '{' or end of input.
// Spellings are joined with a single space wherever the source had
// whitespace between them.
func (p *Parser) parseLiteral() *Literal {
	lit := &Literal{Pos: p.current.Pos}
	var b strings.Builder
	for p.current.Type != TokenLAngle && p.current.Type != TokenLBrace && p.current.Type != TokenEOF {
		if b.Len() > 0 && p.current.SpaceBefore {
			b.WriteByte(' ')
		}
		b.WriteString(p.current.Literal)
		p.advance()
	}
	lit.Text = b.String()
	return lit
}
