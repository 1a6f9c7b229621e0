package parser

import (
	"strings"

	"github.com/vango-dev/rsx/internal/errors"
)

// Result is the outcome of parsing one template.
type Result struct {
	// Roots are the top-level children in source order.
	Roots []Child

	// Diagnostics holds every warning reported while parsing.
	Diagnostics *errors.List

	// Filename and Source identify the template in later diagnostics.
	Filename string
	Source   []byte

	tainted bool
}

// Tainted reports whether a closing tag did not match its opening tag.
// The tree is still complete, but it should not be used to produce output
// unless the caller explicitly accepts it.
func (r *Result) Tainted() bool {
	return r.tainted
}

// Parse parses a template. Warnings are collected in the result; the first
// structural error stops parsing and is returned as an *errors.List that
// also carries the warnings seen so far.
func Parse(filename string, src []byte) (*Result, error) {
	p := NewParser(filename, src)
	roots := p.parseTemplate()
	if p.failed {
		return nil, p.diags
	}
	return &Result{
		Roots:       roots,
		Diagnostics: p.diags,
		Filename:    filename,
		Source:      src,
		tainted:     p.tainted,
	}, nil
}

// Parser is a recursive descent parser over a Lexer with one token of
// lookahead.
type Parser struct {
	lexer    *Lexer
	filename string
	src      []byte
	current  Token
	peek     Token
	diags    *errors.List
	failed   bool
	tainted  bool
}

// NewParser creates a Parser for src. filename is only used in diagnostics.
func NewParser(filename string, src []byte) *Parser {
	p := &Parser{
		lexer:    NewLexer(src),
		filename: filename,
		src:      src,
		diags:    &errors.List{},
	}
	p.resync()
	return p
}

// Diagnostics returns the diagnostics reported so far.
func (p *Parser) Diagnostics() *errors.List {
	return p.diags
}

func (p *Parser) advance() {
	p.current = p.peek
	p.peek = p.lexer.Next()
}

// resync refills the lookahead after the lexer was moved by ReadBlock or
// ReadString.
func (p *Parser) resync() {
	p.current = p.lexer.Next()
	p.peek = p.lexer.Next()
}

// atClosingTag reports whether the lookahead is '<' followed by '/'.
// Nothing is consumed.
func (p *Parser) atClosingTag() bool {
	return p.current.Type == TokenLAngle && p.peek.Type == TokenSlash
}

// report records a diagnostic at pos.
func (p *Parser) report(pos Pos, code string, args ...any) *errors.RsxError {
	e := errors.New(code, args...).WithSource(p.filename, p.src, pos.Line, pos.Column)
	p.diags.Add(e)
	return e
}

// fail records a fatal diagnostic. Every parse function returns nil once
// the parser has failed.
func (p *Parser) fail(pos Pos, code string, args ...any) *errors.RsxError {
	p.failed = true
	return p.report(pos, code, args...)
}

// expect consumes a token of type typ or fails.
func (p *Parser) expect(typ TokenType) bool {
	if p.current.Type == typ {
		p.advance()
		return true
	}
	p.fail(p.current.Pos, "R103", typ.String(), p.current.describe())
	return false
}

// parseTemplate parses top-level children until the end of input.
func (p *Parser) parseTemplate() []Child {
	var roots []Child
	for p.current.Type != TokenEOF {
		if p.atClosingTag() {
			p.fail(p.current.Pos, "R103", "an element or text", "a closing tag").
				WithSuggestion("Remove the closing tag or add the element it belongs to")
			return nil
		}
		child := p.parseChild()
		if child == nil {
			return nil
		}
		roots = append(roots, child)
	}
	return roots
}

// parseBlock parses {expression} at the current token.
func (p *Parser) parseBlock() *Expr {
	pos := p.current.Pos
	body, err := p.lexer.ReadBlock(pos)
	if err != nil {
		p.fail(pos, "R102").Wrap(err)
		return nil
	}
	p.resync()
	return &Expr{Src: strings.TrimSpace(body), Pos: pos}
}
