package parser

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

var (
	errUnterminatedBlock  = errors.New("unterminated expression block")
	errUnterminatedString = errors.New("unterminated string literal")
)

// Lexer splits template source into tokens. Whitespace is never a token of
// its own; it is recorded on the token that follows it.
//
// Expression blocks and quoted strings are not tokenized. The parser hands
// them back to the lexer with ReadBlock and ReadString, which scan the raw
// source and reposition the lexer after the closing delimiter.
type Lexer struct {
	src  []byte
	pos  Pos
	done bool
}

// NewLexer creates a Lexer over src.
func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src, pos: Pos{Line: 1, Column: 1}}
}

// Source returns the text between two byte offsets.
func (l *Lexer) Source(start, end int) string {
	return string(l.src[start:end])
}

func (l *Lexer) peekRune() (rune, int) {
	if l.pos.Offset >= len(l.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRune(l.src[l.pos.Offset:])
}

func (l *Lexer) advance() rune {
	r, size := l.peekRune()
	if size == 0 {
		return r
	}
	l.pos.Offset += size
	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 1
	} else {
		l.pos.Column++
	}
	return r
}

// Next returns the next token. Once the input is exhausted it keeps
// returning TokenEOF.
func (l *Lexer) Next() Token {
	space := false
	for {
		r, size := l.peekRune()
		if size == 0 || !unicode.IsSpace(r) {
			break
		}
		l.advance()
		space = true
	}

	start := l.pos
	r, size := l.peekRune()
	if size == 0 {
		return Token{Type: TokenEOF, Pos: start, End: start.Offset, SpaceBefore: space}
	}

	if isWordRune(r) {
		for {
			r, size := l.peekRune()
			if size == 0 || !isWordRune(r) {
				break
			}
			l.advance()
		}
		return l.token(TokenIdent, start, space)
	}

	l.advance()
	typ := TokenOther
	switch r {
	case '<':
		typ = TokenLAngle
	case '>':
		typ = TokenRAngle
	case '/':
		typ = TokenSlash
	case '=':
		typ = TokenEquals
	case '.':
		typ = TokenDot
	case '-':
		typ = TokenDash
	case '{':
		typ = TokenLBrace
	case '}':
		typ = TokenRBrace
	case '"':
		typ = TokenQuote
	}
	return l.token(typ, start, space)
}

func (l *Lexer) token(typ TokenType, start Pos, space bool) Token {
	return Token{
		Type:        typ,
		Literal:     string(l.src[start.Offset:l.pos.Offset]),
		Pos:         start,
		End:         l.pos.Offset,
		SpaceBefore: space,
	}
}

// seek repositions the lexer.
func (l *Lexer) seek(p Pos) {
	l.pos = p
}

// ReadBlock scans a brace-delimited block starting at the '{' located at
// open. Nested braces must balance; braces inside string, rune and raw
// string literals are ignored. It returns the text between the outer
// braces and leaves the lexer just past the closing brace.
func (l *Lexer) ReadBlock(open Pos) (string, error) {
	l.seek(open)
	if r := l.advance(); r != '{' {
		return "", fmt.Errorf("expected '{' at %s", open)
	}
	bodyStart := l.pos.Offset
	depth := 1
	for {
		r, size := l.peekRune()
		if size == 0 {
			return "", errUnterminatedBlock
		}
		switch r {
		case '{':
			depth++
			l.advance()
		case '}':
			depth--
			if depth == 0 {
				body := string(l.src[bodyStart:l.pos.Offset])
				l.advance()
				return body, nil
			}
			l.advance()
		case '"', '\'', '`':
			if err := l.skipQuoted(r); err != nil {
				return "", err
			}
		default:
			l.advance()
		}
	}
}

// ReadString scans a double quoted string starting at the quote located at
// open and returns its source spelling, quotes included.
func (l *Lexer) ReadString(open Pos) (string, error) {
	l.seek(open)
	if r, _ := l.peekRune(); r != '"' {
		return "", fmt.Errorf("expected '\"' at %s", open)
	}
	if err := l.skipQuoted('"'); err != nil {
		return "", err
	}
	return string(l.src[open.Offset:l.pos.Offset]), nil
}

// skipQuoted consumes a literal delimited by quote. Backslash escapes are
// honoured except inside backtick strings.
func (l *Lexer) skipQuoted(quote rune) error {
	l.advance()
	for {
		r, size := l.peekRune()
		if size == 0 {
			return errUnterminatedString
		}
		l.advance()
		switch {
		case r == quote:
			return nil
		case r == '\\' && quote != '`':
			if _, size := l.peekRune(); size == 0 {
				return errUnterminatedString
			}
			l.advance()
		case r == '\n' && quote != '`':
			return errUnterminatedString
		}
	}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdentStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r)
}
