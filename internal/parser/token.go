package parser

import "fmt"

// TokenType identifies the kind of a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenLAngle // <
	TokenRAngle // >
	TokenSlash  // /
	TokenEquals // =
	TokenDot    // .
	TokenDash   // -
	TokenLBrace // {
	TokenRBrace // }
	TokenQuote  // "
	TokenOther  // any other single rune
)

var tokenNames = [...]string{
	TokenEOF:    "end of input",
	TokenIdent:  "identifier",
	TokenLAngle: "'<'",
	TokenRAngle: "'>'",
	TokenSlash:  "'/'",
	TokenEquals: "'='",
	TokenDot:    "'.'",
	TokenDash:   "'-'",
	TokenLBrace: "'{'",
	TokenRBrace: "'}'",
	TokenQuote:  "'\"'",
	TokenOther:  "character",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Pos is a position in the template source. Line and Column are 1-based;
// Column counts runes.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a lexical token. SpaceBefore records whether any whitespace
// separated it from the previous token, which text runs need in order to
// rebuild their spacing.
type Token struct {
	Type        TokenType
	Literal     string
	Pos         Pos
	End         int
	SpaceBefore bool
}

// describe renders a token for "found ..." diagnostics.
func (t Token) describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenIdent:
		return fmt.Sprintf("%q", t.Literal)
	default:
		return fmt.Sprintf("'%s'", t.Literal)
	}
}
