// Package parser turns rsx template source into an element tree.
//
// The grammar:
//
//	element   = "<" name? attribute* "/>" | "<" name? attribute* ">" child* "</" name? ">"
//	name      = ident ("." ident)*
//	attribute = key | key "=" "{" expr "}" | key "=" string
//	key       = ident ("-" ident)*
//	child     = element | "{" expr "}" | text
//
// Expressions are captured verbatim with balanced braces and are not
// interpreted here. Text runs are rebuilt from their tokens, with every
// stretch of whitespace between two tokens collapsed to a single space.
//
// Mismatched closing tags and repeated attributes are reported as warnings
// and parsing continues. A missing closing tag, an unterminated expression
// or a malformed tag stops parsing with an error.
package parser
