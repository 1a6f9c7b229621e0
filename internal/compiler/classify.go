package compiler

import (
	"unicode"
	"unicode/utf8"

	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/internal/parser"
)

// fragmentName is the built-in component that behaves like <>.
const fragmentName = "Fragment"

// Classify returns the kind of an element named name. A missing name is a
// fragment. Otherwise the first rune of the last segment decides: if
// upper-casing leaves it unchanged the element is custom.
func Classify(name parser.Name) parser.ElementKind {
	if name.IsFragment() {
		return parser.Fragment
	}
	r, size := utf8.DecodeRuneInString(name.Local())
	if size == 0 {
		return parser.Simple
	}
	if unicode.ToUpper(r) == r {
		return parser.Custom
	}
	return parser.Simple
}

// Analyze classifies every element of res and drops the attributes its
// kind does not allow, reporting each as a warning. Elements that are
// already classified keep their kind.
func Analyze(res *parser.Result) {
	src := source{filename: res.Filename, src: res.Source}
	parser.Walk(res.Roots, func(el *parser.Element) bool {
		if el.Kind == parser.Unclassified {
			el.Kind = Classify(el.Tag.Name)
		}
		for _, e := range validateAttributes(src, el) {
			res.Diagnostics.Add(e)
		}
		return true
	})
}

func isFragment(el *parser.Element) bool {
	return el.Kind == parser.Fragment ||
		(el.Kind == parser.Custom && el.Tag.Name.String() == fragmentName)
}

func validateAttributes(src source, el *parser.Element) []*errors.RsxError {
	attrs := el.Tag.Attributes
	if attrs.Len() == 0 {
		return nil
	}

	if isFragment(el) {
		first := attrs.All()[0]
		for _, a := range attrs.All() {
			attrs.Remove(a.Key.String())
		}
		return []*errors.RsxError{src.diag(first.Pos, "R005")}
	}

	var diags []*errors.RsxError
	for _, a := range attrs.All() {
		switch {
		case el.Kind == parser.Custom && len(a.Key) > 1:
			diags = append(diags, src.diag(a.Pos, "R003", a.Key.Underscored()))
			attrs.Remove(a.Key.String())
		case el.Kind == parser.Simple && a.Punned() && len(a.Key) > 1:
			diags = append(diags, src.diag(a.Pos, "R004", a.Key.String()).
				WithSuggestion("Write "+a.Key.String()+"={"+a.Key.Underscored()+"}"))
			attrs.Remove(a.Key.String())
		}
	}
	return diags
}

// source locates diagnostics in the template being compiled.
type source struct {
	filename string
	src      []byte
}

func (s source) diag(pos parser.Pos, code string, args ...any) *errors.RsxError {
	return errors.New(code, args...).WithSource(s.filename, s.src, pos.Line, pos.Column)
}
