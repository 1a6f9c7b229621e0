package errors

import (
	stderrors "errors"
	"sort"
	"strings"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// List collects the diagnostics produced while compiling one template.
// Warnings and errors share the list; HasErrors tells them apart.
type List struct {
	items []*RsxError
}

// Add appends a diagnostic. Nil values are ignored.
func (l *List) Add(e *RsxError) {
	if e == nil {
		return
	}
	l.items = append(l.items, e)
}

// Items returns the diagnostics sorted by source position. Diagnostics
// without a location keep their insertion order after located ones.
func (l *List) Items() []*RsxError {
	out := make([]*RsxError, len(l.items))
	copy(out, l.items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Location, out[j].Location
		switch {
		case a == nil || b == nil:
			return a != nil && b == nil
		case a.Line != b.Line:
			return a.Line < b.Line
		default:
			return a.Column < b.Column
		}
	})
	return out
}

// Len returns the number of diagnostics.
func (l *List) Len() int { return len(l.items) }

// HasErrors reports whether any diagnostic is fatal.
func (l *List) HasErrors() bool {
	for _, e := range l.items {
		if !e.IsWarning() {
			return true
		}
	}
	return false
}

// Warnings returns the warning-class diagnostics in source order.
func (l *List) Warnings() []*RsxError {
	var out []*RsxError
	for _, e := range l.Items() {
		if e.IsWarning() {
			out = append(out, e)
		}
	}
	return out
}

// Err returns the first fatal diagnostic, or nil.
func (l *List) Err() error {
	for _, e := range l.Items() {
		if !e.IsWarning() {
			return e
		}
	}
	return nil
}

// Error joins every diagnostic on its own line.
func (l *List) Error() string {
	items := l.Items()
	lines := make([]string, len(items))
	for i, e := range items {
		lines[i] = e.FormatCompact()
	}
	return strings.Join(lines, "\n")
}
