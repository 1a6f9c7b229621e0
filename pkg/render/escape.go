package render

import (
	"io"
	"strings"
)

// escapeTable maps the five reserved markup characters to their entities.
// All of them are ASCII, so scanning bytes never splits a code point.
var escapeTable = [256]string{
	'>':  "&gt;",
	'<':  "&lt;",
	'"':  "&quot;",
	'&':  "&amp;",
	'\'': "&apos;",
}

// EscapeString escapes text for safe inclusion in markup.
// It converts exactly > < " & ' to entities and copies every other byte,
// including invalid UTF-8, unchanged.
func EscapeString(s string) string {
	var buf strings.Builder
	_ = EscapeHTML(&buf, s)
	return buf.String()
}

// EscapeHTML writes the escaped form of s to w. Unescaped runs are written
// in one call so the common case costs a single write.
func EscapeHTML(w io.Writer, s string) error {
	sw, ok := w.(io.StringWriter)
	if !ok {
		sw = stringWriter{w}
	}

	last := 0
	for i := 0; i < len(s); i++ {
		entity := escapeTable[s[i]]
		if entity == "" {
			continue
		}
		if last < i {
			if _, err := sw.WriteString(s[last:i]); err != nil {
				return err
			}
		}
		if _, err := sw.WriteString(entity); err != nil {
			return err
		}
		last = i + 1
	}
	if last < len(s) {
		if _, err := sw.WriteString(s[last:]); err != nil {
			return err
		}
	}
	return nil
}

type stringWriter struct {
	w io.Writer
}

func (s stringWriter) WriteString(str string) (int, error) {
	return s.w.Write([]byte(str))
}
