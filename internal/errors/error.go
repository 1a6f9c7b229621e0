package errors

import (
	"bufio"
	"bytes"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryCompile Category = "compile"
	CategoryRender  Category = "render"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
	CategoryServer  Category = "server"
)

// Severity separates diagnostics that stop compilation from those that
// are only reported.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the severity label used in formatted output.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Location represents a source code location.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// RsxError is a structured error with source location, suggestions, and documentation.
type RsxError struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the error type (compile, render, etc.).
	Category Category

	// Severity tells whether compilation can continue past this error.
	Severity Severity

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the source code location where the error occurred.
	Location *Location

	// Context contains surrounding source code lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is code showing the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *RsxError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RsxError) Unwrap() error {
	return e.Wrapped
}

// IsWarning reports whether the error is a warning-class diagnostic.
func (e *RsxError) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// WithSource adds source location to the error, taking context lines from
// an in-memory source instead of the file system.
func (e *RsxError) WithSource(file string, src []byte, line, column int) *RsxError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = contextLines(bufio.NewScanner(bytes.NewReader(src)), line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *RsxError) WithSuggestion(s string) *RsxError {
	e.Suggestion = s
	return e
}

// WithExample adds a code example to the error.
func (e *RsxError) WithExample(ex string) *RsxError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *RsxError) WithDetail(d string) *RsxError {
	e.Detail = d
	return e
}

// WithContext adds custom context lines to the error.
func (e *RsxError) WithContext(lines []string) *RsxError {
	e.Context = lines
	return e
}

// Wrap wraps another error.
func (e *RsxError) Wrap(err error) *RsxError {
	e.Wrapped = err
	return e
}


// contextLines collects the lines around targetLine. The target sits in
// the middle of the window unless the source starts too close to it.
func contextLines(scanner *bufio.Scanner, targetLine, contextSize int) []string {
	var lines []string
	lineNum := 0
	startLine := targetLine - contextSize/2
	if startLine < 1 {
		startLine = 1
	}
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates an RsxError from a registered error code. Registered
// messages may contain fmt verbs, filled from args.
func New(code string, args ...any) *RsxError {
	template, ok := registry[code]
	if !ok {
		return &RsxError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	msg := template.Message
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &RsxError{
		Code:     code,
		Category: template.Category,
		Severity: template.Severity,
		Message:  msg,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new RsxError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *RsxError {
	return &RsxError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an RsxError.
func FromError(err error, code string) *RsxError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*RsxError); ok {
		return re
	}
	return New(code).Wrap(err)
}

