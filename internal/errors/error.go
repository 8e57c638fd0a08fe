package errors

import "fmt"

// Category groups errors by the subsystem that raised them.
type Category string

const (
	CategoryConfig Category = "config"
	CategoryBuild  Category = "build"
	CategoryDev    Category = "dev"
	CategoryDeploy Category = "deploy"
	CategoryCLI    Category = "cli"
)

// Location is a position in a source document (entry HTML, script, config).
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as file:line[:column].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a structured husk error with code, suggestion, and documentation.
type Error struct {
	// Code is the registered identifier (e.g. "E101").
	Code string

	// Category is the raising subsystem.
	Category Category

	// Message is a short description.
	Message string

	// Detail is a longer explanation, usually instance-specific.
	Detail string

	// Location points at the offending source position, when known.
	Location *Location

	// Suggestion is a hint on how to fix the problem.
	Suggestion string

	// DocURL links to documentation for this code.
	DocURL string

	// Wrapped is the underlying cause, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithLocation attaches a source position.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	return e
}

// WithDetail attaches an instance-specific explanation.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithSuggestion attaches a fix hint.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Wrap attaches the underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered code. Unregistered codes still
// produce a usable error so callers never have to nil-check.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates an uncoded Error with a formatted message.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error under a registered code. A *Error passes
// through unchanged.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if he, ok := err.(*Error); ok {
		return he
	}
	return New(code).Wrap(err)
}
