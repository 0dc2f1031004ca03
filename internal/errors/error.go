package errors

import (
	"fmt"
	"os"
	"strings"
)

// Category groups error codes by the subsystem that reports them.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryValidation Category = "validation"
	CategoryRuleSet    Category = "ruleset"
	CategoryProtocol   Category = "protocol"
	CategoryCLI        Category = "cli"
)

// Location is a position in a rule set or config file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String formats the location as file:line or file:line:column.
func (l *Location) String() string {
	switch {
	case l == nil:
		return ""
	case l.Column > 0:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	default:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
}

// Error is a coded error. The code selects a registered template that
// supplies the category, message and default suggestion; Detail and
// Location describe one occurrence.
type Error struct {
	Code       string
	Category   Category
	Message    string
	Detail     string
	Location   *Location
	Context    []string // source lines around Location
	Suggestion string
	Wrapped    error

	// contextStart is the line number of Context[0] when it was read by
	// WithLocation.
	contextStart int
}

// New creates an Error from the template registered for code.
func New(code string) *Error {
	tmpl, ok := GetTemplate(code)
	if !ok {
		return &Error{Code: code, Message: "Unknown error"}
	}
	return &Error{
		Code:       code,
		Category:   tmpl.Category,
		Message:    tmpl.Message,
		Suggestion: tmpl.Suggestion,
	}
}

// Newf creates an uncoded Error.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...)}
}

// FromError returns err itself when it is an *Error and otherwise wraps
// it in a new Error with code.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if ve, ok := err.(*Error); ok {
		return ve
	}
	return New(code).Wrap(err)
}

// Error joins the code, message, detail and cause with ": ".
func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	head := e.Message
	if e.Code != "" {
		head = e.Code + ": " + e.Message
	}
	parts = append(parts, head)
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Wrapped != nil {
		parts = append(parts, e.Wrapped.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches any *Error target carrying the same non-empty code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithLocation sets the location and loads up to five lines around it
// when the file can be read.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.contextStart, e.Context = sourceLines(file, line, 2)
	return e
}

func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

func (e *Error) WithDetailf(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithContext replaces the source lines shown by Format.
func (e *Error) WithContext(lines []string) *Error {
	e.Context = lines
	e.contextStart = 0
	return e
}

// Wrap records err as the cause.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// sourceLines returns lines line-radius through line+radius of file and
// the number of the first one, or nil when the file cannot be read.
func sourceLines(file string, line, radius int) (int, []string) {
	if file == "" {
		return 0, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return 0, nil
	}
	all := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	from := max(line-radius, 1)
	to := min(line+radius, len(all))
	if from > to {
		return 0, nil
	}
	return from, all[from-1 : to]
}
