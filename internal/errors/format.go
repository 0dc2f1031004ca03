package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	colorEnabled = true

	errorLabel = color.New(color.FgRed, color.Bold)
	codeLabel  = color.New(color.FgWhite, color.Bold)
	locLabel   = color.New(color.FgCyan)
	gutter     = color.New(color.FgHiBlack)
	marker     = color.New(color.FgRed)
)

// DisableColors turns off colored output for Format and Fprint. The
// fatih/color NO_COLOR and terminal detection apply as well.
func DisableColors() {
	colorEnabled = false
}

// EnableColors turns colored output back on.
func EnableColors() {
	colorEnabled = true
}

func paint(c *color.Color, s string) string {
	if !colorEnabled {
		return s
	}
	return c.Sprint(s)
}

// Format renders the error for a terminal: a header line, the location
// with surrounding source lines, the detail, the cause and the hint.
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		fmt.Fprintf(&b, "%s%s", paint(errorLabel, "ERROR "), paint(codeLabel, e.Code+": "))
	} else {
		b.WriteString(paint(errorLabel, "ERROR: "))
	}
	b.WriteString(e.Message)
	b.WriteString("\n\n")

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s\n\n", paint(locLabel, e.Location.String()))
		if len(e.Context) > 0 {
			e.writeSnippet(&b)
			b.WriteString("\n")
		}
	}

	if lines := wrapText(e.Detail, 70); len(lines) > 0 {
		for _, line := range lines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}

	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  %s%s\n\n", paint(gutter, "Cause: "), e.Wrapped)
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n", paint(locLabel, "Hint: "), e.Suggestion)
	}

	return b.String()
}

// writeSnippet prints the numbered context lines with a caret under the
// error column. Lines set by WithContext are centred on the error line.
func (e *Error) writeSnippet(b *strings.Builder) {
	first := e.contextStart
	if first == 0 {
		first = max(e.Location.Line-len(e.Context)/2, 1)
	}
	bar := paint(gutter, " │ ")

	for i, line := range e.Context {
		n := first + i
		if n != e.Location.Line {
			fmt.Fprintf(b, "    %4d%s%s\n", n, bar, line)
			continue
		}
		fmt.Fprintf(b, "  %s%4d%s%s\n", paint(marker, "→ "), n, bar, line)
		if e.Location.Column > 0 {
			fmt.Fprintf(b, "       %s%s%s\n",
				paint(gutter, "│ "),
				strings.Repeat(" ", e.Location.Column-1),
				paint(marker, "^"))
		}
	}
}

// FormatCompact returns "file:line: " followed by Error().
func (e *Error) FormatCompact() string {
	if e.Location == nil {
		return e.Error()
	}
	return e.Location.String() + ": " + e.Error()
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type jsonError struct {
	Code       string        `json:"code,omitempty"`
	Category   Category      `json:"category"`
	Message    string        `json:"message"`
	Detail     string        `json:"detail,omitempty"`
	Location   *jsonLocation `json:"location,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// FormatJSON returns the error as a JSON object.
func (e *Error) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
	}
	if l := e.Location; l != nil {
		out.Location = &jsonLocation{File: l.File, Line: l.Line, Column: l.Column}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Error())
	}
	return string(data)
}

// wrapText splits text into lines of at most width bytes, breaking at
// spaces. A single word longer than width gets its own line.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}

// Fprint writes err to w: *Error values in the Format layout, anything
// else on one line.
func Fprint(w io.Writer, err error) {
	if ve, ok := err.(*Error); ok {
		fmt.Fprint(w, ve.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", paint(errorLabel, "ERROR:"), err)
}
