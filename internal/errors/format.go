package errors

import (
	"fmt"
	"os"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

func red(text string) string    { return color(colorRed, text) }
func green(text string) string  { return color(colorGreen, text) }
func yellow(text string) string { return color(colorYellow, text) }
func cyan(text string) string   { return color(colorCyan, text) }
func white(text string) string  { return color(colorWhite, text) }
func gray(text string) string   { return color(colorGray, text) }
func bold(text string) string   { return color(colorBold, text) }

// Format returns a formatted error message for terminal display.
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(red(bold("ERROR ")))
		b.WriteString(white(bold(e.Code + ": ")))
		b.WriteString(white(e.Message))
	} else {
		b.WriteString(red(bold("ERROR: ")))
		b.WriteString(white(e.Message))
	}
	b.WriteString("\n")

	if e.Location != nil {
		b.WriteString("\n  ")
		b.WriteString(cyan(e.Location.String()))
		b.WriteString("\n")
	}

	if e.Detail != "" {
		b.WriteString("\n  ")
		b.WriteString(wrapIndent(e.Detail, "  "))
		b.WriteString("\n")
	}

	if e.Wrapped != nil {
		b.WriteString("\n  ")
		b.WriteString(gray("cause: " + e.Wrapped.Error()))
		b.WriteString("\n")
	}

	if e.Suggestion != "" {
		b.WriteString("\n  ")
		b.WriteString(yellow("hint: "))
		b.WriteString(wrapIndent(e.Suggestion, "  "))
		b.WriteString("\n")
	}

	if e.DocURL != "" {
		b.WriteString("\n  ")
		b.WriteString(gray("docs: " + e.DocURL))
		b.WriteString("\n")
	}

	return b.String()
}

// Print writes the formatted error to stderr.
func (e *Error) Print() {
	fmt.Fprint(os.Stderr, e.Format())
}

// wrapIndent keeps multi-line text aligned under the first line.
func wrapIndent(text, indent string) string {
	return strings.ReplaceAll(text, "\n", "\n"+indent)
}
