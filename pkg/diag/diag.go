// Package diag implements structured diagnostics: errors and warnings tied
// to a source span, accumulated in a Collector and rendered to a terminal
// with source-line context and coloured severity markers.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/home-lang/home/pkg/util/source"
	"github.com/home-lang/home/pkg/util/termio"
)

// Severity classifies a Diagnostic.
type Severity int

// Severities, in the order they sort within a single source position.
const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

// Code is a stable diagnostic identifier (e.g. "H0203"), printed in
// brackets after the severity label. No longer explanation is kept for it.
type Code string

// Diagnostic is one reported error, warning or note.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	File     *source.File
	Span     source.Span
	Notes    []string
}

// Collector accumulates diagnostics in the order they are reported.
// Sort puts them in filename and source-position order; pkg/scheduler
// sorts each module's diagnostics that way and merges the modules in
// declaration order.
type Collector struct {
	items []Diagnostic
}

// NewCollector constructs an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report appends a diagnostic.
func (c *Collector) Report(d Diagnostic) {
	c.items = append(c.items, d)
}

// Errorf reports an error-severity diagnostic with a formatted message.
func (c *Collector) Errorf(file *source.File, span source.Span, code Code, format string, args ...any) {
	c.Report(Diagnostic{SeverityError, code, fmt.Sprintf(format, args...), file, span, nil})
}

// Warnf reports a warning-severity diagnostic with a formatted message.
func (c *Collector) Warnf(file *source.File, span source.Span, code Code, format string, args ...any) {
	c.Report(Diagnostic{SeverityWarning, code, fmt.Sprintf(format, args...), file, span, nil})
}

// HasErrors reports whether any error-severity diagnostic was collected.
func (c *Collector) HasErrors() bool {
	for _, d := range c.items {
		if d.Severity == SeverityError {
			return true
		}
	}

	return false
}

// Items returns all collected diagnostics in insertion order.
func (c *Collector) Items() []Diagnostic {
	return c.items
}

// Sort orders diagnostics by filename, then by span start, then by
// severity, stabilising
// output when modules were compiled concurrently by pkg/scheduler.
func (c *Collector) Sort() {
	sort.SliceStable(c.items, func(i, j int) bool {
		a, b := c.items[i], c.items[j]
		if a.File != b.File {
			return a.File.Filename() < b.File.Filename()
		}

		if a.Span.Start() != b.Span.Start() {
			return a.Span.Start() < b.Span.Start()
		}

		return a.Severity < b.Severity
	})
}

// Count returns the number of diagnostics of the given severity.
func (c *Collector) Count(sev Severity) int {
	n := 0

	for _, d := range c.items {
		if d.Severity == sev {
			n++
		}
	}

	return n
}

func (s Severity) label() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

func (s Severity) colour() uint {
	switch s {
	case SeverityError:
		return termio.TERM_RED
	case SeverityWarning:
		return termio.TERM_YELLOW
	default:
		return termio.TERM_CYAN
	}
}

// Render formats a single diagnostic as a human-readable, optionally
// coloured, multi-line report with a source-line excerpt and a caret
// underneath the offending span.
func Render(d Diagnostic, colour bool) string {
	var b strings.Builder

	label := d.Severity.label()

	if colour {
		esc := termio.NewAnsiEscape().BoldAnsiEscape().FgColour(d.Severity.colour()).Build()
		reset := termio.ResetAnsiEscape().Build()

		fmt.Fprintf(&b, "%s%s[%s]%s: %s\n", esc, label, d.Code, reset, d.Message)
	} else {
		fmt.Fprintf(&b, "%s[%s]: %s\n", label, d.Code, d.Message)
	}

	if d.File != nil {
		line, col := d.File.LineColumn(d.Span.Start())
		fmt.Fprintf(&b, "  --> %s:%d:%d\n", d.File.Filename(), line, col)

		enclosing := d.File.FindFirstEnclosingLine(d.Span)
		text := enclosing.String()

		fmt.Fprintf(&b, "%5d | %s\n", enclosing.Number(), text)

		offset := d.Span.Start() - enclosing.Start()
		if offset < 0 {
			offset = 0
		}

		width := d.Span.Length()
		if width < 1 {
			width = 1
		}

		fmt.Fprintf(&b, "      | %s%s\n", strings.Repeat(" ", offset), strings.Repeat("^", width))
	}

	for _, n := range d.Notes {
		fmt.Fprintf(&b, "  = note: %s\n", n)
	}

	return b.String()
}

// RenderAll renders every diagnostic in the collector, auto-detecting
// colour support from the controlling terminal unless overridden.
func RenderAll(c *Collector, forceColour, forceNoColour bool) string {
	colour := termio.IsTerminal()
	if forceColour {
		colour = true
	}

	if forceNoColour {
		colour = false
	}

	var b strings.Builder
	for _, d := range c.Items() {
		b.WriteString(Render(d, colour))
		b.WriteByte('\n')
	}

	return b.String()
}
