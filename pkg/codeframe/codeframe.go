// Package codeframe renders a few lines of source around a location, with a
// marker on the offending line, for parse error diagnostics.
package codeframe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Location is a 1-based line/column position. Column 0 means the whole line.
type Location struct {
	Line   int
	Column int
}

// Options controls how much context is rendered and how.
type Options struct {
	// LinesAbove and LinesBelow bound the context around Location.Line.
	LinesAbove int
	LinesBelow int

	// Highlight styles the gutter and marker for terminal output.
	Highlight bool

	// Message is printed after the column marker.
	Message string
}

// DefaultOptions returns two lines of context above and three below.
func DefaultOptions() Options {
	return Options{
		LinesAbove: 2,
		LinesBelow: 3,
	}
}

var (
	gutterStyle = lipgloss.NewStyle().Faint(true)
	markerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Frame renders the lines of source around loc:
//
//	  1 | const a = 1;
//	> 2 | const b = ;
//	    |           ^ Unexpected token
//	  3 | export default a;
//
// Returns "" when loc.Line is outside the source.
func Frame(source string, loc Location, opts Options) string {
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	if loc.Line < 1 || loc.Line > len(lines) {
		return ""
	}
	if opts.LinesAbove < 0 {
		opts.LinesAbove = 0
	}
	if opts.LinesBelow < 0 {
		opts.LinesBelow = 0
	}

	start := max(loc.Line-opts.LinesAbove, 1)
	end := min(loc.Line+opts.LinesBelow, len(lines))
	width := len(strconv.Itoa(end))

	style := func(s lipgloss.Style, text string) string {
		if !opts.Highlight {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	for n := start; n <= end; n++ {
		line := lines[n-1]
		gutter := fmt.Sprintf(" %*d |", width, n)

		if n == loc.Line {
			b.WriteString(style(markerStyle, ">"))
		} else {
			b.WriteString(" ")
		}
		b.WriteString(style(gutterStyle, gutter))
		if line != "" {
			b.WriteString(" ")
			b.WriteString(line)
		}

		if n == loc.Line && loc.Column > 0 {
			b.WriteString("\n ")
			b.WriteString(style(gutterStyle, fmt.Sprintf(" %*s |", width, "")))
			b.WriteString(" ")
			b.WriteString(markerPadding(line, loc.Column))
			b.WriteString(style(markerStyle, "^"))
			if opts.Message != "" {
				b.WriteString(" ")
				b.WriteString(style(markerStyle, opts.Message))
			}
		}
		if n < end {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// markerPadding keeps tabs from the source line so the caret lines up.
func markerPadding(line string, column int) string {
	var b strings.Builder
	for i := 0; i < column-1; i++ {
		if i < len(line) && line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
