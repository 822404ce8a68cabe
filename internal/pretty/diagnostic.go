package pretty

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonaspleyer/biblatex"
)

// FormatDiagnostic formats one parser diagnostic for terminal output:
// location, kind and message, optionally followed by the offending source
// line with a caret marker.
func (s *Styles) FormatDiagnostic(f *biblatex.File, d biblatex.Diagnostic, showContext bool) string {
	var builder strings.Builder

	line, col := f.Position(d.Offset)
	location := fmt.Sprintf("%s:%d:%d", s.FilePath.Render(f.Name()), line, col)

	builder.WriteString(fmt.Sprintf("  %s  %s  %s\n",
		location,
		s.Kind.Render(d.Kind.String()),
		s.Message.Render(d.Message),
	))

	if showContext {
		if src := sourceLineAt(f.Source(), d.Offset); src != "" {
			builder.WriteString(s.FormatSourceContext(src, col))
		}
	}

	return builder.String()
}

// FormatSourceContext formats the source line with a caret marker.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var builder strings.Builder

	// Indent to align with diagnostic output
	const indent = "        "

	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")

	if column > 0 {
		padding := indent + strings.Repeat(" ", column-1)
		builder.WriteString(padding + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, skipped int) string {
	header := s.FilePath.Render(path)
	if skipped > 0 {
		word := "blocks"
		if skipped == 1 {
			word = "block"
		}
		header += s.Dim.Render(fmt.Sprintf(" (%d skipped %s)", skipped, word))
	}
	return header + "\n"
}

// sourceLineAt extracts the line offset falls on, without its terminator.
func sourceLineAt(src string, offset int) string {
	if offset < 0 || offset > len(src) {
		return ""
	}
	start := offset
	for start > 0 {
		r, n := utf8.DecodeLastRuneInString(src[:start])
		if biblatex.IsNewline(r) {
			break
		}
		start -= n
	}
	end := offset
	for end < len(src) {
		r, n := utf8.DecodeRuneInString(src[end:])
		if biblatex.IsNewline(r) {
			break
		}
		end += n
	}
	return src[start:end]
}
