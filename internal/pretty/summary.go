package pretty

import (
	"fmt"
	"strings"
)

const (
	wordFile  = "file"
	wordFiles = "files"
)

// Stats aggregates one CLI run over a set of bibliographies.
type Stats struct {
	FilesParsed int
	Entries     int
	Macros      int
	Skipped     int // blocks dropped during recovery
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 skipped blocks in 2 files (480 entries kept)".
func (s *Styles) FormatSummaryOneLine(stats Stats) string {
	fileWord := wordFiles
	if stats.FilesParsed == 1 {
		fileWord = wordFile
	}

	if stats.Skipped == 0 {
		return s.Success.Render("No problems found") +
			s.Dim.Render(fmt.Sprintf(" (%d entries in %d %s)", stats.Entries, stats.FilesParsed, fileWord)) +
			"\n"
	}

	blockWord := "blocks"
	if stats.Skipped == 1 {
		blockWord = "block"
	}

	var builder strings.Builder
	builder.WriteString(s.Failure.Render(fmt.Sprintf("%d skipped %s", stats.Skipped, blockWord)))
	builder.WriteString(fmt.Sprintf(" in %d %s", stats.FilesParsed, fileWord))
	builder.WriteString(s.Dim.Render(fmt.Sprintf(" (%d entries kept)", stats.Entries)))
	builder.WriteString("\n")
	return builder.String()
}
