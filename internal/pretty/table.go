package pretty

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// Table formatting constants.
const (
	tablePadding     = 2
	countColumnWidth = 8
	minFileWidth     = 12
	heavySeparator   = "="
	defaultTermWidth = 100
	ellipsis         = "..."
)

// TableRow is one file's parse summary.
type TableRow struct {
	File    string
	Entries int
	Macros  int
	Skipped int
}

// TableFormatter formats per-file parse summaries as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{styles: styles, termWidth: termWidth}
}

// FormatTable renders one row per file plus a totals row when there is
// more than one.
func (t *TableFormatter) FormatTable(rows []TableRow) string {
	if len(rows) == 0 {
		return ""
	}

	fileWidth := minFileWidth
	for _, row := range rows {
		if len(row.File) > fileWidth {
			fileWidth = len(row.File)
		}
	}
	if max := t.termWidth - 3*(countColumnWidth+tablePadding); fileWidth > max && max >= minFileWidth {
		fileWidth = max
	}

	var builder strings.Builder
	builder.WriteString(t.styles.TableHeader.Render(t.formatHeader(fileWidth)))
	builder.WriteString("\n")
	separator := strings.Repeat(heavySeparator, fileWidth+3*(countColumnWidth+tablePadding))
	builder.WriteString(t.styles.TableSeparator.Render(separator))
	builder.WriteString("\n")

	var total TableRow
	for _, row := range rows {
		builder.WriteString(t.formatRow(row, fileWidth))
		builder.WriteString("\n")
		total.Entries += row.Entries
		total.Macros += row.Macros
		total.Skipped += row.Skipped
	}

	if len(rows) > 1 {
		builder.WriteString(t.styles.TableSeparator.Render(separator))
		builder.WriteString("\n")
		total.File = "total"
		builder.WriteString(t.styles.Bold.Render(t.formatRow(total, fileWidth)))
		builder.WriteString("\n")
	}

	return builder.String()
}

func (t *TableFormatter) formatHeader(fileWidth int) string {
	return fmt.Sprintf("%-*s%*s%*s%*s", fileWidth, "FILE",
		countColumnWidth+tablePadding, "ENTRIES",
		countColumnWidth+tablePadding, "MACROS",
		countColumnWidth+tablePadding, "SKIPPED")
}

func (t *TableFormatter) formatRow(row TableRow, fileWidth int) string {
	return fmt.Sprintf("%-*s%*d%*d%*d", fileWidth, clipPath(row.File, fileWidth),
		countColumnWidth+tablePadding, row.Entries,
		countColumnWidth+tablePadding, row.Macros,
		countColumnWidth+tablePadding, row.Skipped)
}

// clipPath shortens a path from the left, keeping the more telling tail.
func clipPath(path string, width int) string {
	if len(path) <= width || width <= len(ellipsis) {
		return path
	}
	return ellipsis + path[len(path)-width+len(ellipsis):]
}

// GetTerminalWidth attempts to get the terminal width from the writer.
func GetTerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
