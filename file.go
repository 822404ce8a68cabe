package biblatex

import "fmt"

// File is the result of one parse call: entries in source order, the macro
// table, the preamble, and one diagnostic per construct the parser skipped
// while recovering. Entry fields and macro values are slices of the source
// buffer, which the file keeps alive.
type File struct {
	Entries     []*Entry
	Macros      map[string]string
	Preamble    string
	Diagnostics []Diagnostic

	name string
	src  string
}

func newFile(name, src string) *File {
	return &File{Macros: make(map[string]string), name: name, src: src}
}

// Name returns the file name recorded at parse time, "" for bare buffers.
func (f *File) Name() string {
	return f.name
}

// Source returns the buffer the file was parsed from.
func (f *File) Source() string {
	return f.src
}

// AddEntry appends an entry, keeping source order.
func (f *File) AddEntry(e *Entry) {
	f.Entries = append(f.Entries, e)
}

// EntryCount returns the number of committed entries.
func (f *File) EntryCount() int {
	return len(f.Entries)
}

// Position converts a byte offset into 1-based line and column. Every
// terminator in the extended newline set breaks a line; CR LF counts once.
func (f *File) Position(offset int) (line, col int) {
	return position(f.src, offset)
}

func position(src string, offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	line, col = 1, 1
	var prev rune
	for _, r := range src[:offset] {
		if IsNewline(r) {
			if prev != '\r' || r != '\n' {
				line++
			}
			col = 1
		} else {
			col++
		}
		prev = r
	}
	return line, col
}

// Entry is one @type{key, ...} record. Type keeps the case it was written
// with; the parser's block-kind dispatch compares case-insensitively.
// Fields holds raw source text, still escaped and still delimited; a field
// name written twice keeps the later value.
type Entry struct {
	Type   string
	Key    string
	Fields map[string]string

	offset int
}

// Offset returns the byte offset of the entry's '@' in the source buffer.
func (e *Entry) Offset() int {
	return e.offset
}

// Field returns the raw value of the named field, "" when absent.
func (e *Entry) Field(name string) string {
	return e.Fields[name]
}

// DiagnosticKind classifies the constructs the parser recovered past.
type DiagnosticKind int

const (
	// BadBlockHeader marks a character outside the header grammar in the
	// type, key or preamble-opening position; the whole block was skipped.
	BadBlockHeader DiagnosticKind = iota
	// UnbalancedDelimiter marks an unescaped '}' closing a quote context
	// inside a value; the block was abandoned.
	UnbalancedDelimiter
	// UnterminatedBlock marks a block still open when the source ended.
	UnterminatedBlock
)

func (k DiagnosticKind) String() string {
	switch k {
	case BadBlockHeader:
		return "bad block header"
	case UnbalancedDelimiter:
		return "unbalanced delimiter"
	case UnterminatedBlock:
		return "unterminated block"
	}
	return "unknown"
}

// Diagnostic records one construct the parser skipped or truncated. It is
// advisory: the rest of the file parsed normally.
type Diagnostic struct {
	Offset  int
	Kind    DiagnosticKind
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("offset %d: %s: %s", d.Offset, d.Kind, d.Message)
}
