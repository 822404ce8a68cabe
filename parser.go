package biblatex

import (
	"fmt"
	"io"
	"strings"
)

// Options configures a parse call.
type Options struct {
	// AllowBibtex recognizes the legacy @string and @preamble constructs
	// in addition to regular entries. When false both parse as ordinary
	// block types.
	AllowBibtex bool
}

// Parse parses one in-memory buffer. It always returns a complete File:
// malformed blocks are skipped and reported through File.Diagnostics,
// never through an error, so a partially corrupt bibliography still yields
// every well-formed entry.
func Parse(src string, opts Options) *File {
	return newParser("", src, opts).parse()
}

// ParseReader reads r to the end and parses the buffer. fileName is kept
// on the result for reporting only. The reader is not closed; the only
// error returned is a read error.
func ParseReader(r io.Reader, fileName string, opts Options) (*File, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fileName, err)
	}
	p := newParser(fileName, string(buf), opts)
	return p.parse(), nil
}

// Block parsing modes. Outside is both the initial state and the state
// every block returns to, well-formed or not.
type parseMode int

const (
	modeOutside  parseMode = iota // between blocks
	modeType                      // reading the block type after '@'
	modeKey                       // reading the cite key
	modePreamble                  // inside @preamble{...}
	modeEntry                     // reading name=value properties
)

// Value delimiter contexts. The value scanner tracks nesting with a stack
// of these two.
type delim int

const (
	delimQuote delim = iota
	delimBrace
)

type parser struct {
	s    *Scanner
	opts Options
	file *File

	comment bool // inside a % line comment
	escape  bool // a backslash shields the next character
	pre     strings.Builder
}

func newParser(fileName, src string, opts Options) *parser {
	return &parser{
		s:    NewScanner(src),
		opts: opts,
		file: newFile(fileName, src),
	}
}

// parse walks the whole buffer once. Everything outside @-blocks is junk
// and ignored; an unescaped '@' outside a comment opens a block.
func (p *parser) parse() *File {
	for {
		c, ok := p.s.Eat()
		if !ok {
			break
		}
		if p.comment {
			if IsNewline(c) {
				p.comment = false
			}
			continue
		}
		escaped := p.escape
		p.escape = c == '\\'
		switch {
		case c == '@' && !escaped:
			p.parseBlock(p.s.Index() - 1)
		case c == '%':
			p.comment = true
		}
	}
	p.file.Preamble = p.pre.String()
	return p.file
}

// parseBlock consumes one @-block; at is the byte offset of the '@'. The
// entry is committed only when its block closes. On a malformed construct
// the block is dropped with a diagnostic and scanning resumes wherever the
// grammar stopped matching, so the next '@' starts fresh.
func (p *parser) parseBlock(at int) {
	var (
		mode    = modeType
		typ     string            // block type, case preserved
		isMacro bool              // @string: properties go to the macro table
		fields  map[string]string // routing target for properties
	)
	typStart, typEnd := p.s.Index(), p.s.Index()
	keyStart, keyEnd := 0, 0

	for {
		c, ok := p.s.Peek()
		if !ok {
			p.diag(p.s.Index(), UnterminatedBlock, "source ended inside a block")
			return
		}
		switch mode {
		case modeType:
			// The span starts right after the '@' and its end advances
			// only over identifier characters, so whitespace between
			// identifier runs stays inside the token.
			switch {
			case isIdent(c, typStart == typEnd):
				p.s.Eat()
				typEnd = p.s.Index()
			case isWhitespace(c):
				p.s.Eat()
			case c == '{':
				p.s.Eat()
				typ = p.s.Slice(typStart, typEnd)
				switch kind := strings.ToLower(typ); {
				case p.opts.AllowBibtex && kind == "string":
					isMacro = true
					fields = p.file.Macros
					mode = modeEntry
				case p.opts.AllowBibtex && kind == "preamble":
					mode = modePreamble
				default:
					fields = make(map[string]string)
					keyStart, keyEnd = p.s.Index(), p.s.Index()
					mode = modeKey
				}
			default:
				p.diag(p.s.Index(), BadBlockHeader, fmt.Sprintf("unexpected %q in block type", c))
				return
			}

		case modeKey:
			switch {
			case isIdent(c, keyStart == keyEnd):
				p.s.Eat()
				keyEnd = p.s.Index()
			case c == ',':
				p.s.Eat()
				mode = modeEntry
			case isWhitespace(c):
				p.s.Eat()
			default:
				p.diag(p.s.Index(), BadBlockHeader, fmt.Sprintf("unexpected %q in cite key", c))
				return
			}

		case modePreamble:
			p.skipSpace()
			if !p.s.EatIf('"') {
				p.diag(p.s.Index(), BadBlockHeader, "preamble body must be a quoted string")
				return
			}
			// Copied verbatim: no escapes, no concatenation. Successive
			// preamble blocks append to the same file-level text.
			p.pre.WriteString(p.s.EatUntil(func(r rune) bool { return r == '"' }))
			if !p.s.EatIf('"') {
				p.diag(p.s.Index(), UnterminatedBlock, "source ended inside a preamble")
			}
			return

		case modeEntry:
			p.skipSpace()
			c, ok = p.s.Peek()
			if !ok {
				continue // the loop head reports the unterminated block
			}
			if c == '}' {
				p.s.Eat()
			} else {
				name, value, closed, ok := p.readProperty()
				if !ok {
					return
				}
				fields[name] = value
				if !closed {
					continue
				}
			}
			// Block closed.
			if !isMacro {
				p.file.AddEntry(&Entry{
					Type:   typ,
					Key:    p.s.Slice(keyStart, keyEnd),
					Fields: fields,
					offset: at,
				})
			}
			return
		}
	}
}

// readProperty reads one name=value property. closed reports that the
// value's terminating '}' also closed the enclosing block. On a delimiter
// mismatch it records the diagnostic and reports ok false; the caller must
// abandon the block.
func (p *parser) readProperty() (name, value string, closed, ok bool) {
	p.skipSpace()

	nameStart, nameEnd := p.s.Index(), p.s.Index()
	for {
		c, more := p.s.Peek()
		if !more || !isIdent(c, nameStart == nameEnd) {
			break
		}
		p.s.Eat()
		nameEnd = p.s.Index()
	}
	name = p.s.Slice(nameStart, nameEnd)

	p.s.EatUntil(func(r rune) bool { return r == '=' })
	p.s.EatIf('=')
	p.skipSpace()

	// The value runs from the first character after the '=' gap to the
	// last accepted character before the terminator. Terminators are an
	// unescaped ',' or '}' at zero depth; the '}' also closes the block.
	var stack []delim
	valStart := p.s.Index()
	valEnd := valStart
	escape := false
	for {
		c, more := p.s.Eat()
		if !more {
			break
		}
		switch {
		case c == '\\':
			escape = true
			continue
		case escape && (c == '{' || c == '}' || c == '"'):
			// delimiter effect shielded; the character stays in the value
		case c == ',' && len(stack) == 0:
			return name, p.s.Slice(valStart, valEnd), false, true
		case c == '}' && len(stack) == 0:
			return name, p.s.Slice(valStart, valEnd), true, true
		case c == '"' && len(stack) > 0 && stack[len(stack)-1] == delimQuote:
			stack = stack[:len(stack)-1]
		case c == '"' && len(stack) == 0:
			stack = append(stack, delimQuote)
		case c == '{':
			stack = append(stack, delimBrace)
		case c == '}':
			if stack[len(stack)-1] != delimBrace {
				p.diag(p.s.Index()-1, UnbalancedDelimiter, "unescaped } inside a quoted value")
				return "", "", false, false
			}
			stack = stack[:len(stack)-1]
		}
		escape = false
		valEnd = p.s.Index()
	}
	return name, p.s.Slice(valStart, valEnd), false, true
}

// skipSpace advances past whitespace and % line comments between tokens.
func (p *parser) skipSpace() {
	for {
		c, ok := p.s.Peek()
		if !ok {
			return
		}
		switch {
		case c == '%':
			p.comment = true
		case IsNewline(c):
			p.comment = false
		case p.comment:
			// comment text, consumed below
		case !isWhitespace(c):
			return
		}
		p.s.Eat()
	}
}

func (p *parser) diag(offset int, kind DiagnosticKind, msg string) {
	p.file.Diagnostics = append(p.file.Diagnostics, Diagnostic{Offset: offset, Kind: kind, Message: msg})
}
