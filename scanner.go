package biblatex

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidPosition reports a jump target that is out of range or not on a
// codepoint boundary.
var ErrInvalidPosition = errors.New("invalid cursor position")

// A Scanner walks a source buffer one codepoint at a time. Positions are
// byte offsets that always sit on codepoint boundaries, so every slice
// taken through the scanner is a view of the original buffer.
type Scanner struct {
	src   string
	index int
}

// NewScanner returns a scanner positioned at the start of src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

func (s *Scanner) next() (rune, int) {
	if s.index >= len(s.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(s.src[s.index:])
}

// EOF reports whether the whole source has been consumed.
func (s *Scanner) EOF() bool {
	return s.index >= len(s.src)
}

// Peek returns the next codepoint without consuming it.
func (s *Scanner) Peek() (rune, bool) {
	r, n := s.next()
	return r, n > 0
}

// Eat consumes and returns the next codepoint.
func (s *Scanner) Eat() (rune, bool) {
	r, n := s.next()
	s.index += n
	return r, n > 0
}

// EatIf consumes the next codepoint only if it equals c.
func (s *Scanner) EatIf(c rune) bool {
	r, n := s.next()
	if n == 0 || r != c {
		return false
	}
	s.index += n
	return true
}

// EatWhile consumes codepoints as long as f holds and returns the consumed
// slice.
func (s *Scanner) EatWhile(f func(rune) bool) string {
	start := s.index
	for {
		r, n := s.next()
		if n == 0 || !f(r) {
			break
		}
		s.index += n
	}
	return s.src[start:s.index]
}

// EatUntil consumes codepoints up to the first one f holds for and returns
// the consumed slice.
func (s *Scanner) EatUntil(f func(rune) bool) string {
	return s.EatWhile(func(r rune) bool { return !f(r) })
}

// SkipWhitespace advances past whitespace.
func (s *Scanner) SkipWhitespace() {
	s.EatWhile(isWhitespace)
}

// SkipTrivia advances past whitespace and newlines.
func (s *Scanner) SkipTrivia() {
	s.EatWhile(func(r rune) bool { return isWhitespace(r) || IsNewline(r) })
}

// Uneat rewinds the scanner by one codepoint. At the start of the source it
// does nothing.
func (s *Scanner) Uneat() {
	_, n := utf8.DecodeLastRuneInString(s.src[:s.index])
	s.index -= n
}

// Jump moves the scanner to an absolute byte offset. Offsets out of range
// or inside a multi-byte codepoint are rejected: clamping them silently
// would corrupt every slice taken afterwards.
func (s *Scanner) Jump(index int) error {
	if !s.boundary(index) {
		return fmt.Errorf("jump to byte %d of %d: %w", index, len(s.src), ErrInvalidPosition)
	}
	s.index = index
	return nil
}

// Index returns the current byte offset.
func (s *Scanner) Index() int {
	return s.index
}

// Slice returns src[start:end]. Invalid ranges yield "" so call sites can
// slice freely without pre-validating offsets.
func (s *Scanner) Slice(start, end int) string {
	if start > end || !s.boundary(start) || !s.boundary(end) {
		return ""
	}
	return s.src[start:end]
}

// EatenFrom returns everything consumed since the byte offset start.
func (s *Scanner) EatenFrom(start int) string {
	return s.Slice(start, s.index)
}

// Rest returns everything not yet consumed.
func (s *Scanner) Rest() string {
	return s.src[s.index:]
}

func (s *Scanner) boundary(i int) bool {
	if i < 0 || i > len(s.src) {
		return false
	}
	return i == len(s.src) || utf8.RuneStart(s.src[i])
}

// IsNewline reports whether c terminates a line. The set is the extended
// one; legacy toolchains still emit the vertical tab, form feed and the
// NEL/LS/PS separators.
func IsNewline(c rune) bool {
	switch c {
	case '\n', '\v', '\f', '\r', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

func isWhitespace(c rune) bool {
	return unicode.IsSpace(c)
}

// reserved characters can never appear in an entry type, cite key or field
// name.
const reserved = "@{}\"#'(),=%\\~"

// IsIdentStart reports whether c can begin an identifier token such as an
// entry type, cite key or field name.
func IsIdentStart(c rune) bool {
	switch c {
	case ':', '<', '-', '>', '_':
		return false
	}
	return IsIdentContinue(c)
}

// IsIdentContinue reports whether c can continue an identifier token. The
// format predates any strict rule, so anything outside the reserved set
// that is not control, whitespace or a newline is allowed.
func IsIdentContinue(c rune) bool {
	return !strings.ContainsRune(reserved, c) &&
		!unicode.IsControl(c) && !isWhitespace(c) && !IsNewline(c)
}

// isIdent gates one identifier character; the first character of a token
// obeys the stricter start rule.
func isIdent(c rune, first bool) bool {
	if first {
		return IsIdentStart(c)
	}
	return IsIdentContinue(c)
}
