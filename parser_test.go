package biblatex

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bib1 = `% exported by some ancient tool
@string{goossens = "Goossens, Michel"}

This line is implicit junk between blocks.

@article{FuMetalhalideperovskite2019,
    author = "Yongping Fu and Haiming Zhu and Jie Chen",
    doi = {10.1038/s41578-019-0080-9},
    journal = {Nature Reviews Materials},
    pages = {169-188},
    publisher = {Springer Science and Business Media {LLC}},
    title = {Metal halide perovskite nanostructures},
    volume = {4},
    year = {2019},
}

@comment{
    This is a comment.
    Spanning over two lines.
}

@preamble{"\newcommand{\noop}[1]{}"}

@inproceedings{LiuPhotocatalytic2016,
    author = {Maochang Liu and Yubin Chen and Jinzhan Su},
    % impact factor pending review
    journal = {Nature Energy},
    pages = {16151},
    title = {Photocatalytic hydrogen production using twinned nanocrystals},
    year = {2016},
}

@string{mittelbach="Mittelbach, Franck"}
`

var bibtexOn = Options{AllowBibtex: true}

func TestParser(t *testing.T) {
	f := Parse(bib1, bibtexOn)

	require.Equal(t, 2, f.EntryCount())
	fu, liu := f.Entries[0], f.Entries[1]

	assert.Equal(t, "article", fu.Type)
	assert.Equal(t, "FuMetalhalideperovskite2019", fu.Key)
	assert.Len(t, fu.Fields, 8)
	assert.Equal(t, `"Yongping Fu and Haiming Zhu and Jie Chen"`, fu.Field("author"))
	assert.Equal(t, `{Springer Science and Business Media {LLC}}`, fu.Field("publisher"))
	assert.Equal(t, `{2019}`, fu.Field("year"))

	assert.Equal(t, "inproceedings", liu.Type)
	assert.Equal(t, "LiuPhotocatalytic2016", liu.Key)
	assert.Len(t, liu.Fields, 5)
	assert.Equal(t, `{Nature Energy}`, liu.Field("journal"),
		"the comment line must not leak into the next value")

	assert.Equal(t, map[string]string{
		"goossens":   `"Goossens, Michel"`,
		"mittelbach": `"Mittelbach, Franck"`,
	}, f.Macros)

	assert.Equal(t, `\newcommand{\noop}[1]{}`, f.Preamble)

	// The @comment block is not part of the grammar; its body stops
	// matching the cite-key rules and the block is skipped.
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, BadBlockHeader, f.Diagnostics[0].Kind)

	for _, e := range f.Entries {
		assert.Equal(t, byte('@'), bib1[e.Offset()])
	}
}

func TestParseArticle(t *testing.T) {
	src := "@article{haug2020,\n" +
		"    title = \"Great proceedings\\{\",\n" +
		"    year=2002,\n" +
		"    author={Haug, {Martin} and Haug, Gregor}}"
	f := Parse(src, bibtexOn)

	require.Equal(t, 1, f.EntryCount())
	assert.Empty(t, f.Diagnostics)
	e := f.Entries[0]
	assert.Equal(t, "article", e.Type)
	assert.Equal(t, "haug2020", e.Key)
	assert.Equal(t, `"Great proceedings\{"`, e.Field("title"))
	assert.Equal(t, "2002", e.Field("year"))
	assert.Equal(t, `{Haug, {Martin} and Haug, Gregor}`, e.Field("author"))

	// Raw values are views of the buffer, never rewritten.
	for _, v := range e.Fields {
		assert.Contains(t, src, v)
	}
}

func TestMacros(t *testing.T) {
	f := Parse(`@string{BT = "bibtex"}`, bibtexOn)
	assert.Zero(t, f.EntryCount(), "@string must not become an entry")
	assert.Empty(t, f.Diagnostics)
	assert.Equal(t, map[string]string{"BT": `"bibtex"`}, f.Macros)

	f = Parse("@string{x = {1}}\n@string{x = {2}}", bibtexOn)
	assert.Equal(t, map[string]string{"x": "{2}"}, f.Macros, "later definition wins")

	// Macros are recorded as each property is read, so a truncated
	// @string keeps what was parsed and reports the truncation.
	f = Parse(`@string{S = "v"`, bibtexOn)
	assert.Equal(t, map[string]string{"S": `"v"`}, f.Macros)
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, UnterminatedBlock, f.Diagnostics[0].Kind)

	// Case-insensitive dispatch, case-preserving values.
	f = Parse(`@STRING{a = {1}}`, bibtexOn)
	assert.Equal(t, map[string]string{"a": "{1}"}, f.Macros)
}

func TestEscapedDelimiters(t *testing.T) {
	f := Parse(`@article{test, author={Mister A\}"B"}}`, bibtexOn)
	require.Equal(t, 1, f.EntryCount())
	assert.Empty(t, f.Diagnostics)
	assert.Equal(t, `{Mister A\}"B"}`, f.Entries[0].Field("author"),
		"escaped } must not pop; quotes inside braces are literal")

	f = Parse(`@misc{k, title = "a\"b", year = {1},}`, bibtexOn)
	require.Equal(t, 1, f.EntryCount())
	assert.Equal(t, `"a\"b"`, f.Entries[0].Field("title"))

	// Every escaped delimiter stays in the value and leaves the depth
	// alone.
	f = Parse(`@misc{k, note = {\{\}\"},}`, bibtexOn)
	require.Equal(t, 1, f.EntryCount())
	assert.Empty(t, f.Diagnostics)
	assert.Equal(t, `{\{\}\"}`, f.Entries[0].Field("note"))
}

func TestConsecutiveBackslashes(t *testing.T) {
	// A backslash run keeps the shield armed, so the } after \\ is
	// still escaped and the value runs on to the unescaped one.
	f := Parse("@misc{k, note = {a\\\\} b},\n}", bibtexOn)
	require.Equal(t, 1, f.EntryCount())
	assert.Empty(t, f.Diagnostics)
	assert.Equal(t, `{a\\} b}`, f.Entries[0].Field("note"))
}

func TestCommaNotShieldable(t *testing.T) {
	// Only {, } and " can be shielded; \ before a comma still ends the
	// value, and the dangling backslash is not part of it.
	f := Parse(`@misc{k, note = a\, b = {2},}`, bibtexOn)
	require.Equal(t, 1, f.EntryCount())
	e := f.Entries[0]
	assert.Equal(t, "a", e.Field("note"))
	assert.Equal(t, "{2}", e.Field("b"))
}

func TestDuplicateFields(t *testing.T) {
	f := Parse(`@misc{k, note={a}, note={b},}`, bibtexOn)
	require.Equal(t, 1, f.EntryCount())
	assert.Equal(t, map[string]string{"note": "{b}"}, f.Entries[0].Fields)
}

func TestHeaderSpans(t *testing.T) {
	// Type and key spans start right after '@' and '{' and end after the
	// last identifier character, so leading and interior whitespace is
	// kept while trailing whitespace is not.
	f := Parse("@ty pe {  k1 ,\n  note = {n},\n}", bibtexOn)
	require.Equal(t, 1, f.EntryCount())
	e := f.Entries[0]
	assert.Equal(t, "ty pe", e.Type)
	assert.Equal(t, "  k1", e.Key)
	assert.Equal(t, "{n}", e.Field("note"))

	// An empty type is not an error.
	f = Parse("@{k, a={1}}", bibtexOn)
	require.Equal(t, 1, f.EntryCount())
	assert.Equal(t, "", f.Entries[0].Type)
	assert.Equal(t, "k", f.Entries[0].Key)
}

func TestMalformedHeaderResumes(t *testing.T) {
	f := Parse("@article(parens2019, title={x})\n@misc{ok, year={1},}\n", bibtexOn)
	require.Equal(t, 1, f.EntryCount())
	assert.Equal(t, "ok", f.Entries[0].Key)
	require.Len(t, f.Diagnostics, 1)
	d := f.Diagnostics[0]
	assert.Equal(t, BadBlockHeader, d.Kind)
	assert.Equal(t, strings.IndexByte(f.Source(), '('), d.Offset)
	line, col := f.Position(d.Offset)
	assert.Equal(t, 1, line)
	assert.Equal(t, 9, col)

	// The failing character is not consumed, so an immediate second '@'
	// opens a fresh block.
	f = Parse("@@misc{k2, a={1},}", bibtexOn)
	require.Equal(t, 1, f.EntryCount())
	assert.Equal(t, "k2", f.Entries[0].Key)
	require.Len(t, f.Diagnostics, 1)

	f = Parse("@misc{bad=key}", bibtexOn)
	assert.Zero(t, f.EntryCount())
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, BadBlockHeader, f.Diagnostics[0].Kind)
}

func TestStructuralMismatch(t *testing.T) {
	src := "@article{sun2014,\n" +
		"    title = \"missing close quote,\n" +
		"    year = {2014}\n" +
		"}\n" +
		"@misc{after, note={ok},}\n"
	f := Parse(src, bibtexOn)

	require.Equal(t, 1, f.EntryCount(), "the broken block must not be committed")
	assert.Equal(t, "after", f.Entries[0].Key)
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, UnbalancedDelimiter, f.Diagnostics[0].Kind)

	f = Parse(`@misc{k, a = "x}"}`, bibtexOn)
	assert.Zero(t, f.EntryCount())
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, UnbalancedDelimiter, f.Diagnostics[0].Kind)
}

func TestUnterminatedBlock(t *testing.T) {
	f := Parse("@article{k, title = {x}", bibtexOn)
	assert.Zero(t, f.EntryCount(), "no entry without a closing }")
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, UnterminatedBlock, f.Diagnostics[0].Kind)

	f = Parse("@article{k", bibtexOn)
	assert.Zero(t, f.EntryCount())
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, UnterminatedBlock, f.Diagnostics[0].Kind)
}

func TestPreamble(t *testing.T) {
	f := Parse("@preamble{\"A\"}\n@preamble{\" and B\"}", bibtexOn)
	assert.Equal(t, "A and B", f.Preamble, "preamble blocks concatenate")
	assert.Empty(t, f.Diagnostics)
	assert.Zero(t, f.EntryCount())

	// The body is copied verbatim, escapes and braces included.
	f = Parse(`@preamble{"\mbox{x} $\alpha$"}`, bibtexOn)
	assert.Equal(t, `\mbox{x} $\alpha$`, f.Preamble)

	f = Parse(`@preamble{e = mc^2}`, bibtexOn)
	assert.Equal(t, "", f.Preamble)
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, BadBlockHeader, f.Diagnostics[0].Kind)

	f = Parse(`@preamble{"abc`, bibtexOn)
	assert.Equal(t, "abc", f.Preamble, "the collected text survives truncation")
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, UnterminatedBlock, f.Diagnostics[0].Kind)
}

func TestBibtexDisabled(t *testing.T) {
	f := Parse(`@string{BT = "bibtex"}`, Options{})
	assert.Empty(t, f.Macros)
	assert.Zero(t, f.EntryCount())
	require.Len(t, f.Diagnostics, 1, "string parses as a regular block and fails at '='")
	assert.Equal(t, BadBlockHeader, f.Diagnostics[0].Kind)

	f = Parse(`@preamble{"x"}`, Options{})
	assert.Equal(t, "", f.Preamble)
	require.Len(t, f.Diagnostics, 1)

	f = Parse("@misc{k, a={1},}", Options{})
	assert.Equal(t, 1, f.EntryCount(), "regular entries are unaffected")
}

func TestDualPurposeCloser(t *testing.T) {
	// The } that ends an unquoted value also closes the block.
	f := Parse("@misc{k, a=1}@misc{k2, b=2}", bibtexOn)
	require.Equal(t, 2, f.EntryCount())
	assert.Equal(t, "1", f.Entries[0].Field("a"))
	assert.Equal(t, "2", f.Entries[1].Field("b"))
	assert.Empty(t, f.Diagnostics)
}

func TestValueBoundaries(t *testing.T) {
	// Whitespace before the value is skipped, whitespace accepted before
	// the terminator stays.
	f := Parse("@misc{k, note =   {x} }", bibtexOn)
	require.Equal(t, 1, f.EntryCount())
	assert.Equal(t, "{x} ", f.Entries[0].Field("note"))

	// A trailing backslash is never part of the value.
	f = Parse(`@string{n = {x}\`, bibtexOn)
	assert.Equal(t, map[string]string{"n": "{x}"}, f.Macros)
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, UnterminatedBlock, f.Diagnostics[0].Kind)
}

func TestEscapedAt(t *testing.T) {
	f := Parse(`junk \@misc{k, a={1}}`, bibtexOn)
	assert.Zero(t, f.EntryCount(), "escaped @ must not open a block")
	assert.Empty(t, f.Diagnostics)

	f = Parse(`\\@misc{k, a={1}}`, bibtexOn)
	assert.Zero(t, f.EntryCount(), "a backslash run keeps shielding")

	f = Parse("% @misc{hidden, a={1}}\n@misc{seen, b={2},}", bibtexOn)
	require.Equal(t, 1, f.EntryCount())
	assert.Equal(t, "seen", f.Entries[0].Key)
}

func TestJunkOnly(t *testing.T) {
	for _, src := range []string{
		"",
		"just text % @misc{x,}\nmore, = } junk",
		"\n\n\t  \n",
	} {
		f := Parse(src, bibtexOn)
		assert.Zero(t, f.EntryCount(), "%q", src)
		assert.Empty(t, f.Macros, "%q", src)
		assert.Equal(t, "", f.Preamble, "%q", src)
		assert.Empty(t, f.Diagnostics, "%q", src)
	}
}

func TestDeterministic(t *testing.T) {
	first := Parse(bib1, bibtexOn)
	second := Parse(bib1, bibtexOn)
	require.Equal(t, first, second)
}

func TestPosition(t *testing.T) {
	f := Parse("ab\r\ncd\u2028e", bibtexOn)

	for _, tc := range []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{4, 2, 1}, // CR LF advances one line
		{6, 2, 3},
		{9, 3, 1}, // U+2028 is a terminator too
		{10, 3, 2},
		{-5, 1, 1},  // clamped
		{999, 3, 2}, // clamped
	} {
		line, col := f.Position(tc.offset)
		assert.Equal(t, tc.line, line, "offset %d", tc.offset)
		assert.Equal(t, tc.col, col, "offset %d", tc.offset)
	}
}

func TestParseReader(t *testing.T) {
	f, err := ParseReader(strings.NewReader(bib1), "refs.bib", bibtexOn)
	require.NoError(t, err)
	assert.Equal(t, "refs.bib", f.Name())
	assert.Equal(t, 2, f.EntryCount())

	boom := errors.New("disk gone")
	_, err = ParseReader(iotest.ErrReader(boom), "refs.bib", bibtexOn)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "refs.bib")
}

func FuzzParse(f *testing.F) {
	f.Add(bib1)
	f.Add("@article{haug2020,\n    title = \"Great proceedings\\{\",\n    year=2002,\n    author={Haug, {Martin} and Haug, Gregor}}")
	f.Add(`@string{BT = "bibtex"}`)
	f.Add(`@preamble{"\noop"}`)
	f.Add("@misc{k")
	f.Add(`\@a`)
	f.Add("%c\n@m{k,a={1}}")
	f.Add("@")
	f.Add("@{,}")

	f.Fuzz(func(t *testing.T, src string) {
		for _, opts := range []Options{{}, {AllowBibtex: true}} {
			parsed := Parse(src, opts)
			require.NotNil(t, parsed)
			require.NotNil(t, parsed.Macros)
			assert.Equal(t, src, parsed.Source())
			assert.Equal(t, parsed, Parse(src, opts), "parsing must be deterministic")
			for _, e := range parsed.Entries {
				require.NotNil(t, e.Fields)
				assert.Equal(t, byte('@'), src[e.Offset()])
			}
		}
	})
}
