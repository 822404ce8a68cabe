package biblatex

import "unsafe"

// lower returns the lower-case of ch iff ch is an ASCII letter.
func lower(ch rune) rune { return ('a' - 'A') | ch }

func isASCIIAlphaNumeric(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || '0' <= ch && ch <= '9'
}

func byteSlice2String(bs []byte) string {
	if len(bs) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(bs), len(bs))
}

// normalizeAlnum lowers s and keeps only ASCII letters and digits. Raw
// field values stay escaped and delimited, so normalization is what makes
// them comparable: braces, quotes and TeX markup all fall away.
func normalizeAlnum(s string) string {
	b := make([]byte, len(s))
	i := 0
	for _, ch := range s {
		ch := lower(ch)
		if isASCIIAlphaNumeric(ch) {
			b[i] = byte(ch)
			i++
		}
	}
	return byteSlice2String(b[:i])
}
