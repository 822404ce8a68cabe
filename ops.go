package biblatex

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// SetAction selects what Deduplicate does beyond reporting.
type SetAction int8

const (
	SetNoAction SetAction = iota
	// SetIntersect keeps one representative of every duplicate set: the
	// records common to the inputs.
	SetIntersect
	// SetUnion keeps the first occurrence of every distinct record.
	SetUnion
)

// EntryRef locates an entry inside the file it came from.
type EntryRef struct {
	Entry *Entry
	File  *File
}

// DedupMap indexes entries by their normalized index term.
type DedupMap = map[string][]EntryRef

// DedupReport summarizes one Deduplicate run.
type DedupReport struct {
	DuplicateSetCount int
	DuplicateSet      DedupMap
	ResultSetCount    int
}

// Print writes every duplicate set: the index term, then one file:line
// locator per occurrence with its cite key and type.
func (dr *DedupReport) Print(w io.Writer) (err error) {
	if dr == nil || dr.DuplicateSetCount == 0 {
		return nil
	}
	pf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}
	pf("%d duplicate sets found\n", dr.DuplicateSetCount)
	for _, term := range slices.Sorted(maps.Keys(dr.DuplicateSet)) {
		refs := dr.DuplicateSet[term]
		if len(refs) < 2 {
			continue
		}
		pf("%s\n[%s] has %d occurrences\n", strings.Repeat("*", 60), term, len(refs))
		for _, ref := range refs {
			line, _ := ref.File.Position(ref.Entry.Offset())
			pf("%s:%d: @%s{%s}\n", ref.File.Name(), line, ref.Entry.Type, ref.Entry.Key)
		}
	}
	if dr.ResultSetCount > 0 {
		pf("%d records in result set\n", dr.ResultSetCount)
	}
	return err
}

func (dr DedupReport) String() string {
	var b strings.Builder
	if err := dr.Print(&b); err != nil {
		b.WriteString("error: " + err.Error())
	}
	return b.String()
}

// indexEntry concatenates the normalized values of the named fields.
func indexEntry(e *Entry, fieldNames []string) string {
	var sb strings.Builder
	for _, name := range fieldNames {
		sb.WriteString(e.Field(name))
	}
	return normalizeAlnum(sb.String())
}

// Deduplicate indexes the entries of one or more files by the concatenated
// normalized values of fieldNames; when no fields are given (or "citekey"
// is among them) the cite key joins the index term. It returns a report,
// plus a result file when action asks for one: the union keeps the first
// occurrence of each distinct record in input order, the intersection
// keeps one representative per duplicate set.
func Deduplicate(files []*File, fieldNames []string, action SetAction) (*File, *DedupReport, error) {
	if len(files) == 0 || files[0].EntryCount() == 0 {
		return nil, nil, fmt.Errorf("nothing to deduplicate")
	}
	hasFields := len(fieldNames) > 0
	citekey := !hasFields || slices.Contains(fieldNames, "citekey")

	term := func(e *Entry) string {
		idx := ""
		if hasFields {
			idx = indexEntry(e, fieldNames)
		}
		if citekey {
			idx += e.Key
		}
		return idx
	}

	dupSet := make(DedupMap, len(files)*files[0].EntryCount())
	for _, f := range files {
		for _, e := range f.Entries {
			t := term(e)
			dupSet[t] = append(dupSet[t], EntryRef{e, f})
		}
	}
	duplicateSets := 0
	for _, refs := range dupSet {
		if len(refs) > 1 {
			duplicateSets++
		}
	}
	dr := &DedupReport{DuplicateSetCount: duplicateSets, DuplicateSet: dupSet}

	switch action {
	case SetNoAction:
		return nil, dr, nil
	case SetIntersect:
		if duplicateSets == 0 {
			return nil, nil, fmt.Errorf("no common records")
		}
	case SetUnion:
	default:
		return nil, nil, fmt.Errorf("invalid set action %d", action)
	}

	name := "union.bib"
	if action == SetIntersect {
		name = "intersection.bib"
	}
	res := newFile(name, "")
	seen := make(map[string]bool, len(dupSet))
	for _, f := range files {
		for _, e := range f.Entries {
			t := term(e)
			if seen[t] {
				continue
			}
			seen[t] = true
			if action == SetIntersect && len(dupSet[t]) < 2 {
				continue
			}
			res.AddEntry(e)
			dr.ResultSetCount++
		}
	}
	return res, dr, nil
}

// ValidKeys reports whether every entry of f has a unique, non-empty cite
// key; bad holds the offenders grouped by key.
func ValidKeys(f *File) (ok bool, bad DedupMap) {
	_, dr, err := Deduplicate([]*File{f}, nil, SetNoAction)
	if err != nil {
		return true, nil // nothing to check
	}
	bad = make(DedupMap)
	for key, refs := range dr.DuplicateSet {
		if key == "" || len(refs) > 1 {
			bad[key] = refs
		}
	}
	return len(bad) == 0, bad
}

// NewCiteKey derives a deterministic citation key: last name of the first
// author + year + first title word + type initial + page or volume digits.
// Components pass through ASCII-alphanumeric normalization, which strips
// delimiters and TeX markup along with punctuation.
func NewCiteKey(e *Entry) string {
	var sb strings.Builder
	word, _, found := strings.Cut(e.Field("author"), ",")
	if !found {
		word, _, _ = strings.Cut(e.Field("author"), " ")
	}
	sb.WriteString(normalizeAlnum(word))
	sb.WriteString(normalizeAlnum(e.Field("year")))
	word, _, _ = strings.Cut(e.Field("title"), " ")
	sb.WriteString(normalizeAlnum(word))
	t := normalizeAlnum(e.Type)
	if t == "" {
		t = "x"
	}
	sb.WriteString(t[:1])
	sb.WriteString(normalizeAlnum(e.Field("pages") + e.Field("volume")))
	return sb.String()
}

// Rename records one cite-key replacement made by FixKeys.
type Rename struct {
	Old string
	New string
}

// FixKeys generates a key for every entry with an empty cite key (every
// entry when all is set), using NewCiteKey or, when fieldNames are given,
// the concatenated normalized field values. Remaining duplicates get an
// A, B, C... suffix. The renames performed are returned in entry order.
func FixKeys(f *File, fieldNames []string, all bool) ([]Rename, error) {
	if f == nil || f.EntryCount() == 0 {
		return nil, nil
	}
	useStd := len(fieldNames) == 0
	var renames []Rename
	for _, e := range f.Entries {
		if !all && e.Key != "" {
			continue
		}
		old := e.Key
		if useStd {
			e.Key = NewCiteKey(e)
		} else {
			e.Key = indexEntry(e, fieldNames)
		}
		if e.Key != old {
			renames = append(renames, Rename{Old: old, New: e.Key})
		}
	}
	_, dr, err := Deduplicate([]*File{f}, nil, SetNoAction)
	if err != nil {
		return renames, err
	}
	if dr.DuplicateSetCount == 0 {
		return renames, nil
	}
	for _, key := range slices.Sorted(maps.Keys(dr.DuplicateSet)) {
		refs := dr.DuplicateSet[key]
		if len(refs) < 2 {
			continue
		}
		// TODO: suffixes overflow past 'Z' when a set has more than 26
		// duplicates.
		for i := 1; i < len(refs); i++ {
			old := refs[i].Entry.Key
			refs[i].Entry.Key = old + string(rune('A'+i-1))
			renames = append(renames, Rename{Old: old, New: refs[i].Entry.Key})
		}
	}
	return renames, nil
}

// Split partitions entries by the normalized value of the named field;
// "type" splits on the entry type. Entries are shared with f, not copied.
func Split(f *File, field string) map[string]*File {
	res := make(map[string]*File, 8)
	for _, e := range f.Entries {
		v := e.Field(field)
		if field == "type" {
			v = e.Type
		}
		v = normalizeAlnum(v)
		sub, ok := res[v]
		if !ok {
			sub = newFile(v, "")
			res[v] = sub
		}
		sub.AddEntry(e)
	}
	return res
}
