package biblatex

// Field classification, person-name splitting and rich-text parsing are
// downstream stages. They consume the raw values in a File but are never
// called from this package; the contracts live here so every stage agrees
// on them.

// FieldKind discriminates the typed interpretations a classification stage
// can assign to one raw field value.
type FieldKind int

const (
	KindUnknown  FieldKind = iota // unrecognized field name
	KindLiteral                   // rich text: title, journal, note
	KindNameList                  // person names: author, editor, translator
	KindInteger                   // volume, number, edition
	KindRange                     // pages
	KindDate                      // date, year combined with month
	KindVerbatim                  // uninterpreted text: url, doi, file
	KindKeyword                   // closed vocabularies: pagination, gender
)

// FieldValue is one classified field value. Implementations belong to the
// classification stage, not to the parser.
type FieldValue interface {
	// Kind discriminates the value's interpretation.
	Kind() FieldKind
	// Raw returns the source text the value was classified from.
	Raw() string
}

// Unknown is the FieldValue a classifier returns for field names it does
// not recognize. Unrecognized names are ordinary data in bibliography
// interchange, never an error.
type Unknown struct {
	Name  string
	Value string
}

func (u Unknown) Kind() FieldKind { return KindUnknown }
func (u Unknown) Raw() string     { return u.Value }

// A FieldClassifier assigns a typed interpretation to one raw field. It
// must be total over field names: anything it does not recognize maps to
// Unknown.
type FieldClassifier interface {
	ClassifyField(entryType, fieldName, raw string) FieldValue
}

// A ValueParser is a pure function over one raw field value: the shape
// shared by the rich-text and person-name parsers.
type ValueParser func(raw string) (FieldValue, error)
