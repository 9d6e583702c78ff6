package pica

import (
	"slices"
	"strings"

	"pica-query/errors"
	"pica-query/filter"
	"pica-query/internal/grammar"
	"pica-query/locator"
)

// Subfield is one coded value of a field. The code is a single alphanumeric
// character and the value is never empty.
type Subfield struct {
	Code  byte
	Value string
}

// Field is one record line: a tag, an optional occurrence, and subfields in
// parse/append order. The zero Field is the invalid sentinel produced for
// malformed lines; it carries no queryable data.
//
// A field belongs to no particular record and may be shared between several,
// e.g. between a record and its filtered copies.
type Field struct {
	tag        string
	occurrence string
	subfields  []Subfield
	positions  map[byte][]int // code -> indexes into subfields, in stored order
}

// NewField returns an empty field with the given tag and occurrence. An
// invalid tag or occurrence yields the invalid sentinel.
func NewField(tag, occurrence string) *Field {
	if !grammar.IsTag(tag) || (occurrence != "" && !grammar.IsOccurrence(occurrence)) {
		return &Field{}
	}

	return &Field{tag: tag, occurrence: occurrence}
}

// ParseField parses one record line. Parsing is tolerant: any grammar
// violation yields the invalid sentinel instead of an error, so one bad
// line cannot abort a record parse.
func ParseField(line string) *Field {
	var prefix, payload string

	if i := strings.IndexByte(line, '$'); i >= 0 {
		prefix = strings.TrimRight(line[:i], " \t")
		payload = line[i:]
	} else {
		prefix = strings.TrimSpace(line)
	}

	var tag, occurrence string

	if prefix != "" {
		tagPart, occPart, hasOcc := strings.Cut(prefix, "/")
		if !grammar.IsTag(tagPart) {
			return &Field{}
		}

		if hasOcc && !grammar.IsOccurrence(occPart) {
			return &Field{}
		}

		tag, occurrence = tagPart, occPart
	}

	f := &Field{tag: tag, occurrence: occurrence}

	if payload != "" {
		subs, ok := parsePayload(payload)
		if !ok {
			return &Field{}
		}

		for _, sf := range subs {
			if sf.Value != "" {
				f.push(sf)
			}
		}
	}

	return f
}

// parsePayload scans a '$'-delimited subfield sequence. '$$' inside a value
// is a literal dollar sign; a value runs to the next unescaped '$'.
func parsePayload(s string) ([]Subfield, bool) {
	var subs []Subfield

	i := 0
	for i < len(s) {
		if s[i] != '$' {
			return nil, false
		}

		i++
		if i >= len(s) || !grammar.IsSubfieldCode(s[i]) {
			return nil, false
		}

		code := s[i]
		i++

		var b strings.Builder

		for i < len(s) {
			if s[i] == '$' {
				if i+1 < len(s) && s[i+1] == '$' {
					b.WriteByte('$')
					i += 2

					continue
				}

				break
			}

			b.WriteByte(s[i])
			i++
		}

		subs = append(subs, Subfield{Code: code, Value: b.String()})
	}

	return subs, true
}

// Append adds one subfield during the build phase. Empty values are dropped
// silently so that an empty string can never be stored; an invalid code is
// reported as InvalidSubfieldCode.
func (f *Field) Append(code byte, value string) error {
	if !grammar.IsSubfieldCode(code) {
		return errors.New(errors.InvalidSubfieldCode, "invalid subfield code %q", string(code))
	}

	if value == "" {
		return nil
	}

	f.push(Subfield{Code: code, Value: value})

	return nil
}

func (f *Field) push(sf Subfield) {
	if f.positions == nil {
		f.positions = make(map[byte][]int)
	}

	f.positions[sf.Code] = append(f.positions[sf.Code], len(f.subfields))
	f.subfields = append(f.subfields, sf)
}

// Tag returns the field tag; empty for the invalid sentinel.
func (f *Field) Tag() string {
	return f.tag
}

// Occurrence returns the two-digit occurrence, or "" when none.
func (f *Field) Occurrence() string {
	return f.occurrence
}

// FullTag returns the tag, or "tag/occurrence" when an occurrence is
// present.
func (f *Field) FullTag() string {
	if f.occurrence != "" {
		return f.tag + "/" + f.occurrence
	}

	return f.tag
}

// Ok reports whether the field carries queryable data: a valid tag and at
// least one subfield.
func (f *Field) Ok() bool {
	return f.tag != "" && len(f.subfields) > 0
}

// Len returns the number of stored subfields.
func (f *Field) Len() int {
	return len(f.subfields)
}

// ByPosition returns the i'th subfield in stored order.
func (f *Field) ByPosition(i int) (Subfield, bool) {
	if i < 0 || i >= len(f.subfields) {
		return Subfield{}, false
	}

	return f.subfields[i], true
}

// ByCode returns the value of the first subfield with the given code.
func (f *Field) ByCode(code byte) (string, bool) {
	idx := f.positions[code]
	if len(idx) == 0 {
		return "", false
	}

	return f.subfields[idx[0]].Value, true
}

// First returns the first value for code, or "" when absent.
func (f *Field) First(code byte) string {
	v, _ := f.ByCode(code)

	return v
}

// All returns every value for code in stored order. Code 0 selects every
// subfield value. Repeated codes keep their relative order.
func (f *Field) All(code byte) []string {
	if code == 0 {
		if len(f.subfields) == 0 {
			return nil
		}

		out := make([]string, len(f.subfields))
		for i, sf := range f.subfields {
			out[i] = sf.Value
		}

		return out
	}

	idx := f.positions[code]
	if len(idx) == 0 {
		return nil
	}

	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = f.subfields[j].Value
	}

	return out
}

// Codes returns the distinct subfield codes in first-seen order.
func (f *Field) Codes() []byte {
	var out []byte

	for i, sf := range f.subfields {
		if f.positions[sf.Code][0] == i {
			out = append(out, sf.Code)
		}
	}

	return out
}

// Join concatenates every subfield value in stored order.
func (f *Field) Join(sep string) string {
	return strings.Join(f.All(0), sep)
}

// Copy returns a field with the same tag and occurrence holding only the
// subfields whose codes are listed, in stored order. With no codes it
// copies every subfield.
func (f *Field) Copy(codes ...byte) *Field {
	out := &Field{tag: f.tag, occurrence: f.occurrence}

	for _, sf := range f.subfields {
		if len(codes) == 0 || slices.Contains(codes, sf.Code) {
			out.push(sf)
		}
	}

	return out
}

// Get answers a value query against this single field. The spec is a
// subfield code with optional flags per locator.ParseSubfieldSpec; filters
// rewrite or drop candidates before the cardinality contract is checked.
// Contract violations return the surviving values alongside the error.
func (f *Field) Get(spec string, filters ...filter.Step) ([]string, error) {
	sp, err := locator.ParseSubfieldSpec(spec)
	if err != nil {
		return nil, err
	}

	return f.get(sp, filter.Chain(filters))
}

func (f *Field) get(sp locator.SubfieldSpec, chain filter.Chain) ([]string, error) {
	var out []string

	for _, v := range f.All(sp.Code) {
		if v, ok := chain.Apply(v); ok {
			out = append(out, v)
		}
	}

	if sp.Code == 0 {
		// No code: every value, cardinality ignored.
		return padded(out, sp.Pad), nil
	}

	return applyCard(padded(out, sp.Pad), sp.Card, f.describe(sp.Code))
}

func (f *Field) describe(code byte) string {
	if f.tag == "" {
		return "$" + string(code)
	}

	return f.FullTag() + "$" + string(code)
}

// String serializes the field: tag(/occurrence), a space, and the '$'-coded
// subfields in stored order with '$' re-escaped as '$$'. ParseField of the
// result reproduces the field.
func (f *Field) String() string {
	var b strings.Builder

	b.WriteString(f.FullTag())

	for i, sf := range f.subfields {
		if i == 0 && b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteByte('$')
		b.WriteByte(sf.Code)
		b.WriteString(strings.ReplaceAll(sf.Value, "$", "$$"))
	}

	return b.String()
}
