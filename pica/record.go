package pica

import (
	"strings"
)

// Record is an ordered sequence of fields with a tag index for queries. The
// index and the sequence are always consistent: every appended field sits in
// exactly one index bucket, in record order.
//
// Build a record on one goroutine; afterwards it may be queried from many.
type Record struct {
	fields []*Field
	index  map[string][]*Field
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{index: make(map[string][]*Field)}
}

// ParseRecord parses a multi-line record, one field per non-blank line,
// lines separated by CR and/or LF. Malformed lines degrade to invalid
// sentinel fields contributing no queryable data; they never abort the
// parse.
func ParseRecord(text string) *Record {
	r := NewRecord()

	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		if strings.TrimSpace(line) == "" {
			continue
		}

		r.Append(ParseField(line))
	}

	return r
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}

// Append adds a field to the record and its tag index. Fields are never
// removed. Invalid fields (nil or the empty-tag sentinel) carry no
// queryable data and are ignored.
func (r *Record) Append(f *Field) {
	if f == nil || f.tag == "" {
		return
	}

	if r.index == nil {
		r.index = make(map[string][]*Field)
	}

	r.fields = append(r.fields, f)
	r.index[f.tag] = append(r.index[f.tag], f)
}

// Fields returns the record's fields in order. The slice is the record's
// own backing store; treat it as read-only.
func (r *Record) Fields() []*Field {
	return r.fields
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// String serializes the record, one field per line.
func (r *Record) String() string {
	lines := make([]string, len(r.fields))
	for i, f := range r.fields {
		lines[i] = f.String()
	}

	return strings.Join(lines, "\n")
}
