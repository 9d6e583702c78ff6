package pica

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pica-query/errors"
	"pica-query/filter"
	"pica-query/locator"
)

const sampleRecord = "003@ $012345\r\n" +
	"021A $aFreiheit und Verantwortung\n" +
	"028A $dRainer$aKuhlen\n" +
	"\n" +
	"028A/01 $dFirst$aAuthor\n" +
	"028A/02 $dSecond$aWriter\n" +
	"045F $aDDC23\n" +
	"045F $aDDC42\n"

func TestParseRecord(t *testing.T) {
	r := ParseRecord(sampleRecord)

	assert.Equal(t, 7, r.Len())
	assert.Equal(t, "003@", r.Fields()[0].Tag())
	assert.Equal(t, "045F", r.Fields()[6].Tag())
}

func TestParseRecordSkipsMalformedLines(t *testing.T) {
	r := ParseRecord("021A $aGood\nnot a field line\n028A $aAlso good\n")

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "021A", r.Fields()[0].Tag())
	assert.Equal(t, "028A", r.Fields()[1].Tag())
}

func TestAppendIgnoresInvalidFields(t *testing.T) {
	r := NewRecord()
	r.Append(nil)
	r.Append(&Field{}) // sentinel

	assert.Zero(t, r.Len())
}

func TestFirstOccurrenceMatching(t *testing.T) {
	r := ParseRecord(sampleRecord)

	// Any occurrence, including none.
	f := r.First("028A")
	require.NotNil(t, f)
	assert.Equal(t, "028A", f.FullTag())

	// Only empty-occurrence fields.
	f = r.First("028A/")
	require.NotNil(t, f)
	assert.Equal(t, "Kuhlen", f.First('a'))

	// Only non-empty occurrences.
	f = r.First("028A/xx")
	require.NotNil(t, f)
	assert.Equal(t, "028A/01", f.FullTag())

	// Exact occurrence.
	f = r.First("028A/02")
	require.NotNil(t, f)
	assert.Equal(t, "Second", f.First('d'))

	assert.Nil(t, r.First("028A/03"))
	assert.Nil(t, r.First("010@"))
}

func TestFirstMalformedExpr(t *testing.T) {
	r := ParseRecord(sampleRecord)

	assert.Nil(t, r.First("bogus"))
	assert.Empty(t, r.All("bogus"))
}

func TestFirstShortCircuitsAlternatives(t *testing.T) {
	r := ParseRecord(sampleRecord)

	// 045F matches, so the 021A alternative is never consulted.
	f := r.First("045F|021A")
	require.NotNil(t, f)
	assert.Equal(t, "DDC23", f.First('a'))

	// First alternative without matches falls through to the next.
	f = r.First("010@|021A")
	require.NotNil(t, f)
	assert.Equal(t, "021A", f.Tag())
}

func TestAllAccumulatesAlternatives(t *testing.T) {
	r := ParseRecord(sampleRecord)

	fields := r.All("045F|021A")
	require.Len(t, fields, 3)

	// Locator order first, record order within.
	assert.Equal(t, "DDC23", fields[0].First('a'))
	assert.Equal(t, "DDC42", fields[1].First('a'))
	assert.Equal(t, "021A", fields[2].Tag())
}

func TestAllOccurrences(t *testing.T) {
	r := ParseRecord(sampleRecord)

	assert.Len(t, r.All("028A"), 3)
	assert.Len(t, r.All("028A/"), 1)
	assert.Len(t, r.All("028A/xx"), 2)
	assert.Len(t, r.All("028A/01"), 1)
}

func TestFilterSharesFields(t *testing.T) {
	r := ParseRecord(sampleRecord)

	sub := r.Filter("028A/xx")
	require.Equal(t, 2, sub.Len())

	// Derived records reference the same field values.
	assert.Same(t, r.All("028A/01")[0], sub.Fields()[0])
}

func TestGetValues(t *testing.T) {
	r := ParseRecord(sampleRecord)

	vals, err := r.Get("045F$a")
	require.NoError(t, err)
	assert.Equal(t, []string{"DDC23", "DDC42"}, vals)

	// Aggregate across all matched fields, not per field.
	_, err = r.Get("!045F$a")
	require.Error(t, err)
	assert.True(t, errors.IsRepeated(err))

	vals, err = r.Get("!021A$a")
	require.NoError(t, err)
	assert.Equal(t, []string{"Freiheit und Verantwortung"}, vals)

	vals, err = r.Get("?045F$a")
	require.NoError(t, err)
	assert.Equal(t, []string{"DDC23"}, vals)

	_, err = r.Get("+010@$a")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestGetWithFilters(t *testing.T) {
	r := ParseRecord(sampleRecord)

	vals, err := r.Get("045F$a", filter.Pattern(`^DDC(\d+)`))
	require.NoError(t, err)
	assert.Equal(t, []string{"23", "42"}, vals)

	// Filters run before the aggregate cardinality check.
	vals, err = r.Get("!045F$a", filter.Pattern(`^DDC(23)`))
	require.NoError(t, err)
	assert.Equal(t, []string{"23"}, vals)
}

func TestGetValuesAcrossSubfieldAlternatives(t *testing.T) {
	r := ParseRecord(sampleRecord)

	vals, err := r.Get("045F$a|021A$a")
	require.NoError(t, err)
	assert.Equal(t, []string{"DDC23", "DDC42", "Freiheit und Verantwortung"}, vals)
}

func TestGetFieldLocatorFails(t *testing.T) {
	r := ParseRecord(sampleRecord)

	_, err := r.Get("021A")
	require.Error(t, err)
	assert.True(t, errors.IsGrammar(err))
}

func TestGetWith(t *testing.T) {
	r := ParseRecord(sampleRecord)

	vals, err := r.GetWith("045F", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"DDC23", "DDC42"}, vals)

	// Inline plus parameter is a duplicate.
	_, err = r.GetWith("045F$a", "a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.DuplicateSubfield))
}

func TestValue(t *testing.T) {
	r := ParseRecord(sampleRecord)

	v, err := r.Value("045F$a")
	require.NoError(t, err)
	assert.Equal(t, "DDC23", v)

	v, err = r.Value("010@$a")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestQueryPrecompiledPlan(t *testing.T) {
	r := ParseRecord(sampleRecord)
	l := locator.MustParse("028A/xx$d")

	vals, err := r.Query(l)
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second"}, vals)
}

func TestRecordString(t *testing.T) {
	r := ParseRecord("021A $aFoo\n045F $aDDC23\n")

	text := r.String()
	assert.Equal(t, "021A $aFoo\n045F $aDDC23", text)

	again := ParseRecord(text)
	assert.Equal(t, r.Len(), again.Len())
}
