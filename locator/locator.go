// Package locator implements the query mini-language addressing fields and
// subfield values of a record.
//
// A locator is one or more '|'-separated alternatives, each of the form
//
//	TAG [OCC] [$CODE]
//
// where TAG is three digits plus an uppercase letter or '@', and OCC is one
// of: absent (any occurrence, including none), a bare '/' (no occurrence),
// '/dd' (exact two-digit occurrence), or '/xx' (some non-empty occurrence).
// An optional leading cardinality flag ('!', '?', '+', '*') constrains the
// aggregated result of a value query.
//
// Parsing a locator yields an immutable query plan that may be cached and
// shared across records and goroutines.
package locator

import (
	"strings"
	"sync"

	"pica-query/errors"
	"pica-query/internal/grammar"
)

// Card constrains how many values a query may legitimately yield.
type Card int

const (
	// CardAny accepts any count, never fails ('*' or no flag).
	CardAny Card = iota
	// CardOne requires exactly one value ('!').
	CardOne
	// CardAtMostOne takes the first value, empty if none, never fails ('?').
	CardAtMostOne
	// CardAtLeastOne requires one or more values ('+').
	CardAtLeastOne
)

// OccMatch selects fields by their occurrence.
type OccMatch int

const (
	// OccAny matches any occurrence, including none.
	OccAny OccMatch = iota
	// OccNone matches fields carrying no occurrence.
	OccNone
	// OccSome matches fields carrying some non-empty occurrence.
	OccSome
	// OccExact matches one exact two-digit occurrence.
	OccExact
)

// Alt is one '|'-separated alternative of a locator.
type Alt struct {
	Tag      string
	Occ      OccMatch
	OccValue string // set for OccExact
	Code     byte   // 0 when the alternative addresses whole fields
}

// Matches reports whether a field occurrence satisfies the alternative.
func (a Alt) Matches(occurrence string) bool {
	switch a.Occ {
	case OccNone:
		return occurrence == ""
	case OccSome:
		return occurrence != ""
	case OccExact:
		return occurrence == a.OccValue
	default:
		return true
	}
}

// Locator is a parsed query plan. It is immutable after Parse and safe to
// share across goroutines; derive variants with WithSubfield instead of
// mutating fields.
type Locator struct {
	Expr      string
	Alts      []Alt
	WantValue bool // a subfield is addressed: the query yields values, not fields
	Card      Card
	Pad       bool // substitute one empty string for an otherwise empty result
}

// Parse builds a query plan from a locator expression. Grammar violations
// are programmer errors and fail fast: MalformedLocator for syntax,
// MixedLocator when some but not all alternatives address a subfield.
func Parse(expr string) (*Locator, error) {
	l := &Locator{Expr: expr}

	rest := expr
	if rest != "" {
		switch rest[0] {
		case '!':
			l.Card = CardOne
			rest = rest[1:]
		case '?':
			l.Card = CardAtMostOne
			rest = rest[1:]
		case '+':
			l.Card = CardAtLeastOne
			rest = rest[1:]
		case '*':
			l.Card = CardAny
			rest = rest[1:]
		}
	}

	if rest == "" {
		return nil, errors.New(errors.MalformedLocator, "empty locator").WithExpr(expr)
	}

	withCode, withoutCode := 0, 0

	for _, part := range strings.Split(rest, "|") {
		alt, err := parseAlt(strings.TrimSpace(part))
		if err != nil {
			return nil, err.WithExpr(expr)
		}

		if alt.Code != 0 {
			withCode++
		} else {
			withoutCode++
		}

		l.Alts = append(l.Alts, alt)
	}

	if withCode > 0 && withoutCode > 0 {
		return nil, errors.New(errors.MixedLocator,
			"some alternatives address a subfield and some do not").WithExpr(expr)
	}

	l.WantValue = withCode > 0

	return l, nil
}

// MustParse is like Parse but panics on error. Intended for locators known
// at compile time.
func MustParse(expr string) *Locator {
	l, err := Parse(expr)
	if err != nil {
		panic(err)
	}

	return l
}

func parseAlt(s string) (Alt, *errors.Error) {
	var a Alt

	if len(s) < 4 || !grammar.IsTag(s[:4]) {
		return a, errors.New(errors.MalformedLocator, "alternative %q: want tag of three digits plus letter or '@'", s)
	}

	a.Tag = s[:4]
	s = s[4:]

	if strings.HasPrefix(s, "/") {
		s = s[1:]

		switch {
		case s == "" || s[0] == '$':
			a.Occ = OccNone
		case strings.HasPrefix(s, "xx"):
			a.Occ = OccSome
			s = s[2:]
		case len(s) >= 2 && grammar.IsOccurrence(s[:2]):
			a.Occ = OccExact
			a.OccValue = s[:2]
			s = s[2:]
		default:
			return a, errors.New(errors.MalformedLocator, "occurrence must be two digits, 'xx', or empty")
		}
	}

	if s == "" {
		return a, nil
	}

	if len(s) != 2 || s[0] != '$' || !grammar.IsSubfieldCode(s[1]) {
		return a, errors.New(errors.MalformedLocator, "trailing %q: want a single '$'-prefixed subfield code", s)
	}

	a.Code = s[1]

	return a, nil
}

// WithSubfield derives a plan with a caller-supplied subfield code applied
// uniformly to every alternative. Supplying a code when the locator already
// addresses a subfield inline fails with DuplicateSubfield. An empty code
// returns the plan unchanged.
func (l *Locator) WithSubfield(code string) (*Locator, error) {
	if code == "" {
		return l, nil
	}

	if len(code) != 1 || !grammar.IsSubfieldCode(code[0]) {
		return nil, errors.New(errors.InvalidSubfieldCode, "invalid subfield code %q", code).WithExpr(l.Expr)
	}

	if l.WantValue {
		return nil, errors.New(errors.DuplicateSubfield,
			"locator already addresses a subfield; cannot also apply %q", code).WithExpr(l.Expr)
	}

	out := &Locator{
		Expr:      l.Expr + "$" + code,
		Alts:      make([]Alt, len(l.Alts)),
		WantValue: true,
		Card:      l.Card,
		Pad:       l.Pad,
	}
	copy(out.Alts, l.Alts)

	for i := range out.Alts {
		out.Alts[i].Code = code[0]
	}

	return out, nil
}

// SubfieldSpec is a field-level value query: an optional code, a cardinality
// flag, and an optional empty-string pad.
type SubfieldSpec struct {
	Code byte // 0 selects every subfield value, cardinality ignored
	Card Card
	Pad  bool
}

// ParseSubfieldSpec parses field-level specs like "a", "a!", "a?", "a+",
// "a*", "a_", "a!_". An empty spec selects every subfield value. The '_'
// flag substitutes one empty-string placeholder when the result would
// otherwise be empty, distinguishing an absent subfield from a present but
// filtered-to-empty one.
func ParseSubfieldSpec(s string) (SubfieldSpec, error) {
	var spec SubfieldSpec

	if s == "" {
		return spec, nil
	}

	if !grammar.IsSubfieldCode(s[0]) {
		return spec, errors.New(errors.InvalidSubfieldCode, "invalid subfield code %q", s[:1]).WithExpr(s)
	}

	spec.Code = s[0]

	for _, c := range []byte(s[1:]) {
		switch c {
		case '!':
			spec.Card = CardOne
		case '?':
			spec.Card = CardAtMostOne
		case '+':
			spec.Card = CardAtLeastOne
		case '*':
			spec.Card = CardAny
		case '_':
			spec.Pad = true
		default:
			return SubfieldSpec{}, errors.New(errors.MalformedLocator,
				"unknown flag %q, want one of '!', '?', '+', '*', '_'", string(c)).WithExpr(s)
		}
	}

	return spec, nil
}

// Plans are immutable, so the cache hands the same plan to every caller of
// the same expression.
var cache = struct {
	sync.RWMutex
	plans map[string]*Locator
}{plans: make(map[string]*Locator)}

// Cached returns the shared plan for expr, parsing it on first use. Parse
// errors are not cached.
func Cached(expr string) (*Locator, error) {
	cache.RLock()
	l, ok := cache.plans[expr]
	cache.RUnlock()

	if ok {
		return l, nil
	}

	l, err := Parse(expr)
	if err != nil {
		return nil, err
	}

	cache.Lock()
	cache.plans[expr] = l
	cache.Unlock()

	return l, nil
}
