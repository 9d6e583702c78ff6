package pica

import (
	"pica-query/errors"
	"pica-query/filter"
	"pica-query/locator"
)

// Select returns every field matched by the plan: alternatives in locator
// order, record order within each alternative, without short-circuiting.
func (r *Record) Select(l *locator.Locator) []*Field {
	var out []*Field

	for _, alt := range l.Alts {
		for _, f := range r.index[alt.Tag] {
			if alt.Matches(f.occurrence) {
				out = append(out, f)
			}
		}
	}

	return out
}

// SelectFirst returns the first matching field, in record order, of the
// first alternative that matches anything; later alternatives are not
// consulted once one yields a match. Nil when nothing matches.
func (r *Record) SelectFirst(l *locator.Locator) *Field {
	for _, alt := range l.Alts {
		for _, f := range r.index[alt.Tag] {
			if alt.Matches(f.occurrence) {
				return f
			}
		}
	}

	return nil
}

// Query executes a value plan: candidates are gathered field by field with
// the plan's subfield code, run through the filters, then the plan's
// cardinality is evaluated over the aggregate across all matched fields,
// not per field. Contract violations return the surviving values alongside
// the error.
func (r *Record) Query(l *locator.Locator, filters ...filter.Step) ([]string, error) {
	if !l.WantValue {
		return nil, errors.New(errors.MalformedLocator,
			"locator addresses whole fields; no subfield to collect").WithExpr(l.Expr)
	}

	chain := filter.Chain(filters)

	var out []string

	for _, alt := range l.Alts {
		sp := locator.SubfieldSpec{Code: alt.Code}

		for _, f := range r.index[alt.Tag] {
			if !alt.Matches(f.occurrence) {
				continue
			}

			vals, _ := f.get(sp, chain) // CardAny per field, never fails
			out = append(out, vals...)
		}
	}

	return applyCard(padded(out, l.Pad), l.Card, l.Expr)
}

// First returns the first field matching the locator expression, or nil
// when nothing matches or the expression is malformed. Use Select with a
// parsed plan when grammar errors must be distinguished.
func (r *Record) First(expr string) *Field {
	l, err := locator.Cached(expr)
	if err != nil {
		return nil
	}

	return r.SelectFirst(l)
}

// All returns every field matching the locator expression, in
// locator-then-record order. Empty when nothing matches or the expression
// is malformed.
func (r *Record) All(expr string) []*Field {
	l, err := locator.Cached(expr)
	if err != nil {
		return nil
	}

	return r.Select(l)
}

// Filter returns a derived record holding the matching fields. The fields
// are shared with the receiver, not copied.
func (r *Record) Filter(expr string) *Record {
	out := NewRecord()

	for _, f := range r.All(expr) {
		out.Append(f)
	}

	return out
}

// Get executes a value query expression, optionally carrying a leading
// cardinality flag evaluated over the aggregate, e.g. "!021A$a".
func (r *Record) Get(expr string, filters ...filter.Step) ([]string, error) {
	l, err := locator.Cached(expr)
	if err != nil {
		return nil, err
	}

	return r.Query(l, filters...)
}

// GetWith is Get with a caller-supplied subfield code applied uniformly to
// every alternative. Supplying a code both inline and here fails with
// DuplicateSubfield.
func (r *Record) GetWith(expr, subfield string, filters ...filter.Step) ([]string, error) {
	l, err := locator.Cached(expr)
	if err != nil {
		return nil, err
	}

	l, err = l.WithSubfield(subfield)
	if err != nil {
		return nil, err
	}

	return r.Query(l, filters...)
}

// Value returns the first value addressed by the locator expression, or ""
// when none survives.
func (r *Record) Value(expr string, filters ...filter.Step) (string, error) {
	vals, err := r.Get(expr, filters...)
	if err != nil {
		return "", err
	}

	if len(vals) == 0 {
		return "", nil
	}

	return vals[0], nil
}

// applyCard enforces a cardinality contract over post-filter survivors.
// Violations return the survivors alongside the error so callers can decide
// whether the shape mismatch is fatal.
func applyCard(values []string, card locator.Card, what string) ([]string, error) {
	switch card {
	case locator.CardOne:
		if len(values) == 0 {
			return nil, errors.New(errors.NotFound, "no value for %s, want exactly one", what)
		}

		if len(values) > 1 {
			return values, errors.New(errors.Repeated, "%d values for %s, want exactly one", len(values), what)
		}
	case locator.CardAtLeastOne:
		if len(values) == 0 {
			return nil, errors.New(errors.NotFound, "no value for %s, want at least one", what)
		}
	case locator.CardAtMostOne:
		if len(values) > 1 {
			return values[:1], nil
		}
	}

	return values, nil
}

// padded substitutes one empty-string placeholder for an otherwise empty
// result, so "absent" and "present but empty" stay distinguishable.
func padded(values []string, pad bool) []string {
	if pad && len(values) == 0 {
		return []string{""}
	}

	return values
}
