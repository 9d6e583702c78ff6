package pica

import (
	"pica-query/errors"
	"pica-query/filter"
	"pica-query/locator"
)

// Rule is one named query of a Map batch: either a locator (with optional
// uniform subfield, cardinality flag, and filters) or a callback over the
// whole record. Exactly one of Locator and Func must be set; Func wins when
// both are.
type Rule struct {
	// Card is "!", "?", "+", "*" or ""; it is evaluated over the aggregated
	// result of the locator.
	Card string
	// Locator addresses the fields or values to collect.
	Locator string
	// Subfield optionally applies one code uniformly to every alternative.
	Subfield string
	// Filters rewrite or drop candidate values before cardinality checks.
	Filters []filter.Step
	// Func computes the value from the whole record instead of a locator.
	// Errors and panics become per-key CallbackFailure entries.
	Func func(*Record) (any, error)
}

// Map runs every rule against the record, producing a best-effort success
// map and a precise error map. Keys with empty results (empty string or
// empty list) are omitted from the success map; the two maps are
// independent per key. A failing callback never aborts the batch.
func (r *Record) Map(rules map[string]Rule) (map[string]any, map[string]error) {
	values := make(map[string]any, len(rules))
	errMap := make(map[string]error)

	for key, rule := range rules {
		v, err := r.applyRule(rule)
		if err != nil {
			errMap[key] = err
		}

		switch val := v.(type) {
		case nil:
		case string:
			if val != "" {
				values[key] = val
			}
		case []string:
			if len(val) > 0 {
				values[key] = val
			}
		default:
			values[key] = val
		}
	}

	if len(errMap) == 0 {
		return values, nil
	}

	return values, errMap
}

func (r *Record) applyRule(rule Rule) (any, error) {
	if rule.Func != nil {
		return r.callRule(rule.Func)
	}

	l, err := locator.Cached(rule.Card + rule.Locator)
	if err != nil {
		return nil, err
	}

	l, err = l.WithSubfield(rule.Subfield)
	if err != nil {
		return nil, err
	}

	if !l.WantValue {
		return fieldRuleResult(r.Select(l), l)
	}

	vals, err := r.Query(l, rule.Filters...)
	if err != nil {
		return nil, err
	}

	if singleValued(l.Card) {
		if len(vals) == 0 {
			return "", nil
		}

		return vals[0], nil
	}

	return vals, nil
}

// callRule isolates a callback: a panic is recovered into a per-key error
// instead of aborting the whole batch.
func (r *Record) callRule(fn func(*Record) (any, error)) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, err = nil, errors.New(errors.CallbackFailure, "callback panicked: %v", p)
		}
	}()

	v, err = fn(r)
	if err != nil {
		return nil, errors.Wrap(errors.CallbackFailure, err, "callback failed")
	}

	return v, nil
}

// fieldRuleResult maps whole-field rules to serialized field lines, under
// the same cardinality contract as value rules.
func fieldRuleResult(fields []*Field, l *locator.Locator) (any, error) {
	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = f.String()
	}

	lines, err := applyCard(lines, l.Card, l.Expr)
	if err != nil {
		return nil, err
	}

	if singleValued(l.Card) {
		if len(lines) == 0 {
			return "", nil
		}

		return lines[0], nil
	}

	return lines, nil
}

func singleValued(card locator.Card) bool {
	return card == locator.CardOne || card == locator.CardAtMostOne
}
