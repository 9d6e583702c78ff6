// Package filter provides composable per-value transforms applied to query
// candidates. Steps run before any cardinality bookkeeping, so an
// exactly-one contract is evaluated against post-filter survivors, not raw
// matches.
package filter

import (
	"fmt"
	"regexp"
)

// Step transforms one candidate value. The boolean reports whether the
// candidate survives; false drops it from the result set.
type Step interface {
	Apply(v string) (string, bool)
}

// Chain applies steps in order. The first step that drops a candidate wins.
type Chain []Step

// Apply runs the candidate through every step.
func (c Chain) Apply(v string) (string, bool) {
	for _, s := range c {
		var ok bool

		v, ok = s.Apply(v)
		if !ok {
			return "", false
		}
	}

	return v, true
}

// Pattern returns a step matching candidates against a regular expression.
// No match drops the candidate; a match with a capture group replaces it
// with the first capture; a match without one keeps it unchanged. The
// expression is compiled once; an invalid expression is a programmer error
// and panics, like regexp.MustCompile.
func Pattern(expr string) Step {
	return patternStep{re: regexp.MustCompile(expr)}
}

type patternStep struct {
	re *regexp.Regexp
}

func (p patternStep) Apply(v string) (string, bool) {
	m := p.re.FindStringSubmatch(v)
	if m == nil {
		return "", false
	}

	if len(m) > 1 {
		return m[1], true
	}

	return v, true
}

// Format returns a step substituting the candidate into a single-placeholder
// template, e.g. Format("(%s)"). It never drops.
func Format(template string) Step {
	return formatStep(template)
}

type formatStep string

func (f formatStep) Apply(v string) (string, bool) {
	return fmt.Sprintf(string(f), v), true
}

// Func returns a step backed by a caller-supplied function. Returning false
// drops the candidate; otherwise the returned string replaces it (return the
// input unchanged to keep it as is).
func Func(fn func(string) (string, bool)) Step {
	return funcStep(fn)
}

type funcStep func(string) (string, bool)

func (f funcStep) Apply(v string) (string, bool) {
	return f(v)
}
