// Package errors defines the error taxonomy shared by the pica-query
// packages. Locator-grammar kinds (MalformedLocator, MixedLocator,
// DuplicateSubfield) indicate a bad query definition and surface immediately
// from parse APIs. Data-shape kinds (NotFound, Repeated) are returned paired
// with a possibly partial result, never panicked, because record data
// legitimately varies in shape and callers decide case by case whether a
// mismatch is fatal.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a library error.
type Kind int

//go:generate stringer -type=Kind -output=kind_string.go

const (
	// MalformedLocator reports a locator or subfield spec that violates the
	// query grammar.
	MalformedLocator Kind = iota
	// MixedLocator reports alternatives that disagree on whether a subfield
	// is addressed.
	MixedLocator
	// DuplicateSubfield reports a subfield supplied both inline and as a
	// parameter.
	DuplicateSubfield
	// InvalidSubfieldCode reports a subfield code outside [a-zA-Z0-9].
	InvalidSubfieldCode
	// NotFound reports a cardinality contract requiring a value where none
	// matched.
	NotFound
	// Repeated reports an exactly-one contract met by more than one value.
	Repeated
	// CallbackFailure reports a caller-supplied callback that returned an
	// error or panicked.
	CallbackFailure
)

// Error is the library error type. Expr carries the offending locator or
// subfield spec when one is known.
type Error struct {
	Kind    Kind
	Expr    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.String())

	if e.Expr != "" {
		fmt.Fprintf(&b, " (%s)", e.Expr)
	}

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind wrapping an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithExpr returns a copy of the error carrying the offending expression.
func (e *Error) WithExpr(expr string) *Error {
	out := *e
	out.Expr = expr

	return &out
}

// KindOf returns the kind of a library error. The boolean is false for nil
// errors and errors from outside this package.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}

	return 0, false
}

// Is reports whether the error carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)

	return ok && k == kind
}

// IsNotFound reports whether the error is a NotFound cardinality failure.
func IsNotFound(err error) bool {
	return Is(err, NotFound)
}

// IsRepeated reports whether the error is a Repeated cardinality failure.
func IsRepeated(err error) bool {
	return Is(err, Repeated)
}

// IsGrammar reports whether the error is a locator-grammar failure, i.e. a
// bad query definition rather than unexpected record data.
func IsGrammar(err error) bool {
	k, ok := KindOf(err)

	return ok && (k == MalformedLocator || k == MixedLocator || k == DuplicateSubfield)
}

// Combine joins all non-nil errors into one, or returns nil when there are
// none. The result matches errors.Is/As against every member.
func Combine(errs ...error) error {
	nonNil := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}

	return errors.Join(nonNil...)
}
