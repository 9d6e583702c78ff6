package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{MalformedLocator, "MalformedLocator"},
		{MixedLocator, "MixedLocator"},
		{DuplicateSubfield, "DuplicateSubfield"},
		{InvalidSubfieldCode, "InvalidSubfieldCode"},
		{NotFound, "NotFound"},
		{Repeated, "Repeated"},
		{CallbackFailure, "CallbackFailure"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}

	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestErrorMessage(t *testing.T) {
	err := New(NotFound, "no value for %s", "021A$a")
	assert.Equal(t, "NotFound: no value for 021A$a", err.Error())

	withExpr := err.WithExpr("!021A$a")
	assert.Equal(t, "NotFound (!021A$a): no value for 021A$a", withExpr.Error())

	// WithExpr copies; the original stays untouched.
	assert.Empty(t, err.Expr)
}

func TestWrapUnwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(CallbackFailure, cause, "callback failed")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "CallbackFailure: callback failed: boom", err.Error())
}

func TestKindOf(t *testing.T) {
	k, ok := KindOf(New(Repeated, "two values"))
	require.True(t, ok)
	assert.Equal(t, Repeated, k)

	_, ok = KindOf(nil)
	assert.False(t, ok)

	_, ok = KindOf(fmt.Errorf("plain"))
	assert.False(t, ok)

	// Wrapped library errors are still recognized.
	wrapped := fmt.Errorf("context: %w", New(NotFound, "gone"))
	k, ok = KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, NotFound, k)
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(New(NotFound, "x")))
	assert.False(t, IsNotFound(New(Repeated, "x")))
	assert.True(t, IsRepeated(New(Repeated, "x")))

	assert.True(t, IsGrammar(New(MalformedLocator, "x")))
	assert.True(t, IsGrammar(New(MixedLocator, "x")))
	assert.True(t, IsGrammar(New(DuplicateSubfield, "x")))
	assert.False(t, IsGrammar(New(NotFound, "x")))
	assert.False(t, IsGrammar(nil))
}

func TestCombine(t *testing.T) {
	assert.NoError(t, Combine())
	assert.NoError(t, Combine(nil, nil))

	a := New(NotFound, "a")
	b := fmt.Errorf("b")

	err := Combine(nil, a, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, a)
	assert.ErrorIs(t, err, b)
	assert.True(t, IsNotFound(err))
}
