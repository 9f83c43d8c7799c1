package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindAndLookupResolvesInnermostFirst(t *testing.T) {
	outer := New(nil)
	outer.Bind("x", 1, false)

	inner := New(outer)
	inner.Bind("x", 2, true)

	reg, ok := inner.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, 2, reg)

	reg, ok = outer.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, 1, reg)
}

func TestLookupMissesReturnFalse(t *testing.T) {
	s := New(nil)
	_, ok := s.Lookup("nope")
	assert.False(t, ok)
}

func TestIsMutableReflectsBindDeclaration(t *testing.T) {
	s := New(nil)
	s.Bind("a", 1, false)
	s.Bind("b", 2, true)

	assert.False(t, s.IsMutable("a"))
	assert.True(t, s.IsMutable("b"))
	assert.False(t, s.IsMutable("undeclared"))
}

func TestIsMutableWalksToOuterFrame(t *testing.T) {
	outer := New(nil)
	outer.Bind("x", 1, true)
	inner := New(outer)

	assert.True(t, inner.IsMutable("x"))
}
