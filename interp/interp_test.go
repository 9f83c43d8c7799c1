package interp

import (
	"bytes"
	"testing"

	"github.com/gospl/spl/ir"
	"github.com/gospl/spl/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSource(t *testing.T, src string) string {
	t.Helper()
	block, err := parser.ParseProgram(src)
	require.NoError(t, err)
	program, err := ir.Build(block)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, _, err = New(&buf).Run(program)
	require.NoError(t, err)
	return buf.String()
}

// TestIfElseOutput covers an if/else with a print in each branch.
func TestIfElseOutput(t *testing.T) {
	out := runSource(t, "if 1 { print(2); } else { print(3); };")
	assert.Equal(t, "2\n", out)
}

// TestWhileLoopOutput covers a while loop that prints its counter.
func TestWhileLoopOutput(t *testing.T) {
	out := runSource(t, "let mut i = 0; while i < 3 { print(i); i = i + 1; };")
	assert.Equal(t, "0\n1\n2\n", out)
}

// TestLoopWithBreakHalts covers an infinite loop terminated by break.
func TestLoopWithBreakHalts(t *testing.T) {
	block, err := parser.ParseProgram("loop { if 1 { break; }; };")
	require.NoError(t, err)
	program, err := ir.Build(block)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, _, err = New(&buf).Run(program)
	require.NoError(t, err)
}

func TestDivisionByZeroIsError(t *testing.T) {
	block, err := parser.ParseProgram("let a = 1 / 0;")
	require.NoError(t, err)
	program, err := ir.Build(block)
	require.NoError(t, err)
	_, _, err = New(&bytes.Buffer{}).Run(program)
	assert.Error(t, err)
}

func TestModulusByZeroIsError(t *testing.T) {
	block, err := parser.ParseProgram("let a = 1 % 0;")
	require.NoError(t, err)
	program, err := ir.Build(block)
	require.NoError(t, err)
	_, _, err = New(&bytes.Buffer{}).Run(program)
	assert.Error(t, err)
}

func TestEmptyProgramProducesNoOutput(t *testing.T) {
	assert.Equal(t, "", runSource(t, ""))
}

func TestArithmeticWraps(t *testing.T) {
	block, err := parser.ParseProgram("let a = 18446744073709551615; let b = a + 1; print(b);")
	require.NoError(t, err)
	program, err := ir.Build(block)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, _, err = New(&buf).Run(program)
	require.NoError(t, err)
	assert.Equal(t, "0\n", buf.String())
}

func TestLastWrittenRegisterIsReturnedForRepl(t *testing.T) {
	block, err := parser.ParseProgram("let a = 1 + 2;")
	require.NoError(t, err)
	program, err := ir.Build(block)
	require.NoError(t, err)
	value, ok, err := New(&bytes.Buffer{}).Run(program)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), value)
}

func TestUnaryMinusOfMinimumInteger(t *testing.T) {
	// Unary minus of 0 (the unsigned "minimum integer") must wrap rather
	// than panic: 0 - 0 is still 0.
	out := runSource(t, "let a = -0; print(a);")
	assert.Equal(t, "0\n", out)
}
