package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregersn/trill/pkgs/errors"
	"github.com/gregersn/trill/pkgs/lexer"
	"github.com/gregersn/trill/pkgs/parser"
	"github.com/gregersn/trill/pkgs/randsrc"
	"github.com/gregersn/trill/pkgs/value"
)

func run(t *testing.T, src string, average bool, seed int64) ([]value.Value, *errors.Handler) {
	t.Helper()
	handler := errors.New()
	toks := lexer.New(src, handler).Tokenize()
	require.False(t, handler.HasErrors(), "unexpected lexer errors: %v", handler.Errors)

	nodes := parser.New(toks, handler).Parse()
	require.False(t, handler.HasErrors(), "unexpected parser errors: %v", handler.Errors)

	interp := New(handler, randsrc.New(seed))
	results, err := interp.Run(nodes, average)
	if err != nil {
		return nil, handler
	}
	_ = err
	return results, handler
}

// S1: a single die in average mode reports its expected value.
func TestSeedScenarioSingleDieAverage(t *testing.T) {
	results, handler := run(t, "d6", true, 1)
	require.False(t, handler.HasErrors())
	require.Len(t, results, 1)
	assert.True(t, value.Equal(results[0], value.Float(3.5)), "got %v", results[0])
}

// S2: sum of the largest 3 of 4d6 in average mode.
func TestSeedScenarioSumLargestAverage(t *testing.T) {
	results, handler := run(t, "sum largest 3 4d6", true, 1)
	require.False(t, handler.HasErrors())
	require.Len(t, results, 1)
	assert.True(t, value.Equal(results[0], value.Float(10.5)), "got %v", results[0])
}

// S3: picking the whole bag in sampling mode preserves order and the
// clamp-to-bag-size rule (spec.md's Open Question decision).
func TestSeedScenarioPickWholeBagPreservesOrder(t *testing.T) {
	results, handler := run(t, "{1,2,3} pick 4", false, 1)
	require.False(t, handler.HasErrors())
	require.Len(t, results, 1)
	want := value.List([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	assert.True(t, value.Equal(results[0], want), "got %v", results[0])
}

// S4: assignment and AND-short-circuit in a conditional.
func TestSeedScenarioAssignAndConditional(t *testing.T) {
	results, handler := run(t, "x := 2; y := 3; if x = 2 & y = 3 then 42 else 24", true, 1)
	require.False(t, handler.HasErrors())
	require.Len(t, results, 3)
	assert.True(t, value.Equal(results[2], value.Int(42)), "got %v", results[2])
}

// AND short-circuits: a falsy left operand must never evaluate the right
// side (which would otherwise fail on an unbound variable).
func TestAndShortCircuitsOnFalsyLeft(t *testing.T) {
	results, handler := run(t, "0 & unbound", true, 1)
	require.False(t, handler.HasErrors())
	require.Len(t, results, 1)
	assert.True(t, value.Equal(results[0], value.Int(0)))
}

// DEFAULT (~) returns the left side unless it is falsy.
func TestDefaultOperator(t *testing.T) {
	results, handler := run(t, "0 ~ 5", true, 1)
	require.False(t, handler.HasErrors())
	assert.True(t, value.Equal(results[0], value.Int(5)))

	results, handler = run(t, "3 ~ 5", true, 1)
	require.False(t, handler.HasErrors())
	assert.True(t, value.Equal(results[0], value.Int(3)))
}

// S5: repeat/until in average mode runs its action exactly once, since
// average mode never consults the random qualifier loop.
func TestSeedScenarioRepeatUntilAverageRunsOnce(t *testing.T) {
	results, handler := run(t, "repeat x := d8 until x < 8", true, 1)
	require.False(t, handler.HasErrors())
	require.Len(t, results, 1)
	assert.True(t, value.Equal(results[0], value.Float(4.5)), "got %v", results[0])
}

// S6: a text-align chain produces the exact padded block.
func TestSeedScenarioTextAlignChain(t *testing.T) {
	results, handler := run(t, `"1" |> "two" |> "three"`, true, 1)
	require.False(t, handler.HasErrors())
	require.Len(t, results, 1)
	assert.Equal(t, "1    \ntwo  \nthree", results[0].AsString())
}

// S7: a trailing semicolon with nothing after it is a parse error, not an
// interpreter error, and evaluation never runs.
func TestSeedScenarioTrailingSemicolonIsAParseError(t *testing.T) {
	handler := errors.New()
	toks := lexer.New("3d6;", handler).Tokenize()
	require.False(t, handler.HasErrors())

	nodes := parser.New(toks, handler).Parse()
	require.True(t, handler.HasErrors())
	first := handler.Errors[0]
	assert.Equal(t, errors.Parser, first.Kind)
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, 3, first.Column)
	assert.Equal(t, "Parser-error at line 1, column 3: Unexpected semicolon: ;", first.Error())
	_ = nodes
}

func TestUnboundIdentifierIsAFatalInterpreterError(t *testing.T) {
	handler := errors.New()
	toks := lexer.New("nope", handler).Tokenize()
	nodes := parser.New(toks, handler).Parse()
	require.False(t, handler.HasErrors())

	interp := New(handler, randsrc.New(1))
	results, err := interp.Run(nodes, true)
	require.Nil(t, results)
	require.Error(t, err)

	diag, ok := err.(errors.Diagnostic)
	require.True(t, ok)
	assert.Equal(t, errors.Interpreter, diag.Kind)
}

func TestFunctionDeclarationsAreHoistedBeforeUse(t *testing.T) {
	results, handler := run(t, "call double(5); function double(n) = n * 2", true, 1)
	require.False(t, handler.HasErrors())
	require.Len(t, results, 1)
	assert.True(t, value.Equal(results[0], value.Int(10)), "got %v", results[0])
}

func TestCompositionalSumsAListViaUnionOperator(t *testing.T) {
	results, handler := run(t, "compositional total(0, +, +); call total({1,2,3,4})", true, 1)
	require.False(t, handler.HasErrors())
	require.Len(t, results, 1)
	assert.True(t, value.Equal(results[0], value.Int(10)), "got %v", results[0])
}

func TestForeachCollectsOneResultPerElement(t *testing.T) {
	results, handler := run(t, "foreach x in {1,2,3} do x * 2", true, 1)
	require.False(t, handler.HasErrors())
	require.Len(t, results, 1)
	want := value.List([]value.Value{value.Int(2), value.Int(4), value.Int(6)})
	assert.True(t, value.Equal(results[0], want), "got %v", results[0])
}

func TestBlockEvaluatesToItsLastExpression(t *testing.T) {
	results, handler := run(t, "(x := 1; x := x + 1; x)", true, 1)
	require.False(t, handler.HasErrors())
	require.Len(t, results, 1)
	assert.True(t, value.Equal(results[0], value.Int(2)), "got %v", results[0])
}

// Sampling-mode dice stay within the declared range across many draws.
func TestDiceSamplingStaysInRange(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		results, handler := run(t, "d6", false, seed)
		require.False(t, handler.HasErrors())
		require.Len(t, results, 1)
		n := results[0].AsInt()
		assert.GreaterOrEqual(t, n, int64(1))
		assert.LessOrEqual(t, n, int64(6))
	}
}

func TestBinaryDiceProducesOneRollPerCount(t *testing.T) {
	results, handler := run(t, "4d6", false, 7)
	require.False(t, handler.HasErrors())
	require.Len(t, results, 1)
	list := results[0].AsList()
	require.Len(t, list, 4)
	for _, v := range list {
		assert.GreaterOrEqual(t, v.AsInt(), int64(1))
		assert.LessOrEqual(t, v.AsInt(), int64(6))
	}
}
