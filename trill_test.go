package trill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregersn/trill/pkgs/value"
)

func TestRunAverageModeSingleDie(t *testing.T) {
	results, diags := Run("d6", Options{Average: true})
	require.Empty(t, diags)
	require.Len(t, results, 1)
	assert.True(t, value.Equal(results[0], value.Float(3.5)))
}

func TestRunSeededSamplingIsReproducible(t *testing.T) {
	first, diags := Run("4d6", Options{Seeded: true, Seed: 42})
	require.Empty(t, diags)
	second, diags := Run("4d6", Options{Seeded: true, Seed: 42})
	require.Empty(t, diags)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.True(t, value.Equal(first[0], second[0]), "same seed should reproduce the same draw")
}

func TestRunHaltsOnLexicalError(t *testing.T) {
	results, diags := Run("1 $ 2", Options{})
	assert.Nil(t, results)
	require.NotEmpty(t, diags)
	assert.Equal(t, "Scanner", string(diags[0].Kind))
}

func TestRunHaltsOnParseErrorBeforeEvaluating(t *testing.T) {
	results, diags := Run("3d6;", Options{})
	assert.Nil(t, results)
	require.NotEmpty(t, diags)
	assert.Equal(t, "Parser", string(diags[0].Kind))
}

func TestRunHaltsOnInterpreterErrorWithoutPartialResults(t *testing.T) {
	results, diags := Run("unboundname",Options{Average: true})
	assert.Nil(t, results)
	require.NotEmpty(t, diags)
	assert.Equal(t, "Interpreter", string(diags[0].Kind))
}

func TestDistributeReportsExactProbabilities(t *testing.T) {
	results, diags := Distribute("d6")
	require.Empty(t, diags)
	require.Len(t, results, 1)

	report := results[0].Report
	require.Len(t, report.Entries, 6)
	var total float64
	for _, e := range report.Entries {
		total += e.Probability
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.InDelta(t, 3.5, report.Mean, 1e-9)
}

func TestDistributeHaltsOnParseErrorBeforeComputing(t *testing.T) {
	results, diags := Distribute("3d6;")
	assert.Nil(t, results)
	require.NotEmpty(t, diags)
	assert.Equal(t, "Parser", string(diags[0].Kind))
}
