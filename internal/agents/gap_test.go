package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketcli/pkg/contracts/domain"
)

func thresholdOf(v float64) *float64 {
	return &v
}

func TestAnalyzeGapsUniformMarketHasNoGaps(t *testing.T) {
	table := mustTable(t, []string{"brand", "feature"}, [][]string{
		{"Acme", "wifi"},
		{"Acme", "gps"},
		{"Zeta", "wifi"},
		{"Zeta", "gps"},
	})

	result, err := AnalyzeGaps(table, GapConfig{BrandColumn: "brand", FeatureColumn: "feature"})
	require.NoError(t, err)

	assert.Equal(t, domain.AgentGap, result.AgentName)
	assert.Equal(t, 1.0, result.Confidence)

	results, ok := result.Results.(domain.GapResults)
	require.True(t, ok)
	assert.Equal(t, 4, results.TotalCombinations)
	assert.Equal(t, 0, results.IdentifiedGaps)
	assert.Empty(t, results.Gaps)
	assert.NotNil(t, results.Gaps)
}

func TestAnalyzeGapsMissingCombination(t *testing.T) {
	// Acme never ships gps while everything else is covered.
	table := mustTable(t, []string{"brand", "feature"}, [][]string{
		{"Acme", "wifi"},
		{"Acme", "wifi"},
		{"Zeta", "wifi"},
		{"Zeta", "gps"},
		{"Zeta", "gps"},
	})

	result, err := AnalyzeGaps(table, GapConfig{BrandColumn: "brand", FeatureColumn: "feature"})
	require.NoError(t, err)

	results := result.Results.(domain.GapResults)
	require.GreaterOrEqual(t, results.IdentifiedGaps, 1)

	found := false
	for _, gap := range results.Gaps {
		if gap.Brand == "Acme" && gap.Feature == "gps" {
			found = true
			assert.Equal(t, 0, gap.ObservedCount)
			assert.Greater(t, gap.ExpectedCount, 0.0)
			assert.Equal(t, -1.0, gap.GapScore)
		}
	}
	assert.True(t, found, "expected an Acme/gps gap, got %+v", results.Gaps)
}

func TestAnalyzeGapsSortedMostNegativeFirst(t *testing.T) {
	table := mustTable(t, []string{"brand", "feature"}, [][]string{
		{"A", "x"}, {"A", "x"}, {"A", "x"}, {"A", "y"},
		{"B", "y"}, {"B", "y"}, {"B", "y"},
		{"C", "x"}, {"C", "z"}, {"C", "z"},
	})

	result, err := AnalyzeGaps(table, GapConfig{
		BrandColumn:   "brand",
		FeatureColumn: "feature",
		Threshold:     thresholdOf(-0.4),
	})
	require.NoError(t, err)

	results := result.Results.(domain.GapResults)
	for i := 1; i < len(results.Gaps); i++ {
		assert.LessOrEqual(t, results.Gaps[i-1].GapScore, results.Gaps[i].GapScore)
	}
	for _, gap := range results.Gaps {
		assert.LessOrEqual(t, gap.GapScore, -0.4)
	}
}

func TestAnalyzeGapsZeroThresholdIsHonored(t *testing.T) {
	// In a perfectly uniform market every cell scores exactly 0, so a zero
	// threshold reports every combination while the default reports none.
	table := mustTable(t, []string{"brand", "feature"}, [][]string{
		{"Acme", "wifi"},
		{"Acme", "gps"},
		{"Zeta", "wifi"},
		{"Zeta", "gps"},
	})

	result, err := AnalyzeGaps(table, GapConfig{
		BrandColumn:   "brand",
		FeatureColumn: "feature",
		Threshold:     thresholdOf(0),
	})
	require.NoError(t, err)

	results := result.Results.(domain.GapResults)
	assert.Equal(t, 0.0, results.GapThreshold)
	assert.Equal(t, 4, results.IdentifiedGaps)
}

func TestAnalyzeGapsNilThresholdDefaults(t *testing.T) {
	table := mustTable(t, []string{"brand", "feature"}, [][]string{
		{"Acme", "wifi"},
		{"Zeta", "gps"},
	})

	result, err := AnalyzeGaps(table, GapConfig{BrandColumn: "brand", FeatureColumn: "feature"})
	require.NoError(t, err)

	results := result.Results.(domain.GapResults)
	assert.Equal(t, -0.5, results.GapThreshold)
}

func TestAnalyzeGapsTopNCapsListNotCount(t *testing.T) {
	// Three brands, three features, each brand ships exactly one feature:
	// six zero-observed cells, all scored -1.
	table := mustTable(t, []string{"brand", "feature"}, [][]string{
		{"A", "x"},
		{"B", "y"},
		{"C", "z"},
	})

	result, err := AnalyzeGaps(table, GapConfig{
		BrandColumn:   "brand",
		FeatureColumn: "feature",
		TopN:          2,
	})
	require.NoError(t, err)

	results := result.Results.(domain.GapResults)
	assert.Equal(t, 6, results.IdentifiedGaps)
	assert.Len(t, results.Gaps, 2)
}

func TestAnalyzeGapsTokenizedFeatures(t *testing.T) {
	table := mustTable(t, []string{"brand", "feature"}, [][]string{
		{"Acme", "wifi, gps"},
		{"Zeta", "wifi"},
	})

	result, err := AnalyzeGaps(table, GapConfig{BrandColumn: "brand", FeatureColumn: "feature"})
	require.NoError(t, err)

	results := result.Results.(domain.GapResults)
	// Two brands by two features.
	assert.Equal(t, 4, results.TotalCombinations)
}

func TestAnalyzeGapsNoObservations(t *testing.T) {
	table := mustTable(t, []string{"brand", "feature"}, [][]string{
		{"", "wifi"},
		{"Acme", ""},
	})

	result, err := AnalyzeGaps(table, GapConfig{BrandColumn: "brand", FeatureColumn: "feature"})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Confidence)
	results := result.Results.(domain.GapResults)
	assert.Equal(t, 0, results.TotalCombinations)
	assert.Empty(t, results.Gaps)
	assert.NotNil(t, results.Gaps)
}

func TestAnalyzeGapsConfidenceWithinBounds(t *testing.T) {
	table := mustTable(t, []string{"brand", "feature"}, [][]string{
		{"Acme", "wifi"},
		{"Zeta", "gps, radar"},
		{"Beta", "wifi, gps"},
	})

	result, err := AnalyzeGaps(table, GapConfig{BrandColumn: "brand", FeatureColumn: "feature"})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}
