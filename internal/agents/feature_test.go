package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketcli/pkg/contracts/domain"
)

func TestAnalyzeFeatures(t *testing.T) {
	table := mustTable(t, []string{"feature"}, [][]string{
		{"wifi, Bluetooth"},
		{"WIFI"},
		{"gps"},
	})

	result, err := AnalyzeFeatures(table, FeatureConfig{Column: "feature"})
	require.NoError(t, err)

	assert.Equal(t, domain.AgentFeature, result.AgentName)
	assert.Equal(t, 1.0, result.Confidence)

	results, ok := result.Results.(domain.FeatureResults)
	require.True(t, ok)
	assert.Equal(t, 3, results.TotalUniqueFeatures)
	assert.Equal(t, 4, results.TotalMentions)

	require.Len(t, results.TopFeatures, 3)
	assert.Equal(t, domain.FeatureCount{Feature: "wifi", Count: 2}, results.TopFeatures[0])
	// bluetooth and gps tie at 1; bluetooth was seen first.
	assert.Equal(t, domain.FeatureCount{Feature: "bluetooth", Count: 1}, results.TopFeatures[1])
	assert.Equal(t, domain.FeatureCount{Feature: "gps", Count: 1}, results.TopFeatures[2])
}

func TestAnalyzeFeaturesCustomDelimiter(t *testing.T) {
	table := mustTable(t, []string{"feature"}, [][]string{
		{"wifi;gps"},
		{"wifi"},
	})

	result, err := AnalyzeFeatures(table, FeatureConfig{Column: "feature", Delimiter: ";"})
	require.NoError(t, err)

	results := result.Results.(domain.FeatureResults)
	assert.Equal(t, 2, results.TotalUniqueFeatures)
	assert.Equal(t, 3, results.TotalMentions)
}

func TestAnalyzeFeaturesSkipsEmptyTokens(t *testing.T) {
	table := mustTable(t, []string{"feature"}, [][]string{
		{"wifi, , gps,"},
		{""},
		{"n/a"},
	})

	result, err := AnalyzeFeatures(table, FeatureConfig{Column: "feature"})
	require.NoError(t, err)

	// Only the first row produced tokens.
	assert.InDelta(t, 1.0/3.0, result.Confidence, 1e-4)

	results := result.Results.(domain.FeatureResults)
	assert.Equal(t, 2, results.TotalUniqueFeatures)
	assert.Equal(t, 2, results.TotalMentions)
}

func TestAnalyzeFeaturesTopNLimit(t *testing.T) {
	table := mustTable(t, []string{"feature"}, [][]string{
		{"a,b,c,d"},
		{"a,b"},
		{"a"},
	})

	result, err := AnalyzeFeatures(table, FeatureConfig{Column: "feature", TopN: 2})
	require.NoError(t, err)

	results := result.Results.(domain.FeatureResults)
	require.Len(t, results.TopFeatures, 2)
	assert.Equal(t, "a", results.TopFeatures[0].Feature)
	assert.Equal(t, "b", results.TopFeatures[1].Feature)
	// The cap only limits the reported list, not the totals.
	assert.Equal(t, 4, results.TotalUniqueFeatures)
	assert.Equal(t, 7, results.TotalMentions)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		delimiter string
		want      []string
	}{
		{"single token", "WiFi ", ",", []string{"wifi"}},
		{"list with spaces", "wifi, GPS ,bluetooth", ",", []string{"wifi", "gps", "bluetooth"}},
		{"empty segments dropped", "wifi,,gps,", ",", []string{"wifi", "gps"}},
		{"missing cell", " na ", ",", nil},
		{"empty cell", "", ",", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.input, tt.delimiter))
		})
	}
}
