package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentByName(t *testing.T) {
	payload := AggregatedPayload{
		Agents: []AgentResult{
			{AgentName: AgentBrand},
			{AgentName: AgentPricing},
		},
	}

	require.NotNil(t, payload.AgentByName(AgentBrand))
	assert.Equal(t, AgentPricing, payload.AgentByName(AgentPricing).AgentName)
	assert.Nil(t, payload.AgentByName(AgentGap))
}

func TestAggregatedPayloadJSONShape(t *testing.T) {
	payload := AggregatedPayload{
		RunID:        "run-1",
		GeneratedAt:  "2026-08-25T10:00:00Z",
		TotalRecords: 2,
		Agents: []AgentResult{{
			AgentName:  AgentBrand,
			Results:    BrandResults{TotalUniqueBrands: 1},
			Confidence: 0.5,
			Timestamp:  "2026-08-25T10:00:00Z",
		}},
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "run-1", decoded["run_id"])
	assert.NotContains(t, decoded, "llm_summary")
	assert.NotContains(t, decoded, "summary_error")

	agents := decoded["agents"].([]interface{})
	agent := agents[0].(map[string]interface{})
	assert.Equal(t, "brand_agent", agent["agent_name"])
	assert.Equal(t, 0.5, agent["confidence"])

	results := agent["results"].(map[string]interface{})
	assert.Equal(t, float64(1), results["total_unique_brands"])
}

func TestPricingResultsNullStatistics(t *testing.T) {
	data, err := json.Marshal(PricingResults{TotalRecords: 3})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["price_statistics"])
	assert.Nil(t, decoded["optimal_price_range"])
}
