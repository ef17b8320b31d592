package agents

import (
	"sort"

	"marketcli/internal/dataset"
	"marketcli/pkg/contracts/domain"
)

// FeatureConfig configures the feature agent
type FeatureConfig struct {
	Column    string
	TopN      int
	Delimiter string
}

// AnalyzeFeatures tokenizes the feature column (cells hold a single token
// or a delimiter-separated list), counts token frequency across all rows,
// and reports the top-N tokens by descending count with first-seen tie
// order. Confidence is the fraction of rows that produced at least one
// non-empty token.
func AnalyzeFeatures(t *dataset.Table, cfg FeatureConfig) (domain.AgentResult, error) {
	if cfg.TopN <= 0 {
		cfg.TopN = 15
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = ","
	}

	cells, err := t.Column(cfg.Column)
	if err != nil {
		return domain.AgentResult{}, err
	}

	counts := make(map[string]int)
	var firstSeen []string
	rowsWithTokens := 0
	totalMentions := 0

	for _, cell := range cells {
		tokens := tokenize(cell, cfg.Delimiter)
		if len(tokens) == 0 {
			continue
		}
		rowsWithTokens++
		for _, token := range tokens {
			if counts[token] == 0 {
				firstSeen = append(firstSeen, token)
			}
			counts[token]++
			totalMentions++
		}
	}

	ordered := make([]string, len(firstSeen))
	copy(ordered, firstSeen)
	sort.SliceStable(ordered, func(i, j int) bool {
		return counts[ordered[i]] > counts[ordered[j]]
	})

	topN := cfg.TopN
	if topN > len(ordered) {
		topN = len(ordered)
	}

	top := make([]domain.FeatureCount, 0, topN)
	for _, token := range ordered[:topN] {
		top = append(top, domain.FeatureCount{Feature: token, Count: counts[token]})
	}

	confidence := 0.0
	if t.RowCount() > 0 {
		confidence = float64(rowsWithTokens) / float64(t.RowCount())
	}

	return domain.AgentResult{
		AgentName: domain.AgentFeature,
		Results: domain.FeatureResults{
			TotalUniqueFeatures: len(counts),
			TopFeatures:         top,
			TotalMentions:       totalMentions,
			TotalRecords:        t.RowCount(),
		},
		Confidence: round4(clamp01(confidence)),
		Timestamp:  timestamp(),
	}, nil
}
