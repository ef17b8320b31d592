package agents

import (
	"sort"

	"marketcli/internal/dataset"
	"marketcli/pkg/contracts/domain"
)

// GapConfig configures the gap agent. Threshold is optional; nil means the
// default of -0.5. Zero is a valid threshold (any under-represented pair
// counts), so the unset case is a nil pointer rather than a zero value.
type GapConfig struct {
	BrandColumn   string
	FeatureColumn string
	Threshold     *float64
	Delimiter     string
	TopN          int
}

// AnalyzeGaps builds the brand-feature co-occurrence matrix (features
// tokenized with the same rule as the feature agent) and scores every cell
// against the count an independent distribution of brands over features
// would predict: score = (observed - expected) / expected. Cells with zero
// expected count cannot be scored and are skipped. Pairs at or below the
// threshold are reported as market gaps, most negative first. An empty gap
// list is a balanced market, not a failure. Confidence is the fraction of
// matrix cells that could be scored.
func AnalyzeGaps(t *dataset.Table, cfg GapConfig) (domain.AgentResult, error) {
	threshold := -0.5
	if cfg.Threshold != nil {
		threshold = *cfg.Threshold
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = ","
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 10
	}

	brands, err := t.Column(cfg.BrandColumn)
	if err != nil {
		return domain.AgentResult{}, err
	}
	features, err := t.Column(cfg.FeatureColumn)
	if err != nil {
		return domain.AgentResult{}, err
	}

	observed := make(map[string]map[string]int)
	brandTotals := make(map[string]int)
	featureTotals := make(map[string]int)
	brandDisplay := make(map[string]string)
	var brandOrder, featureOrder []string
	grand := 0

	for i := range brands {
		if dataset.IsMissing(brands[i]) {
			continue
		}
		tokens := tokenize(features[i], cfg.Delimiter)
		if len(tokens) == 0 {
			continue
		}

		brand := dataset.Normalize(brands[i])
		if _, seen := brandTotals[brand]; !seen {
			brandOrder = append(brandOrder, brand)
			brandDisplay[brand] = trimmed(brands[i])
			observed[brand] = make(map[string]int)
		}

		for _, token := range tokens {
			if _, seen := featureTotals[token]; !seen {
				featureOrder = append(featureOrder, token)
			}
			observed[brand][token]++
			brandTotals[brand]++
			featureTotals[token]++
			grand++
		}
	}

	totalCells := len(brandOrder) * len(featureOrder)
	if totalCells == 0 {
		return domain.AgentResult{
			AgentName: domain.AgentGap,
			Results: domain.GapResults{
				Gaps:         []domain.MarketGap{},
				GapThreshold: threshold,
				TotalRecords: t.RowCount(),
			},
			Confidence: 0,
			Timestamp:  timestamp(),
		}, nil
	}

	var gaps []domain.MarketGap
	scoredCells := 0

	for _, brand := range brandOrder {
		for _, feature := range featureOrder {
			expected := float64(brandTotals[brand]) * float64(featureTotals[feature]) / float64(grand)
			if expected == 0 {
				continue
			}
			scoredCells++

			count := observed[brand][feature]
			score := (float64(count) - expected) / expected
			if score <= threshold {
				gaps = append(gaps, domain.MarketGap{
					Brand:         brandDisplay[brand],
					Feature:       feature,
					ObservedCount: count,
					ExpectedCount: round2(expected),
					GapScore:      round4(score),
				})
			}
		}
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].GapScore != gaps[j].GapScore {
			return gaps[i].GapScore < gaps[j].GapScore
		}
		if gaps[i].Brand != gaps[j].Brand {
			return gaps[i].Brand < gaps[j].Brand
		}
		return gaps[i].Feature < gaps[j].Feature
	})

	identified := len(gaps)
	if len(gaps) > cfg.TopN {
		gaps = gaps[:cfg.TopN]
	}
	if gaps == nil {
		gaps = []domain.MarketGap{}
	}

	return domain.AgentResult{
		AgentName: domain.AgentGap,
		Results: domain.GapResults{
			TotalCombinations: totalCells,
			IdentifiedGaps:    identified,
			Gaps:              gaps,
			GapThreshold:      threshold,
			TotalRecords:      t.RowCount(),
		},
		Confidence: round4(clamp01(float64(scoredCells) / float64(totalCells))),
		Timestamp:  timestamp(),
	}, nil
}
