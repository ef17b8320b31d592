package agents

import (
	"sort"

	"marketcli/internal/dataset"
	"marketcli/pkg/contracts/domain"
)

// BrandConfig configures the brand agent
type BrandConfig struct {
	Column string
	TopN   int
}

// AnalyzeBrands groups rows by normalized brand value, counts occurrences,
// and reports the top-N brands by descending count. Ties keep first-seen
// order from the cleaned table. Share is each brand's fraction of the
// non-null brand rows; confidence is the fraction of rows with a non-null
// brand value.
func AnalyzeBrands(t *dataset.Table, cfg BrandConfig) (domain.AgentResult, error) {
	if cfg.TopN <= 0 {
		cfg.TopN = 10
	}

	cells, err := t.Column(cfg.Column)
	if err != nil {
		return domain.AgentResult{}, err
	}

	counts := make(map[string]int)
	display := make(map[string]string)
	var firstSeen []string
	nonNull := 0

	for _, cell := range cells {
		if dataset.IsMissing(cell) {
			continue
		}
		nonNull++
		key := dataset.Normalize(cell)
		if counts[key] == 0 {
			firstSeen = append(firstSeen, key)
			display[key] = trimmed(cell)
		}
		counts[key]++
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

	top := make([]domain.BrandCount, 0, topN)
	for _, key := range ordered[:topN] {
		share := 0.0
		if nonNull > 0 {
			share = float64(counts[key]) / float64(nonNull)
		}
		top = append(top, domain.BrandCount{
			Brand: display[key],
			Count: counts[key],
			Share: round4(share),
		})
	}

	confidence := 0.0
	if t.RowCount() > 0 {
		confidence = float64(nonNull) / float64(t.RowCount())
	}

	return domain.AgentResult{
		AgentName: domain.AgentBrand,
		Results: domain.BrandResults{
			TotalUniqueBrands: len(counts),
			TopBrands:         top,
			TotalRecords:      t.RowCount(),
		},
		Confidence: round4(clamp01(confidence)),
		Timestamp:  timestamp(),
	}, nil
}
