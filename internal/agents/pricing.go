package agents

import (
	"math"
	"sort"

	"marketcli/internal/dataset"
	"marketcli/pkg/contracts/domain"
)

// PricingConfig configures the pricing agent
type PricingConfig struct {
	Column string
}

// AnalyzePricing computes descriptive statistics over the numeric price
// column: min, max, mean, median, sample standard deviation, and the
// optimal range [Q1, Q3]. Non-numeric cells are excluded entirely; negative
// prices count as valid numeric rows for confidence but are excluded from
// the statistics. With fewer than two usable values the deviation is 0 and
// the quartiles collapse to the single value; with none, the statistics are
// null and confidence reflects the numeric rows that remained.
func AnalyzePricing(t *dataset.Table, cfg PricingConfig) (domain.AgentResult, error) {
	cells, err := t.Column(cfg.Column)
	if err != nil {
		return domain.AgentResult{}, err
	}

	var values []float64
	numericRows := 0
	negatives := 0

	for _, cell := range cells {
		if dataset.IsMissing(cell) {
			continue
		}
		f, ok := dataset.ParseNumeric(cell)
		if !ok {
			continue
		}
		numericRows++
		if f < 0 {
			negatives++
			continue
		}
		values = append(values, f)
	}

	results := domain.PricingResults{
		TotalRecords:      t.RowCount(),
		ValidPriceRecords: len(values),
		ExcludedNegative:  negatives,
	}

	if len(values) > 0 {
		sorted := make([]float64, len(values))
		copy(sorted, values)
		sort.Float64s(sorted)

		q1 := quantile(sorted, 0.25)
		median := quantile(sorted, 0.50)
		q3 := quantile(sorted, 0.75)

		results.Statistics = &domain.PriceStatistics{
			Min:    sorted[0],
			Max:    sorted[len(sorted)-1],
			Mean:   round4(mean(sorted)),
			Median: median,
			StdDev: round4(sampleStdDev(sorted)),
		}
		results.OptimalRange = &domain.PriceRange{
			Q1:     q1,
			Median: median,
			Q3:     q3,
			Span:   q3 - q1,
		}
	}

	confidence := 0.0
	if t.RowCount() > 0 {
		confidence = float64(numericRows) / float64(t.RowCount())
	}

	return domain.AgentResult{
		AgentName:  domain.AgentPricing,
		Results:    results,
		Confidence: round4(clamp01(confidence)),
		Timestamp:  timestamp(),
	}, nil
}

// mean returns the arithmetic mean of a non-empty slice
func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation, 0 for fewer than two
// values
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// quantile computes the q-th quantile of sorted values using linear
// interpolation between closest ranks
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
