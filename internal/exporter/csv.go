package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"marketcli/internal/pipeline"
	"marketcli/pkg/contracts/domain"
)

// writeCSV emits the result as a single sectioned CSV file. A UTF-8 BOM is
// prefixed so Excel recognizes the encoding.
func (e *Exporter) writeCSV(w io.Writer, result *pipeline.Result) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)

	records := [][]string{
		{"run_id", result.Payload.RunID},
		{"generated_at", result.Payload.GeneratedAt},
		{"total_records", formatInt(int64(result.Payload.TotalRecords))},
		{"quality_score", formatFloat(result.Quality.QualityScore)},
		{"rows_before", formatInt(int64(result.Quality.RowsBefore))},
		{"rows_after", formatInt(int64(result.Quality.RowsAfter))},
		{"duplicate_rows", formatInt(int64(result.Quality.DuplicateRows))},
		{},
		{"agent", "confidence", "timestamp"},
	}
	for _, agent := range result.Payload.Agents {
		records = append(records, []string{
			agent.AgentName, formatConfidence(agent.Confidence), agent.Timestamp,
		})
	}

	for _, agent := range result.Payload.Agents {
		records = append(records, nil)
		records = append(records, agentRecords(agent)...)
	}

	if result.Payload.LLMSummary != nil {
		records = append(records, nil,
			[]string{"llm_summary", "model"},
			[]string{result.Payload.LLMSummary.Summary, result.Payload.LLMSummary.Model})
	}

	for _, record := range records {
		if len(record) == 0 {
			record = []string{""}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// agentRecords flattens one agent result into CSV rows
func agentRecords(agent domain.AgentResult) [][]string {
	switch results := agent.Results.(type) {
	case domain.BrandResults:
		records := [][]string{{"brand", "count", "share"}}
		for _, b := range results.TopBrands {
			records = append(records, []string{b.Brand, formatInt(int64(b.Count)), formatConfidence(b.Share)})
		}
		return records

	case domain.PricingResults:
		records := [][]string{{"price_metric", "value"}}
		if results.Statistics == nil {
			return append(records, []string{"valid_price_records", "0"})
		}
		s := results.Statistics
		r := results.OptimalRange
		return append(records,
			[]string{"min", formatFloat(s.Min)},
			[]string{"max", formatFloat(s.Max)},
			[]string{"mean", formatFloat(s.Mean)},
			[]string{"median", formatFloat(s.Median)},
			[]string{"std_dev", formatFloat(s.StdDev)},
			[]string{"q1", formatFloat(r.Q1)},
			[]string{"q3", formatFloat(r.Q3)},
			[]string{"optimal_range_span", formatFloat(r.Span)},
		)

	case domain.FeatureResults:
		records := [][]string{{"feature", "count"}}
		for _, f := range results.TopFeatures {
			records = append(records, []string{f.Feature, formatInt(int64(f.Count))})
		}
		return records

	case domain.GapResults:
		records := [][]string{{"gap_brand", "gap_feature", "observed", "expected", "gap_score"}}
		for _, g := range results.Gaps {
			records = append(records, []string{
				g.Brand, g.Feature,
				formatInt(int64(g.ObservedCount)),
				formatFloat(g.ExpectedCount),
				formatConfidence(g.GapScore),
			})
		}
		return records
	}
	return nil
}
