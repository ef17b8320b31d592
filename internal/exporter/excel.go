package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"marketcli/internal/pipeline"
	"marketcli/pkg/contracts/domain"
)

// Sheet names of the Excel workbook
const (
	sheetSummary  = "Summary"
	sheetBrands   = "Brands"
	sheetPricing  = "Pricing"
	sheetFeatures = "Features"
	sheetGaps     = "Gaps"
)

// writeExcel emits the result as an Excel workbook with one sheet per
// agent plus a summary sheet
func (e *Exporter) writeExcel(w io.Writer, result *pipeline.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	for _, name := range []string{sheetBrands, sheetPricing, sheetFeatures, sheetGaps} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	if err := writeSummarySheet(f, result); err != nil {
		return err
	}
	for _, agent := range result.Payload.Agents {
		if err := writeAgentSheet(f, agent); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeSummarySheet fills the summary sheet with run metadata, per-agent
// confidences and the optional narrative
func writeSummarySheet(f *excelize.File, result *pipeline.Result) error {
	rows := [][]interface{}{
		{"Run ID", result.Payload.RunID},
		{"Generated At", result.Payload.GeneratedAt},
		{"Total Records", result.Payload.TotalRecords},
		{"Quality Score", result.Quality.QualityScore},
		{"Rows Before Cleaning", result.Quality.RowsBefore},
		{"Rows After Cleaning", result.Quality.RowsAfter},
		{"Duplicate Rows", result.Quality.DuplicateRows},
		{"Cleaning Strategy", result.Quality.Strategy},
		{},
		{"Agent", "Confidence", "Timestamp"},
	}
	for _, agent := range result.Payload.Agents {
		rows = append(rows, []interface{}{agent.AgentName, agent.Confidence, agent.Timestamp})
	}
	if result.Payload.LLMSummary != nil {
		rows = append(rows, []interface{}{},
			[]interface{}{"LLM Summary", result.Payload.LLMSummary.Summary},
			[]interface{}{"Model", result.Payload.LLMSummary.Model})
	}
	return writeRows(f, sheetSummary, rows)
}

// writeAgentSheet fills the sheet belonging to one agent
func writeAgentSheet(f *excelize.File, agent domain.AgentResult) error {
	switch results := agent.Results.(type) {
	case domain.BrandResults:
		rows := [][]interface{}{{"Brand", "Count", "Share"}}
		for _, b := range results.TopBrands {
			rows = append(rows, []interface{}{b.Brand, b.Count, b.Share})
		}
		return writeRows(f, sheetBrands, rows)

	case domain.PricingResults:
		rows := [][]interface{}{{"Metric", "Value"}}
		if results.Statistics != nil {
			s := results.Statistics
			r := results.OptimalRange
			rows = append(rows,
				[]interface{}{"Min", s.Min},
				[]interface{}{"Max", s.Max},
				[]interface{}{"Mean", s.Mean},
				[]interface{}{"Median", s.Median},
				[]interface{}{"Std Dev", s.StdDev},
				[]interface{}{"Q1", r.Q1},
				[]interface{}{"Q3", r.Q3},
				[]interface{}{"Optimal Range Span", r.Span},
			)
		}
		rows = append(rows, []interface{}{"Valid Price Records", results.ValidPriceRecords})
		return writeRows(f, sheetPricing, rows)

	case domain.FeatureResults:
		rows := [][]interface{}{{"Feature", "Count"}}
		for _, ft := range results.TopFeatures {
			rows = append(rows, []interface{}{ft.Feature, ft.Count})
		}
		return writeRows(f, sheetFeatures, rows)

	case domain.GapResults:
		rows := [][]interface{}{{"Brand", "Feature", "Observed", "Expected", "Gap Score"}}
		for _, g := range results.Gaps {
			rows = append(rows, []interface{}{g.Brand, g.Feature, g.ObservedCount, g.ExpectedCount, g.GapScore})
		}
		return writeRows(f, sheetGaps, rows)
	}
	return nil
}

// writeRows writes rows starting at A1 of the named sheet
func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
