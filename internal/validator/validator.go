package validator

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"marketcli/internal/config"
	"marketcli/internal/dataset"
	apperrors "marketcli/internal/errors"
	"marketcli/pkg/contracts/domain"
)

// Strategy is the policy for handling missing data during cleaning
type Strategy string

const (
	// StrategyDropRows removes rows containing any missing cell
	StrategyDropRows Strategy = config.StrategyDropRows
	// StrategyDropColumns removes columns containing any missing cell
	StrategyDropColumns Strategy = config.StrategyDropColumns
	// StrategyImpute keeps all rows, filling missing numeric cells with the
	// column mean and missing text cells with the column mode
	StrategyImpute Strategy = config.StrategyImpute
)

// Options configures a validation run
type Options struct {
	Strategy        Strategy
	RequiredColumns []string

	// Quality score weights; zero values fall back to the defaults.
	CompletenessWeight float64
	UniquenessWeight   float64
}

// Validator checks and cleans raw tables. It is stateless apart from its
// logger and safe for concurrent use.
type Validator struct {
	logger *slog.Logger
}

// New creates a validator
func New(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger.With(slog.String("component", "validator"))}
}

// Clean validates and cleans a raw table: required-column check,
// deduplication, then missing-data handling per the configured strategy.
// The input table is never modified. Applying the same options to the same
// input twice yields an identical result.
func (v *Validator) Clean(raw *dataset.Table, opts Options) (*dataset.Table, *domain.QualityReport, error) {
	if opts.CompletenessWeight == 0 && opts.UniquenessWeight == 0 {
		opts.CompletenessWeight = 0.6
		opts.UniquenessWeight = 0.4
	}

	if missing := missingColumns(raw, opts.RequiredColumns); len(missing) > 0 {
		return nil, nil, apperrors.NewSchemaError(missing)
	}

	report := &domain.QualityReport{
		RowsBefore: raw.RowCount(),
		Strategy:   string(opts.Strategy),
		Columns:    columnQuality(raw),
	}

	deduped, duplicates := dropDuplicates(raw)
	report.DuplicateRows = duplicates

	var (
		clean *dataset.Table
		err   error
	)
	switch opts.Strategy {
	case StrategyDropRows:
		clean, err = dropMissingRows(deduped)
	case StrategyDropColumns:
		clean, err = dropMissingColumns(deduped)
	case StrategyImpute:
		clean, err = imputeMissing(deduped)
	default:
		return nil, nil, apperrors.NewConfigError(
			fmt.Sprintf("unknown cleaning strategy: %q", opts.Strategy), nil)
	}
	if err != nil {
		return nil, nil, err
	}

	if clean.RowCount() == 0 {
		return nil, nil, apperrors.NewEmptyDatasetError(string(opts.Strategy))
	}

	report.RowsAfter = clean.RowCount()
	report.QualityScore = qualityScore(raw, duplicates, opts)

	v.logger.Info("dataset cleaned",
		slog.String("strategy", string(opts.Strategy)),
		slog.Int("rows_before", report.RowsBefore),
		slog.Int("rows_after", report.RowsAfter),
		slog.Int("duplicates", report.DuplicateRows),
		slog.Float64("quality_score", report.QualityScore))

	return clean, report, nil
}

// missingColumns returns the required columns absent from the table
func missingColumns(t *dataset.Table, required []string) []string {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// columnQuality computes per-column missing counts over the raw table
func columnQuality(t *dataset.Table) []domain.ColumnQuality {
	columns := t.Columns()
	out := make([]domain.ColumnQuality, len(columns))
	total := t.RowCount()

	for i, name := range columns {
		cells, _ := t.Column(name)
		missing := 0
		numeric := 0
		for _, cell := range cells {
			if dataset.IsMissing(cell) {
				missing++
				continue
			}
			if _, ok := dataset.ParseNumeric(cell); ok {
				numeric++
			}
		}

		pct := 0.0
		if total > 0 {
			pct = float64(missing) / float64(total) * 100
		}

		dtype := "text"
		if present := total - missing; present > 0 && numeric == present {
			dtype = "numeric"
		}

		out[i] = domain.ColumnQuality{
			Column:     name,
			Missing:    missing,
			MissingPct: pct,
			DType:      dtype,
		}
	}
	return out
}

// dropDuplicates removes exact duplicate rows, keeping the first occurrence
func dropDuplicates(t *dataset.Table) (*dataset.Table, int) {
	seen := make(map[string]struct{}, t.RowCount())
	var kept [][]string
	duplicates := 0

	for i := 0; i < t.RowCount(); i++ {
		row := t.Row(i)
		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}

	clean, _ := dataset.New(t.Columns(), kept)
	return clean, duplicates
}

// dropMissingRows removes every row with at least one missing cell
func dropMissingRows(t *dataset.Table) (*dataset.Table, error) {
	var kept [][]string
	for i := 0; i < t.RowCount(); i++ {
		row := t.Row(i)
		complete := true
		for _, cell := range row {
			if dataset.IsMissing(cell) {
				complete = false
				break
			}
		}
		if complete {
			kept = append(kept, row)
		}
	}
	return dataset.New(t.Columns(), kept)
}

// dropMissingColumns removes every column with at least one missing cell
func dropMissingColumns(t *dataset.Table) (*dataset.Table, error) {
	columns := t.Columns()
	var keptIdx []int
	var keptNames []string

	for idx, name := range columns {
		cells, _ := t.Column(name)
		complete := true
		for _, cell := range cells {
			if dataset.IsMissing(cell) {
				complete = false
				break
			}
		}
		if complete {
			keptIdx = append(keptIdx, idx)
			keptNames = append(keptNames, name)
		}
	}

	rows := make([][]string, t.RowCount())
	for i := 0; i < t.RowCount(); i++ {
		src := t.Row(i)
		row := make([]string, len(keptIdx))
		for j, idx := range keptIdx {
			row[j] = src[idx]
		}
		rows[i] = row
	}
	return dataset.New(keptNames, rows)
}

// imputeMissing fills missing cells: numeric columns with the column mean,
// text columns with the most frequent value (first seen wins ties)
func imputeMissing(t *dataset.Table) (*dataset.Table, error) {
	columns := t.Columns()
	fill := make([]string, len(columns))

	for idx, name := range columns {
		cells, _ := t.Column(name)
		fill[idx] = imputedValue(cells)
	}

	rows := make([][]string, t.RowCount())
	for i := 0; i < t.RowCount(); i++ {
		src := t.Row(i)
		row := make([]string, len(src))
		for j, cell := range src {
			if dataset.IsMissing(cell) {
				row[j] = fill[j]
			} else {
				row[j] = cell
			}
		}
		rows[i] = row
	}
	return dataset.New(columns, rows)
}

// imputedValue picks the replacement for missing cells in one column
func imputedValue(cells []string) string {
	var (
		sum     float64
		numeric int
		present int
	)
	counts := make(map[string]int)
	var firstSeen []string

	for _, cell := range cells {
		if dataset.IsMissing(cell) {
			continue
		}
		present++
		if f, ok := dataset.ParseNumeric(cell); ok {
			sum += f
			numeric++
		}
		if counts[cell] == 0 {
			firstSeen = append(firstSeen, cell)
		}
		counts[cell]++
	}

	if present == 0 {
		return ""
	}

	if numeric == present {
		return strconv.FormatFloat(sum/float64(numeric), 'g', -1, 64)
	}

	// Mode with deterministic first-seen tie break.
	sort.SliceStable(firstSeen, func(i, j int) bool {
		return counts[firstSeen[i]] > counts[firstSeen[j]]
	})
	return firstSeen[0]
}

// qualityScore derives the 0-100 quality score from completeness and
// uniqueness of the raw table. The weighting is a configuration constant,
// not a contract.
func qualityScore(raw *dataset.Table, duplicates int, opts Options) float64 {
	totalCells := raw.RowCount() * raw.ColumnCount()
	missingCells := 0
	for _, name := range raw.Columns() {
		cells, _ := raw.Column(name)
		for _, cell := range cells {
			if dataset.IsMissing(cell) {
				missingCells++
			}
		}
	}

	completeness := 1.0
	if totalCells > 0 {
		completeness = 1 - float64(missingCells)/float64(totalCells)
	}

	uniqueness := 1.0
	if raw.RowCount() > 0 {
		uniqueness = 1 - float64(duplicates)/float64(raw.RowCount())
	}

	score := (opts.CompletenessWeight*completeness + opts.UniquenessWeight*uniqueness) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
