package domain

// ColumnQuality describes missing data for a single column before cleaning.
type ColumnQuality struct {
	Column     string  `json:"column"`
	Missing    int     `json:"missing"`
	MissingPct float64 `json:"missing_pct"`
	DType      string  `json:"dtype"`
}

// QualityReport summarizes what validation and cleaning did to a dataset.
// QualityScore is in [0,100], a weighted combination of completeness and
// uniqueness; the weights are configuration constants, not a contract.
type QualityReport struct {
	RowsBefore    int             `json:"rows_before"`
	RowsAfter     int             `json:"rows_after"`
	DuplicateRows int             `json:"duplicate_rows"`
	Columns       []ColumnQuality `json:"columns"`
	QualityScore  float64         `json:"quality_score"`
	Strategy      string          `json:"cleaning_strategy"`
}
