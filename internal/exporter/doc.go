// Package exporter serializes aggregated analysis results to JSON, CSV and
// Excel. The JSON layout is the export contract: an ordered array of the
// four agent result objects plus the optional llm_summary block.
package exporter
