package exporter

import (
	"fmt"
	"strconv"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatConfidence formats confidence-like values with 4 decimal places
func formatConfidence(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}
