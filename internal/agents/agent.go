package agents

import (
	"math"
	"strings"
	"time"

	"marketcli/internal/dataset"
)

// timestamp returns the ISO-8601 timestamp recorded on every agent result
func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// round4 rounds to four decimal places, the precision reported for
// confidence and scores
func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}

// round2 rounds to two decimal places
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// clamp01 bounds a confidence value to [0,1]
func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// trimmed strips surrounding whitespace, preserving the original casing for
// display
func trimmed(value string) string {
	return strings.TrimSpace(value)
}

// tokenize splits a feature cell into normalized tokens: split on the
// delimiter, trimmed, case folded, empties discarded. A missing cell yields
// no tokens.
func tokenize(value, delimiter string) []string {
	if dataset.IsMissing(value) {
		return nil
	}
	var tokens []string
	for _, part := range strings.Split(value, delimiter) {
		token := dataset.Normalize(part)
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}
