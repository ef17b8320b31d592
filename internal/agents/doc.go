// Package agents implements the four deterministic analytical agents of the
// market analysis pipeline: brand distribution, pricing statistics, feature
// frequency, and brand-feature gap detection. Agents are pure functions of a
// cleaned table plus explicit column parameters; each returns a structured
// result with a confidence score in [0,1], where confidence is the fraction
// of input rows that contributed usable data. An agent that finds no usable
// rows reports confidence 0 with an empty result, which is a valid outcome,
// not an error.
package agents
