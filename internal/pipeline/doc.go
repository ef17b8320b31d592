// Package pipeline orchestrates one analysis invocation: validation and
// cleaning, the four analytical agents in fixed order (brand, pricing,
// feature, gap), aggregation into a single payload, and the optional
// single-call narrative summary. Data flows strictly one way; no stage
// feeds back into an earlier one.
package pipeline
