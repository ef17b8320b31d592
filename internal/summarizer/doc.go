// Package summarizer is the boundary to the external text-generation
// service. It renders the aggregated agent results into a fixed, versioned
// prompt template and issues exactly one bounded-temperature request per
// pipeline run via the Google Generative Language API. All failures are
// returned as typed LLM errors so the caller can keep the deterministic
// agent output and degrade to an agents-only result.
package summarizer
