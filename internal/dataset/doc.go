// Package dataset provides the in-memory tabular representation used by the
// analysis pipeline and its CSV ingestion. Tables are treated as immutable:
// every transformation produces a new Table.
package dataset
