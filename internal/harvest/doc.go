// Package harvest implements the per-source staging layer: an
// accumulator that records every candidate value a harvester reports
// together with its provenance attributes, and a SQLite-backed cache
// that persists accumulated state between runs.
//
// Accumulation happens strictly before assembly; nothing in this
// package touches the target document.
package harvest
