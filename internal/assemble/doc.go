// Package assemble folds the accumulated candidate values of all
// sources into a single linked-data document. Accumulation is
// strictly upstream: an assembler only reads finished accumulators,
// and every write goes through the merge strategy registry, so the
// assembled document carries the provenance of every discarded
// candidate.
package assemble
