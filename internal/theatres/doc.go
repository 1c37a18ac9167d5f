// Package theatres runs the per-film theatre lookups of a cycle and matches
// the resulting theatre names against the cinema keyword sets.
//
// Orchestrator.Collect issues one lookup per resolved film identifier,
// concurrently up to the configured limit and paced by a token bucket. A
// failed lookup is logged and skipped without affecting the others. Results
// are merged in film order and deduplicated by theatre name, the last record
// for a name replacing earlier ones.
package theatres
