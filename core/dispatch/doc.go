// Package dispatch routes publish batches: created objects go to the
// enrichment pipeline, deleted objects to the index, and everything else is
// logged and ignored. Dispatch returns before any of that work completes.
package dispatch
