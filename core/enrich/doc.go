// Package enrich turns created-object events into indexed, broadcast documents.
//
// For each event the pipeline looks up the object's metadata, builds the
// document, submits it to the index without waiting and broadcasts the same
// bytes to subscribers using the metadata as the filter root. A failed lookup
// or an unserializable record drops the event. There is no retry.
package enrich
