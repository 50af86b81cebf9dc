package enrich

import "errors"

// ErrLookup wraps metadata service failures. The event is dropped.
var ErrLookup = errors.New("metadata lookup failed")
