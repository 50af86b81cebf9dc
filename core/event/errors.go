package event

import "errors"

var (
	// ErrParse is returned when a publish body cannot be decoded into a batch.
	ErrParse = errors.New("malformed event batch")

	// ErrSerialize is returned when an enriched record cannot be encoded into a document.
	ErrSerialize = errors.New("failed to serialize enriched record")
)
