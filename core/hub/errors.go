package hub

import "errors"

var (
	// ErrSubscriberClosed is returned by Serve when the subscriber was removed
	// from the registry, for example during shutdown.
	ErrSubscriberClosed = errors.New("subscriber closed")

	// ErrNilPredicate is returned by Register when no predicate is given.
	ErrNilPredicate = errors.New("subscriber predicate is required")
)
