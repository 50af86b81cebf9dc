package filter

import "errors"

var (
	// ErrCompile is returned when a condition cannot be parsed into a program.
	ErrCompile = errors.New("condition does not compile")

	// ErrUnsupported is returned when a condition evaluates to something other than a boolean.
	ErrUnsupported = errors.New("condition uses an unsupported construct")

	// ErrAlwaysTrue is returned by Probe when a condition matches an empty root
	// or yields no result at all, meaning it could never evaluate to false.
	ErrAlwaysTrue = errors.New("condition cannot evaluate to false")

	// ErrEvaluation wraps runtime failures such as a missing attribute.
	ErrEvaluation = errors.New("condition evaluation failed")
)
