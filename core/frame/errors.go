package frame

import "errors"

var (
	// ErrReleased is returned when a handle is used after Release.
	ErrReleased = errors.New("frame handle already released")

	// ErrMalformed is returned by ReadFrame when the input is not a valid frame.
	ErrMalformed = errors.New("malformed frame")

	// ErrTooLarge is returned when a frame payload exceeds MaxFrameSize.
	ErrTooLarge = errors.New("frame too large")
)
