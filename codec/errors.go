package codec

import "errors"

var (
	// ErrUnsupportedFormat indicates no adapter is registered for a format.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidStream indicates the source bytes could not be parsed.
	ErrInvalidStream = errors.New("invalid audio stream")

	// ErrReleased indicates a read on an adapter that has been released.
	ErrReleased = errors.New("adapter released")
)
