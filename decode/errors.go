package decode

import "errors"

var (
	// ErrJobExists indicates a live job is already registered under the name.
	ErrJobExists = errors.New("decode job already registered")

	// ErrJobNotFound indicates no job is registered under the name.
	ErrJobNotFound = errors.New("decode job not found")

	// ErrInvalidJob indicates a job was started without a destination or source.
	ErrInvalidJob = errors.New("invalid decode job")
)
