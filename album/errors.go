package album

import "errors"

var (
	// ErrNotFound is returned when a file or sheet is absent from album storage.
	ErrNotFound = errors.New("album: file not found")

	// ErrMissingInfo is returned when an album has no info.json.
	ErrMissingInfo = errors.New("album: missing info.json")

	// ErrInvalidInfo is returned when info.json cannot be decoded.
	ErrInvalidInfo = errors.New("album: invalid info.json")

	// ErrClosed is returned when reading from a closed album.
	ErrClosed = errors.New("album: closed")
)
