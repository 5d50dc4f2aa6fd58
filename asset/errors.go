package asset

import (
	"errors"
	"fmt"

	"github.com/opd-ai/customalbums/album"
)

var (
	// ErrNotFound is returned when a requested file is absent from album
	// storage. It matches album.ErrNotFound as well.
	ErrNotFound = fmt.Errorf("asset: not found: %w", album.ErrNotFound)

	// ErrAllocation is returned when the host refuses to create an object.
	ErrAllocation = errors.New("asset: host allocation failed")
)
