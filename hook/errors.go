package hook

import "errors"

var (
	// ErrUnresolvedTarget indicates the native function address is unknown.
	ErrUnresolvedTarget = errors.New("hook target address could not be resolved")

	// ErrAttachFailed indicates the platform could not install the detour.
	ErrAttachFailed = errors.New("hook attach failed")

	// ErrAlreadyAttached indicates a second attach in the same process.
	ErrAlreadyAttached = errors.New("hook already attached")
)
