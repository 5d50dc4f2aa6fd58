package hook

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Platform installs the native detour and calls the original function
// through its trampoline.
type Platform interface {
	// Attach redirects target to the library's entry point.
	Attach(target uintptr) error

	// CallOriginal invokes the pre-interception function.
	CallOriginal(instance, name, info uintptr) uintptr
}

// Handler computes the result of an intercepted call from the raw name
// reference and the original function's result.
type Handler func(name, original uintptr) uintptr

// PlatformFuncs adapts two functions to Platform.
type PlatformFuncs struct {
	AttachFunc   func(target uintptr) error
	OriginalFunc func(instance, name, info uintptr) uintptr
}

// Attach implements Platform.
func (p PlatformFuncs) Attach(target uintptr) error {
	if p.AttachFunc == nil {
		return nil
	}
	return p.AttachFunc(target)
}

// CallOriginal implements Platform.
func (p PlatformFuncs) CallOriginal(instance, name, info uintptr) uintptr {
	if p.OriginalFunc == nil {
		return 0
	}
	return p.OriginalFunc(instance, name, info)
}

// Interceptor is the substituted entry point for one native function.
type Interceptor struct {
	platform  Platform
	handler   Handler
	target    uintptr
	attempted bool
	attached  atomic.Bool
	calls     atomic.Uint64
}

// NewInterceptor creates an unattached interceptor.
func NewInterceptor(platform Platform, handler Handler) *Interceptor {
	return &Interceptor{
		platform: platform,
		handler:  handler,
	}
}

// Attach installs the detour on target. It may be called once per process;
// any error is fatal for the interception layer since nothing can be served
// without the hook.
func (i *Interceptor) Attach(target uintptr) error {
	if i.attempted {
		return ErrAlreadyAttached
	}
	i.attempted = true

	if target == 0 {
		logrus.WithFields(logrus.Fields{
			"function": "Interceptor.Attach",
		}).Error("Native target address is null")
		return ErrUnresolvedTarget
	}

	if err := i.platform.Attach(target); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Interceptor.Attach",
			"target":   fmt.Sprintf("%#x", target),
			"error":    err.Error(),
		}).Error("Failed to install native detour")
		return fmt.Errorf("%w: %v", ErrAttachFailed, err)
	}

	i.target = target
	i.attached.Store(true)

	logrus.WithFields(logrus.Fields{
		"function": "Interceptor.Attach",
		"target":   fmt.Sprintf("%#x", target),
	}).Info("Native detour attached")

	return nil
}

// Attached reports whether Attach succeeded.
func (i *Interceptor) Attached() bool { return i.attached.Load() }

// Target returns the attached native address.
func (i *Interceptor) Target() uintptr { return i.target }

// Calls returns the number of intercepted calls served.
func (i *Interceptor) Calls() uint64 { return i.calls.Load() }

// CallOriginal invokes the original function through the trampoline.
func (i *Interceptor) CallOriginal(instance, name, info uintptr) uintptr {
	if !i.attached.Load() {
		return 0
	}
	return i.platform.CallOriginal(instance, name, info)
}

// Invoke is the detour body installed in place of LoadFromName.
//
// The original function always runs first through the trampoline, so the
// game's own loader sees every request. Its result is then offered to the
// handler together with the name reference. A panicking handler is
// recovered and logged, and the original result is returned instead.
//
// Parameters:
//   - instance: The native object the call was made on, forwarded as is
//   - name: Reference to the requested asset name
//   - info: Native type information, forwarded as is
//
// Returns the handler's result, the original result when no handler is set
// or it panicked, or 0 when the detour is not attached.
func (i *Interceptor) Invoke(instance, name, info uintptr) (result uintptr) {
	if !i.attached.Load() {
		logrus.WithFields(logrus.Fields{
			"function": "Interceptor.Invoke",
		}).Warn("Intercepted call before attach")
		return 0
	}
	i.calls.Add(1)

	original := i.platform.CallOriginal(instance, name, info)
	if i.handler == nil {
		return original
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Interceptor.Invoke",
				"panic":    fmt.Sprint(r),
			}).Error("Handler panicked, returning original result")
			result = original
		}
	}()

	return i.handler(name, original)
}
