// Package hook redirects one native function of the host process to a Go
// handler.
//
// The detour itself is platform specific and lives behind [Platform]: it
// patches the target function so that calls land in the exported entry point
// of the capi library, and it keeps a trampoline for calling the original.
// [Interceptor] is the platform independent half. It enforces that the hook
// is attached exactly once, always calls the original first, and guarantees
// that the host receives an object reference even if the handler fails.
//
// The intercepted signature is
//
//	void* LoadFromName(void* instance, void* name, void* methodInfo)
//
// and is carried through Go as three uintptr arguments and a uintptr result.
package hook
