//go:build cgo

// Package main builds the loader as a C shared library that a native host
// shim loads into the game process.
//
// # Build Instructions
//
//	go build -buildmode=c-shared -o libcustomalbums.so ./capi/
//
// This generates libcustomalbums.so and libcustomalbums.h. The types used in
// the exported signatures are declared in bridge.h.
//
// # C API Usage
//
// The shim supplies the game's object API as a function table, then hands
// over the address of LoadFromName together with a function that installs
// a detour and returns the trampoline:
//
//	#include "libcustomalbums.h"
//
//	ca_init(NULL);                       // custom_albums.yaml if present
//	ca_set_runtime(&runtime_table);
//	if (ca_attach(load_from_name, install_detour) != 0) {
//	    // interception is disabled for the rest of the process
//	}
//
//	// Every frame, on the game's main thread:
//	ca_iterate();
//
//	// On unload:
//	ca_shutdown();
//
// # Thread Safety
//
// Exports serialize access to the single loader with a read-write mutex.
// The loader itself expects LoadFromName and ca_iterate on one thread.
package main
