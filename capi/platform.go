package main

/*
#include "bridge.h"
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/opd-ai/customalbums/hook"
)

// cPlatform installs the detour through the host shim's hooking function
// and calls the original through the trampoline it hands back.
type cPlatform struct {
	attach     C.ca_detour_attach_fn
	trampoline C.ca_load_from_name_fn
}

func (p *cPlatform) Attach(target uintptr) error {
	if p.attach == nil {
		return fmt.Errorf("no detour function registered")
	}

	var trampoline unsafe.Pointer
	rc := C.ca_call_attach(p.attach, unsafe.Pointer(target), C.ca_detour_address(), &trampoline)
	if rc != 0 {
		return fmt.Errorf("detour function returned %d", int(rc))
	}
	if trampoline == nil {
		return fmt.Errorf("detour function returned no trampoline")
	}
	p.trampoline = C.ca_load_from_name_fn(trampoline)
	return nil
}

func (p *cPlatform) CallOriginal(instance, name, info uintptr) uintptr {
	return uintptr(C.ca_call_original(p.trampoline,
		unsafe.Pointer(instance), unsafe.Pointer(name), unsafe.Pointer(info)))
}

var _ hook.Platform = (*cPlatform)(nil)
