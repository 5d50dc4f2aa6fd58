package main

/*
#include "bridge.h"
*/
import "C"

import (
	"io"
	"os"
	"sync"
	"unsafe"

	"github.com/opd-ai/customalbums"
	"github.com/opd-ai/customalbums/config"
	"github.com/sirupsen/logrus"
)

func main() {} // Required for c-shared build mode

// defaultIntervalMs is reported before the loader exists.
const defaultIntervalMs = 16

// One loader per process: LoadFromName can be hooked only once.
var (
	mu        sync.RWMutex
	options   = customalbums.NewOptions()
	logCloser io.Closer
	native    *cRuntime
	loader    *customalbums.Loader
	disabled  bool
)

func currentLoader() *customalbums.Loader {
	mu.RLock()
	defer mu.RUnlock()
	return loader
}

// ca_init loads the configuration file at configPath (NULL searches the
// default locations) and configures logging. Returns 0 on success.
//
//export ca_init
func ca_init(configPath *C.char) C.int {
	path := ""
	if configPath != nil {
		path = C.GoString(configPath)
	}

	cfg, err := config.Load(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ca_init",
			"path":     path,
			"error":    err.Error(),
		}).Error("Failed to load configuration")
		return -1
	}

	closer, err := config.SetupLogger(nil, cfg.Logging)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ca_init",
			"error":    err.Error(),
		}).Error("Failed to configure logging")
		return -1
	}

	mu.Lock()
	defer mu.Unlock()
	if logCloser != nil {
		logCloser.Close()
	}
	logCloser = closer
	options = cfg.Options()
	return 0
}

// ca_set_runtime registers the native object API. The table is copied.
//
//export ca_set_runtime
func ca_set_runtime(table *C.ca_runtime) C.int {
	if table == nil {
		return -1
	}

	mu.Lock()
	defer mu.Unlock()
	if loader != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ca_set_runtime",
		}).Warn("Runtime cannot change once the loader is attached")
		return -1
	}
	if native != nil {
		native.free()
	}
	native = newCRuntime(table)
	return 0
}

// ca_attach loads the albums and hooks LoadFromName at target using the
// host's detour function. Any failure leaves the layer disabled.
//
//export ca_attach
func ca_attach(target unsafe.Pointer, attach C.ca_detour_attach_fn) C.int {
	mu.Lock()
	defer mu.Unlock()

	if native == nil {
		logrus.WithFields(logrus.Fields{
			"function": "ca_attach",
		}).Error("ca_set_runtime must be called before ca_attach")
		return -1
	}
	if loader != nil || disabled {
		return -1
	}

	l, err := customalbums.New(native, &cPlatform{attach: attach}, options)
	if err != nil {
		disabled = true
		return -1
	}
	if err := l.Attach(uintptr(target)); err != nil {
		disabled = true
		l.Close()
		return -1
	}

	loader = l
	return 0
}

// ca_load_from_name is the detour installed over LoadFromName.
//
//export ca_load_from_name
func ca_load_from_name(instance, name, info unsafe.Pointer) unsafe.Pointer {
	l := currentLoader()
	if l == nil {
		return nil
	}
	return unsafe.Pointer(l.LoadFromName(uintptr(instance), uintptr(name), uintptr(info)))
}

// ca_iterate advances streaming decodes. Call once per frame.
//
//export ca_iterate
func ca_iterate() {
	if l := currentLoader(); l != nil {
		l.Iterate()
	}
}

// ca_iteration_interval returns the suggested Iterate period in ms.
//
//export ca_iteration_interval
func ca_iteration_interval() C.int {
	if l := currentLoader(); l != nil {
		return C.int(l.IterationInterval().Milliseconds())
	}
	return defaultIntervalMs
}

// ca_shutdown stops serving. The detour remains and passes results through.
//
//export ca_shutdown
func ca_shutdown() {
	mu.Lock()
	defer mu.Unlock()

	if loader != nil {
		loader.Close()
	}
	if logCloser != nil {
		logrus.SetOutput(os.Stderr)
		logCloser.Close()
		logCloser = nil
	}
}
