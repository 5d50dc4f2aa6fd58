package main

/*
#include <stdlib.h>
#include "bridge.h"
*/
import "C"

import (
	"unsafe"

	"github.com/opd-ai/customalbums/host"
	"github.com/sirupsen/logrus"
)

// cRuntime implements host.Runtime over the function table registered by
// the host shim.
type cRuntime struct {
	table *C.ca_runtime
}

func newCRuntime(table *C.ca_runtime) *cRuntime {
	copied := (*C.ca_runtime)(C.malloc(C.size_t(unsafe.Sizeof(*table))))
	*copied = *table
	return &cRuntime{table: copied}
}

func (r *cRuntime) free() {
	if r.table != nil {
		C.free(unsafe.Pointer(r.table))
		r.table = nil
	}
}

func handlePtr(h host.Handle) unsafe.Pointer {
	return unsafe.Pointer(uintptr(h))
}

// readText runs fill twice: once to learn the length and once to copy.
func readText(fill func(buf *C.char, capacity C.int32_t) C.int32_t) (string, bool) {
	n := fill(nil, 0)
	if n < 0 {
		return "", false
	}
	if n == 0 {
		return "", true
	}
	buf := make([]byte, int(n))
	got := fill((*C.char)(unsafe.Pointer(&buf[0])), n)
	if got < 0 {
		return "", false
	}
	if int(got) < len(buf) {
		buf = buf[:got]
	}
	return string(buf), true
}

func (r *cRuntime) Alive(h host.Handle) bool {
	if h.IsNil() {
		return false
	}
	return bool(C.ca_rt_alive(r.table, handlePtr(h)))
}

func (r *cRuntime) String(ref uintptr) (string, bool) {
	if ref == 0 {
		return "", false
	}
	return readText(func(buf *C.char, capacity C.int32_t) C.int32_t {
		return C.ca_rt_string_utf8(r.table, unsafe.Pointer(ref), buf, capacity)
	})
}

func (r *cRuntime) NewTextAsset(name, text string) host.Handle {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	cText := C.CString(text)
	defer C.free(unsafe.Pointer(cText))

	return host.Handle(uintptr(C.ca_rt_new_text_asset(r.table, cName, cText, C.int32_t(len(text)))))
}

func (r *cRuntime) TextAssetText(h host.Handle) (string, bool) {
	if h.IsNil() {
		return "", false
	}
	return readText(func(buf *C.char, capacity C.int32_t) C.int32_t {
		return C.ca_rt_text_asset_text(r.table, handlePtr(h), buf, capacity)
	})
}

func (r *cRuntime) NewAudioClip(name string, frames, channels, sampleRate int) host.Handle {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	return host.Handle(uintptr(C.ca_rt_new_audio_clip(r.table, cName,
		C.int32_t(frames), C.int32_t(channels), C.int32_t(sampleRate))))
}

func (r *cRuntime) SetClipData(h host.Handle, samples []float32, offsetFrames int) bool {
	if h.IsNil() || len(samples) == 0 {
		return false
	}
	return bool(C.ca_rt_set_clip_data(r.table, handlePtr(h),
		(*C.float)(unsafe.Pointer(&samples[0])), C.int32_t(len(samples)), C.int32_t(offsetFrames)))
}

func (r *cRuntime) NewSprite(name string, image []byte) host.Handle {
	if len(image) == 0 {
		return host.Nil
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	return host.Handle(uintptr(C.ca_rt_new_sprite(r.table, cName,
		(*C.uint8_t)(unsafe.Pointer(&image[0])), C.int32_t(len(image)))))
}

func (r *cRuntime) NewStageInfo(info host.StageInfo) host.Handle {
	strs := []*C.char{
		C.CString(info.MapName),
		C.CString(info.Music),
		C.CString(info.Name),
		C.CString(info.MD5),
	}
	defer func() {
		for _, s := range strs {
			C.free(unsafe.Pointer(s))
		}
	}()

	cInfo := (*C.ca_stage_info)(C.malloc(C.size_t(unsafe.Sizeof(C.ca_stage_info{}))))
	defer C.free(unsafe.Pointer(cInfo))
	cInfo.map_name = strs[0]
	cInfo.music = strs[1]
	cInfo.name = strs[2]
	cInfo.md5 = strs[3]
	cInfo.difficulty = C.int32_t(info.Difficulty)
	cInfo.bpm = C.double(info.BPM)

	return host.Handle(uintptr(C.ca_rt_new_stage_info(r.table, cInfo)))
}

func (r *cRuntime) ActiveLanguage() string {
	lang, ok := readText(func(buf *C.char, capacity C.int32_t) C.int32_t {
		return C.ca_rt_active_language(r.table, buf, capacity)
	})
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function": "cRuntime.ActiveLanguage",
		}).Warn("Host did not report a language")
	}
	return lang
}

func (r *cRuntime) RegisterConfig(name, text string) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	cText := C.CString(text)
	defer C.free(unsafe.Pointer(cText))

	C.ca_rt_register_config(r.table, cName, cText, C.int32_t(len(text)))
}

var _ host.Runtime = (*cRuntime)(nil)
