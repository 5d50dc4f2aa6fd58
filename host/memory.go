package host

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// ObjectKind identifies the type of an object held by [Memory].
type ObjectKind uint8

const (
	// KindText is a text asset.
	KindText ObjectKind = iota
	// KindClip is an audio clip.
	KindClip
	// KindSprite is a sprite.
	KindSprite
	// KindStage is a stage descriptor.
	KindStage
)

// Clip is the in-memory representation of an audio clip.
type Clip struct {
	Name       string
	Frames     int
	Channels   int
	SampleRate int
	Data       []float32

	// Written counts samples delivered through SetClipData.
	Written int
	// Writes counts SetClipData calls.
	Writes int
}

type object struct {
	kind   ObjectKind
	name   string
	text   string
	image  []byte
	clip   *Clip
	stage  StageInfo
	closed bool
}

// Memory is a [Runtime] backed by Go maps.
//
// Handles are allocated from a monotonically increasing counter and are never
// reused, so a destroyed handle stays dead for the lifetime of the runtime.
type Memory struct {
	mu       sync.Mutex
	next     Handle
	objects  map[Handle]*object
	strings  map[uintptr]string
	nextRef  uintptr
	language string
	configs  map[string]string
}

// NewMemory creates an empty in-memory runtime with English as the active
// language.
func NewMemory() *Memory {
	return &Memory{
		next:     0x1000,
		objects:  make(map[Handle]*object),
		strings:  make(map[uintptr]string),
		nextRef:  0x10,
		language: "English",
		configs:  make(map[string]string),
	}
}

func (m *Memory) alloc(o *object) Handle {
	m.next += 0x10
	h := m.next
	m.objects[h] = o
	return h
}

func (m *Memory) live(h Handle) (*object, bool) {
	o, ok := m.objects[h]
	if !ok || o.closed {
		return nil, false
	}
	return o, true
}

// Alive implements Runtime.
func (m *Memory) Alive(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live(h)
	return ok
}

// Intern stores s and returns a reference usable with String.
func (m *Memory) Intern(s string) uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRef += 0x8
	m.strings[m.nextRef] = s
	return m.nextRef
}

// String implements Runtime.
func (m *Memory) String(ref uintptr) (string, bool) {
	if ref == 0 {
		return "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strings[ref]
	return s, ok
}

// NewTextAsset implements Runtime.
func (m *Memory) NewTextAsset(name, text string) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alloc(&object{kind: KindText, name: name, text: text})
}

// TextAssetText implements Runtime.
func (m *Memory) TextAssetText(h Handle) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.live(h)
	if !ok || o.kind != KindText {
		return "", false
	}
	return o.text, true
}

// NewAudioClip implements Runtime.
func (m *Memory) NewAudioClip(name string, frames, channels, sampleRate int) Handle {
	if frames < 0 || channels <= 0 {
		logrus.WithFields(logrus.Fields{
			"function": "Memory.NewAudioClip",
			"name":     name,
			"frames":   frames,
			"channels": channels,
		}).Warn("Refusing to allocate clip with invalid shape")
		return Nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	clip := &Clip{
		Name:       name,
		Frames:     frames,
		Channels:   channels,
		SampleRate: sampleRate,
		Data:       make([]float32, frames*channels),
	}
	return m.alloc(&object{kind: KindClip, name: name, clip: clip})
}

// SetClipData implements Runtime. Samples past the end of the clip are
// dropped, matching the behaviour of the game engine.
func (m *Memory) SetClipData(h Handle, samples []float32, offsetFrames int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.live(h)
	if !ok || o.kind != KindClip || offsetFrames < 0 {
		return false
	}
	start := offsetFrames * o.clip.Channels
	if start > len(o.clip.Data) {
		return false
	}
	n := copy(o.clip.Data[start:], samples)
	o.clip.Written += n
	o.clip.Writes++
	return true
}

// NewSprite implements Runtime.
func (m *Memory) NewSprite(name string, image []byte) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alloc(&object{kind: KindSprite, name: name, image: append([]byte(nil), image...)})
}

// NewStageInfo implements Runtime.
func (m *Memory) NewStageInfo(info StageInfo) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alloc(&object{kind: KindStage, name: info.MapName, stage: info})
}

// ActiveLanguage implements Runtime.
func (m *Memory) ActiveLanguage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.language
}

// SetLanguage changes the active language.
func (m *Memory) SetLanguage(lang string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.language = lang
}

// RegisterConfig implements Runtime.
func (m *Memory) RegisterConfig(name, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.configs[name]; exists {
		return
	}
	m.configs[name] = text
}

// Config returns a registered config blob.
func (m *Memory) Config(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.configs[name]
	return text, ok
}

// Destroy marks h as destroyed, as the game does when it unloads an asset.
func (m *Memory) Destroy(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.objects[h]; ok {
		o.closed = true
	}
}

// Kind returns the kind of a live object.
func (m *Memory) Kind(h Handle) (ObjectKind, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.live(h)
	if !ok {
		return 0, false
	}
	return o.kind, true
}

// Name returns the name of a live object.
func (m *Memory) Name(h Handle) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.live(h)
	if !ok {
		return "", false
	}
	return o.name, true
}

// Clip returns the clip behind h. The returned value is shared with the
// runtime and must not be modified.
func (m *Memory) Clip(h Handle) (*Clip, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.live(h)
	if !ok || o.kind != KindClip {
		return nil, false
	}
	return o.clip, true
}

// Sprite returns the image bytes behind a sprite handle.
func (m *Memory) Sprite(h Handle) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.live(h)
	if !ok || o.kind != KindSprite {
		return nil, false
	}
	return o.image, true
}

// Stage returns the stage descriptor behind h.
func (m *Memory) Stage(h Handle) (StageInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.live(h)
	if !ok || o.kind != KindStage {
		return StageInfo{}, false
	}
	return o.stage, true
}

// Len returns the number of live objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.objects {
		if !o.closed {
			n++
		}
	}
	return n
}

var _ Runtime = (*Memory)(nil)
