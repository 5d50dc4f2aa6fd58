package host

// Handle is the raw address of a native object.
//
// The game dereferences handles directly, so a Handle must always be either
// [Nil] or a value previously returned by the same [Runtime].
type Handle uintptr

// Nil is the null object reference.
const Nil Handle = 0

// IsNil reports whether h is the null reference.
func (h Handle) IsNil() bool { return h == Nil }

// StageInfo carries the fields of a chart stage descriptor.
type StageInfo struct {
	MapName    string
	Music      string
	Name       string
	MD5        string
	Difficulty int
	BPM        float64
}

// Runtime is the native object API exposed by the host process.
//
// All methods are called from the host's main thread only.
type Runtime interface {
	// Alive reports whether h still references a live native object.
	Alive(h Handle) bool

	// String converts a native string reference into a Go string.
	// The boolean is false for a null reference.
	String(ref uintptr) (string, bool)

	// NewTextAsset creates a text asset named name holding text.
	NewTextAsset(name, text string) Handle

	// TextAssetText returns the contents of a text asset.
	TextAssetText(h Handle) (string, bool)

	// NewAudioClip allocates an empty clip of frames frames.
	NewAudioClip(name string, frames, channels, sampleRate int) Handle

	// SetClipData writes interleaved samples into a clip starting at offsetFrames.
	SetClipData(h Handle, samples []float32, offsetFrames int) bool

	// NewSprite creates a sprite from encoded image bytes.
	NewSprite(name string, image []byte) Handle

	// NewStageInfo creates a stage descriptor.
	NewStageInfo(info StageInfo) Handle

	// ActiveLanguage returns the game's current language option.
	ActiveLanguage() string

	// RegisterConfig publishes a JSON config blob under name unless the host
	// already holds one.
	RegisterConfig(name, text string)
}
