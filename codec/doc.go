// Package codec provides a uniform decoding surface over the audio formats
// custom albums ship with.
//
// Each container format has one [Adapter] implementation:
//
//   - mp3, decoded with github.com/hajimehoshi/go-mp3
//   - ogg (Vorbis), decoded with github.com/gopxl/beep/v2/vorbis
//   - opus (Ogg encapsulated), decoded with github.com/pion/opus
//
// Adapters report their full length in interleaved samples when they are
// opened and then hand out float32 samples in caller-sized pieces through
// Read. Nothing outside this package knows which decoder is in use; adding a
// format means adding an adapter and registering it.
//
// Example:
//
//	adapter, err := codec.Open("ogg", data)
//	if err != nil {
//	    return err
//	}
//	defer adapter.Release()
//
//	buf := make([]float32, 4096)
//	n, err := adapter.Read(buf)
package codec
