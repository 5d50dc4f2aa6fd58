// Package host describes the native object surface of the game process.
//
// Every object the asset layer hands back to the game (text assets, audio
// clips, sprites, stage descriptors) lives on the native side and is known to
// Go only as an opaque [Handle]. The [Runtime] interface is the complete set
// of operations the layer needs from the host: creating objects, checking
// whether a previously returned object has been destroyed, writing decoded
// samples into an audio clip and converting native string references.
//
// Two implementations exist:
//
//   - the cgo bridge in the capi command, which forwards every call through a
//     function table registered by the native loader
//   - [Memory], a complete in-process implementation used by tests and by the
//     albumctl simulator
//
// Example:
//
//	rt := host.NewMemory()
//	clip := rt.NewAudioClip("fs_demo_music", 44100, 2, 44100)
//	rt.SetClipData(clip, samples, 0)
//	rt.Destroy(clip) // rt.Alive(clip) now reports false
package host
