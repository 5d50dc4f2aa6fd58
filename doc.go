// Package customalbums serves custom albums to the game by intercepting its
// LoadFromName asset loader.
//
// The game resolves every resource through one native function. A [Loader]
// attaches a detour to that function, calls the original for a baseline
// result, and then decides per asset name whether to hand back that result,
// a cached object, a generated JSON manifest listing the custom albums, a
// chart stage descriptor, or an audio clip that is filled in incrementally
// while the game keeps rendering.
//
// # Getting Started
//
//	options := customalbums.NewOptions()
//	options.AlbumDir = "Custom_Albums"
//
//	loader, err := customalbums.New(runtime, platform, options)
//	if err != nil {
//	    return err
//	}
//	defer loader.Close()
//
//	if err := loader.Attach(loadFromNameAddress); err != nil {
//	    return err // nothing can be served without the hook
//	}
//
//	// Once per game frame:
//	loader.Iterate()
//
// # Components
//
//   - [host.Runtime]: native object API of the game
//   - [hook.Interceptor]: detour on LoadFromName with a trampoline to the original
//   - [asset.Resolver]: name classification, caching and synthesis
//   - [decode.Scheduler]: cooperative chunked decoding into audio clips
//   - [codec.Adapter]: mp3, ogg vorbis and ogg opus decoders
//   - [album.Registry]: albums found in the album directory
//
// # Threading
//
// LoadFromName and Iterate must be called from the game's main thread. None
// of the components lock; the C bindings in capi serialize access to the
// single Loader instance.
package customalbums
