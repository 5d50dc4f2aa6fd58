// Package asset resolves the asset names requested through the game's
// LoadFromName entry point.
//
// Every request is classified once into a [Kind] and dispatched on that
// kind: generated JSON manifests listing the custom albums, album audio that
// is streamed into a clip by the decode scheduler, covers, chart stage
// descriptors, or a pass-through of whatever the original loader returned.
// Results other than charts are cached by name until the host destroys the
// underlying object.
//
//	r := asset.NewResolver(rt, albums, scheduler, asset.Config{UID: 999})
//	h := r.Resolve("fs_mychart_music", original)
package asset
