// Package album loads custom albums from the album directory.
//
// An album is either a directory holding an info.json next to its audio,
// cover and chart files, or a zip package with the .mdm extension carrying
// the same files at its root. Albums are keyed by their storage name with a
// "fs_" or "pkg_" prefix and indexed in sorted order:
//
//	reg, err := album.Load("Custom_Albums")
//	if err != nil {
//		return err
//	}
//	defer reg.Close()
//
//	if a, ok := reg.Lookup("fs_mychart"); ok {
//		data, err := a.ReadFile("music.ogg")
//		...
//	}
package album
