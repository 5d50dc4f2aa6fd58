package album

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// DirPrefix prefixes the key of a directory album.
	DirPrefix = "fs_"
	// PackagePrefix prefixes the key of a packaged album.
	PackagePrefix = "pkg_"
	// PackageExtension is the file extension of album packages.
	PackageExtension = ".mdm"
)

// Registry holds the loaded albums in index order.
type Registry struct {
	albums []*Album
	byKey  map[string]*Album
}

// NewRegistry builds a registry over already opened albums. Later albums
// with a duplicate key are ignored.
func NewRegistry(albums ...*Album) *Registry {
	r := &Registry{byKey: make(map[string]*Album, len(albums))}
	for _, a := range albums {
		r.add(a)
	}
	return r
}

func (r *Registry) add(a *Album) bool {
	if a == nil {
		return false
	}
	if _, dup := r.byKey[a.Key]; dup {
		logrus.WithFields(logrus.Fields{
			"function": "Registry.add",
			"album":    a.Key,
		}).Warn("Duplicate album key ignored")
		return false
	}
	r.albums = append(r.albums, a)
	r.byKey[a.Key] = a
	return true
}

// Load scans dir for albums. Subdirectories carrying info.json become
// "fs_<name>" albums and .mdm files become "pkg_<stem>" albums. Entries are
// visited in lexical order and indexed from zero; broken albums are logged
// and skipped. A missing dir yields an empty registry.
func Load(dir string) (*Registry, error) {
	r := NewRegistry()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logrus.WithFields(logrus.Fields{
				"function": "Load",
				"dir":      dir,
			}).Info("Album directory does not exist")
			return r, nil
		}
		return nil, fmt.Errorf("read album directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		key, ok := keyFor(dir, entry)
		if !ok {
			continue
		}

		a, err := Open(filepath.Join(dir, entry.Name()), key, len(r.albums))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Load",
				"album":    key,
				"error":    err.Error(),
			}).Error("Failed to load album")
			continue
		}
		if !r.add(a) {
			a.Close()
			continue
		}

		logrus.WithFields(logrus.Fields{
			"function": "Load",
			"album":    key,
			"index":    a.Index,
			"name":     a.Info.Name,
		}).Debug("Loaded album")
	}

	logrus.WithFields(logrus.Fields{
		"function": "Load",
		"dir":      dir,
		"count":    len(r.albums),
	}).Info("Albums loaded")

	return r, nil
}

func keyFor(dir string, entry fs.DirEntry) (string, bool) {
	name := entry.Name()
	if entry.IsDir() {
		if _, err := os.Stat(filepath.Join(dir, name, InfoFile)); err != nil {
			return "", false
		}
		return DirPrefix + name, true
	}
	ext := filepath.Ext(name)
	if !strings.EqualFold(ext, PackageExtension) {
		return "", false
	}
	return PackagePrefix + strings.TrimSuffix(name, ext), true
}

// Lookup returns the album with the given key.
func (r *Registry) Lookup(key string) (*Album, bool) {
	a, ok := r.byKey[key]
	return a, ok
}

// All returns the albums in index order.
func (r *Registry) All() []*Album {
	out := make([]*Album, len(r.albums))
	copy(out, r.albums)
	return out
}

// Len returns the number of albums.
func (r *Registry) Len() int { return len(r.albums) }

// Close closes every album and returns the first error.
func (r *Registry) Close() error {
	var first error
	for _, a := range r.albums {
		if err := a.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
