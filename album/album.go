package album

import (
	"archive/zip"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
)

// InfoFile is the metadata file every album carries at its root.
const InfoFile = "info.json"

// Sheet is the chart of one difficulty.
type Sheet struct {
	Difficulty int
	// MD5 is the lowercase hex digest of the chart file.
	MD5 string
	// MapName is the host-side chart identifier, "<index>_map<difficulty>".
	MapName string
}

// Album is one loaded custom album.
type Album struct {
	Key      string
	Index    int
	Path     string
	Packaged bool
	Info     Info

	fsys   fs.FS
	closer io.Closer
	sheets map[int]Sheet
	closed bool
}

// Open loads the album stored at path, either a directory or a zip package.
func Open(path, key string, index int) (*Album, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if st.IsDir() {
		a, err := FromFS(key, index, os.DirFS(path))
		if err != nil {
			return nil, err
		}
		a.Path = path
		return a, nil
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open package %s: %w", path, err)
	}

	a, err := FromFS(key, index, zr)
	if err != nil {
		zr.Close()
		return nil, err
	}
	a.Path = path
	a.Packaged = true
	a.closer = zr
	return a, nil
}

// FromFS builds an album over an arbitrary file system rooted at the album.
func FromFS(key string, index int, fsys fs.FS) (*Album, error) {
	raw, err := fs.ReadFile(fsys, InfoFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInfo, key)
		}
		return nil, fmt.Errorf("read %s of %s: %w", InfoFile, key, err)
	}

	info, err := ParseInfo(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	a := &Album{
		Key:    key,
		Index:  index,
		Info:   info,
		fsys:   fsys,
		sheets: make(map[int]Sheet),
	}
	a.loadSheets()

	return a, nil
}

func (a *Album) loadSheets() {
	for _, d := range a.Info.Difficulties() {
		data, err := a.ReadFile(chartFile(d))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":   "Album.loadSheets",
				"album":      a.Key,
				"difficulty": d,
				"error":      err.Error(),
			}).Warn("Declared difficulty has no chart")
			continue
		}

		sum := md5.Sum(data)
		a.sheets[d] = Sheet{
			Difficulty: d,
			MD5:        hex.EncodeToString(sum[:]),
			MapName:    fmt.Sprintf("%d_map%d", a.Index, d),
		}
	}
}

func chartFile(d int) string {
	return fmt.Sprintf("map%d.bms", d)
}

// HasFile reports whether name exists in album storage.
func (a *Album) HasFile(name string) bool {
	if a.closed || !fs.ValidPath(name) {
		return false
	}
	st, err := fs.Stat(a.fsys, name)
	return err == nil && !st.IsDir()
}

// ReadFile returns the full contents of name.
func (a *Album) ReadFile(name string) ([]byte, error) {
	if a.closed {
		return nil, ErrClosed
	}
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, a.Key, name)
	}

	data, err := fs.ReadFile(a.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, a.Key, name)
		}
		return nil, fmt.Errorf("read %s/%s: %w", a.Key, name, err)
	}
	return data, nil
}

// Sheet returns the chart of difficulty d.
func (a *Album) Sheet(d int) (Sheet, error) {
	s, ok := a.sheets[d]
	if !ok {
		return Sheet{}, fmt.Errorf("%w: %s difficulty %d", ErrNotFound, a.Key, d)
	}
	return s, nil
}

// Difficulties lists the difficulties that have a chart, ascending.
func (a *Album) Difficulties() []int {
	out := make([]int, 0, len(a.sheets))
	for d := range a.sheets {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// Close releases the package reader. Directory albums hold nothing open.
func (a *Album) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
