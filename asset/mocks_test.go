package asset

import (
	"testing"
	"testing/fstest"

	"github.com/opd-ai/customalbums/album"
	"github.com/opd-ai/customalbums/codec"
	"github.com/stretchr/testify/require"
)

// rampAdapter stands in for a decoded stream of a fixed length.
type rampAdapter struct {
	format   string
	total    int64
	channels int
	rate     int
	produced int64
	releases int
}

func (a *rampAdapter) Channels() int       { return a.channels }
func (a *rampAdapter) SampleRate() int     { return a.rate }
func (a *rampAdapter) Format() string      { return a.format }
func (a *rampAdapter) TotalSamples() int64 { return a.total }

func (a *rampAdapter) Read(dst []float32) (int, error) {
	n := int64(len(dst))
	if left := a.total - a.produced; left < n {
		n = left
	}
	for i := int64(0); i < n; i++ {
		dst[i] = 0.25
	}
	a.produced += n
	return int(n), nil
}

func (a *rampAdapter) Release() error {
	a.releases++
	return nil
}

// fakeCodecs registers mp3 and ogg openers that ignore the file contents and
// record every adapter they hand out.
type fakeCodecs struct {
	registry *codec.Registry
	opened   []*rampAdapter
	total    int64
	rate     int
}

func newFakeCodecs(total int64, rate int) *fakeCodecs {
	f := &fakeCodecs{registry: codec.NewRegistry(), total: total, rate: rate}
	for _, format := range []string{codec.FormatMP3, codec.FormatOgg} {
		format := format
		f.registry.Register(format, func(data []byte) (codec.Adapter, error) {
			if string(data) == "corrupt" {
				return nil, codec.ErrInvalidStream
			}
			a := &rampAdapter{format: format, total: f.total, channels: 2, rate: f.rate}
			f.opened = append(f.opened, a)
			return a, nil
		})
	}
	return f
}

const mychartInfo = `{
	"name": "My Chart",
	"author": "someone",
	"bpm": "150",
	"scene": "scene_03",
	"levelDesigner": "mapper",
	"difficulty1": "2",
	"difficulty3": "8"
}`

func newTestAlbum(t *testing.T, key string, index int, files map[string]string) *album.Album {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	a, err := album.FromFS(key, index, fsys)
	require.NoError(t, err)
	return a
}

func mychart(t *testing.T) *album.Album {
	return newTestAlbum(t, "fs_mychart", 0, map[string]string{
		"info.json": mychartInfo,
		"music.mp3": "mp3 bytes",
		"demo.ogg":  "ogg bytes",
		"cover.png": "png bytes",
		"map1.bms":  "chart one",
		"map3.bms":  "chart three",
	})
}
