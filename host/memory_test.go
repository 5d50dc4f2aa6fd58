package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTextAsset(t *testing.T) {
	rt := NewMemory()

	h := rt.NewTextAsset("ALBUM1000", `[]`)
	require.False(t, h.IsNil())
	assert.True(t, rt.Alive(h))

	text, ok := rt.TextAssetText(h)
	assert.True(t, ok)
	assert.Equal(t, `[]`, text)

	kind, ok := rt.Kind(h)
	assert.True(t, ok)
	assert.Equal(t, KindText, kind)
}

func TestMemoryDestroy(t *testing.T) {
	rt := NewMemory()

	h := rt.NewTextAsset("a", "b")
	rt.Destroy(h)

	assert.False(t, rt.Alive(h))
	_, ok := rt.TextAssetText(h)
	assert.False(t, ok)
	assert.Equal(t, 0, rt.Len())

	// Handles are never reused.
	h2 := rt.NewTextAsset("a", "b")
	assert.NotEqual(t, h, h2)
	assert.False(t, rt.Alive(h))
}

func TestMemoryNilHandle(t *testing.T) {
	rt := NewMemory()
	assert.False(t, rt.Alive(Nil))
	assert.True(t, Nil.IsNil())
}

func TestMemoryClipData(t *testing.T) {
	rt := NewMemory()

	h := rt.NewAudioClip("clip", 4, 2, 44100)
	require.True(t, rt.Alive(h))

	ok := rt.SetClipData(h, []float32{1, 2, 3, 4}, 0)
	assert.True(t, ok)
	ok = rt.SetClipData(h, []float32{5, 6, 7, 8, 9, 10}, 2)
	assert.True(t, ok)

	clip, ok := rt.Clip(h)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, clip.Data)
	assert.Equal(t, 8, clip.Written)
	assert.Equal(t, 2, clip.Writes)
}

func TestMemoryClipDataRejectsDeadClip(t *testing.T) {
	rt := NewMemory()

	h := rt.NewAudioClip("clip", 4, 1, 44100)
	rt.Destroy(h)

	assert.False(t, rt.SetClipData(h, []float32{1}, 0))
}

func TestMemoryClipInvalidShape(t *testing.T) {
	rt := NewMemory()

	assert.Equal(t, Nil, rt.NewAudioClip("bad", 10, 0, 44100))
	assert.Equal(t, Nil, rt.NewAudioClip("bad", -1, 2, 44100))
}

func TestMemoryStrings(t *testing.T) {
	rt := NewMemory()

	ref := rt.Intern("fs_song_music")
	s, ok := rt.String(ref)
	assert.True(t, ok)
	assert.Equal(t, "fs_song_music", s)

	_, ok = rt.String(0)
	assert.False(t, ok)
}

func TestMemoryRegisterConfigKeepsFirst(t *testing.T) {
	rt := NewMemory()

	rt.RegisterConfig("ALBUM1000", "first")
	rt.RegisterConfig("ALBUM1000", "second")

	text, ok := rt.Config("ALBUM1000")
	assert.True(t, ok)
	assert.Equal(t, "first", text)
}

func TestMemoryStageAndSprite(t *testing.T) {
	rt := NewMemory()

	stage := rt.NewStageInfo(StageInfo{MapName: "0_map2", Difficulty: 2})
	info, ok := rt.Stage(stage)
	require.True(t, ok)
	assert.Equal(t, 2, info.Difficulty)

	sprite := rt.NewSprite("cover", []byte{0x89, 'P', 'N', 'G'})
	img, ok := rt.Sprite(sprite)
	require.True(t, ok)
	assert.Len(t, img, 4)

	_, ok = rt.Stage(sprite)
	assert.False(t, ok)
}
