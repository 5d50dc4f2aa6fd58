package asset

import (
	"testing"

	"github.com/opd-ai/customalbums/album"
	"github.com/opd-ai/customalbums/decode"
	"github.com/opd-ai/customalbums/host"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFixture struct {
	rt        *host.Memory
	scheduler *decode.Scheduler
	codecs    *fakeCodecs
	resolver  *Resolver
}

func newFixture(t *testing.T, total int64, rate int, albums ...*album.Album) *resolverFixture {
	t.Helper()
	rt := host.NewMemory()
	s := decode.NewScheduler(rt)
	codecs := newFakeCodecs(total, rate)
	r := NewResolver(rt, album.NewRegistry(albums...), s, Config{
		UID:    DefaultUID,
		Codecs: codecs.registry,
	})
	return &resolverFixture{rt: rt, scheduler: s, codecs: codecs, resolver: r}
}

func TestResolveMusicScenario(t *testing.T) {
	f := newFixture(t, 88200, 44100, mychart(t))

	h := f.resolver.Resolve("fs_mychart_music", host.Nil)
	require.False(t, h.IsNil())

	clip, ok := f.rt.Clip(h)
	require.True(t, ok)
	assert.Equal(t, 44100, clip.Frames)
	assert.Equal(t, 2, clip.Channels)
	assert.Equal(t, 44100, clip.SampleRate)
	assert.Equal(t, 0, clip.Written, "clip is returned before any decode work")

	job, ok := f.scheduler.Job("fs_mychart_music")
	require.True(t, ok)
	assert.Equal(t, job, f.scheduler.Active())
	assert.Equal(t, 1, f.resolver.Cache().Len())

	var finished []decode.StepResult
	f.scheduler.OnFinish(func(_ *decode.Job, r decode.StepResult) { finished = append(finished, r) })

	ticks := 0
	for f.scheduler.Len() > 0 {
		f.scheduler.Tick()
		ticks++
		require.LessOrEqual(t, ticks, 22)
	}

	assert.Equal(t, 22, ticks)
	assert.Equal(t, []decode.StepResult{decode.StepDone}, finished)
	assert.Equal(t, 88200, clip.Written)
	assert.Equal(t, 1, f.codecs.opened[0].releases)

	// Still cached after the decode finished.
	assert.Equal(t, h, f.resolver.Resolve("fs_mychart_music", host.Nil))
}

func TestResolveTwiceReturnsCachedHandle(t *testing.T) {
	f := newFixture(t, 10000, 44100, mychart(t))

	names := []string{"fs_mychart_music", "fs_mychart_demo", "fs_mychart_cover", "ALBUM1000"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			opened := len(f.codecs.opened)
			jobs := f.scheduler.Len()
			objects := f.rt.Len()

			first := f.resolver.Resolve(name, host.Nil)
			require.False(t, first.IsNil())
			created := f.rt.Len()

			second := f.resolver.Resolve(name, host.Nil)
			assert.Equal(t, first, second)
			assert.Equal(t, created, f.rt.Len(), "no re-synthesis on cache hit")
			assert.LessOrEqual(t, f.scheduler.Len()-jobs, 1)
			assert.LessOrEqual(t, len(f.codecs.opened)-opened, 1)
			assert.Greater(t, created, objects)
		})
	}
}

func TestResolveMissingDifficulty(t *testing.T) {
	f := newFixture(t, 1000, 44100, mychart(t))

	h := f.resolver.Resolve("fs_mychart_map2", host.Nil)

	assert.True(t, h.IsNil())
	assert.Equal(t, 0, f.resolver.Cache().Len())
	assert.Equal(t, 0, f.scheduler.Len())
	assert.Equal(t, 1, f.resolver.Stats().Misses)
}

func TestResolveChartNeverCached(t *testing.T) {
	f := newFixture(t, 1000, 44100, mychart(t))

	first := f.resolver.Resolve("fs_mychart_map3", host.Nil)
	second := f.resolver.Resolve("fs_mychart_map3", host.Nil)

	require.False(t, first.IsNil())
	require.False(t, second.IsNil())
	assert.NotEqual(t, first, second)
	assert.Equal(t, 0, f.resolver.Cache().Len())

	stage, ok := f.rt.Stage(first)
	require.True(t, ok)
	assert.Equal(t, host.StageInfo{
		MapName:    "0_map3",
		Music:      "0",
		Name:       "My Chart",
		MD5:        stage.MD5,
		Difficulty: 3,
		BPM:        150,
	}, stage)
	assert.Len(t, stage.MD5, 32)
}

func TestResolveManifest(t *testing.T) {
	f := newFixture(t, 1000, 44100, mychart(t))
	original := f.rt.NewTextAsset("ALBUM1000", "[]")

	h := f.resolver.Resolve("ALBUM1000", original)
	require.False(t, h.IsNil())
	assert.NotEqual(t, original, h, "generated manifest takes precedence")

	text, ok := f.rt.TextAssetText(h)
	require.True(t, ok)
	assert.Contains(t, text, `"uid":"999-0"`)
	assert.Contains(t, text, `"music":"fs_mychart_music"`)

	registered, ok := f.rt.Config("ALBUM1000")
	require.True(t, ok)
	assert.Equal(t, text, registered)
}

func TestResolveLocalizedAppendsToOriginal(t *testing.T) {
	f := newFixture(t, 1000, 44100, mychart(t))

	tests := []struct {
		name     string
		language string
		original string
		want     string
	}{
		{"ALBUM1000_English", "English", `[{"name":"base","author":"game"}]`, `[{"name":"base","author":"game"},{"name":"My Chart","author":"someone"}]`},
		{"albums_English", "English", `[{"title":"Default Music"}]`, `[{"title":"Default Music"},{"title":"Custom Albums"}]`},
		{"albums_Korean", "Korean", `[]`, `[{"title":"커스텀앨범"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.rt.SetLanguage(tt.language)
			original := f.rt.NewTextAsset(tt.name, tt.original)
			h := f.resolver.Resolve(tt.name, original)
			require.False(t, h.IsNil())

			text, ok := f.rt.TextAssetText(h)
			require.True(t, ok)
			assert.JSONEq(t, tt.want, text)
		})
	}
}

func TestResolveLocalizedWithNullOriginal(t *testing.T) {
	f := newFixture(t, 1000, 44100, mychart(t))
	f.rt.SetLanguage("Japanese")

	h := f.resolver.Resolve("ALBUM1000_Japanese", host.Nil)
	text, ok := f.rt.TextAssetText(h)
	require.True(t, ok)
	assert.JSONEq(t, `[{"name":"My Chart","author":"someone"}]`, text)
}

func TestResolveLocalizedOnlyForActiveLanguage(t *testing.T) {
	f := newFixture(t, 1000, 44100, mychart(t))
	f.rt.SetLanguage("English")

	for _, name := range []string{"albums_Japanese", "ALBUM1000_Korean"} {
		original := f.rt.NewTextAsset(name, `[{"title":"native"}]`)
		assert.Equal(t, original, f.resolver.Resolve(name, original), name)
		assert.Equal(t, host.Nil, f.resolver.Resolve(name, host.Nil), name)
	}
	assert.Equal(t, 0, f.resolver.Cache().Len())
	assert.Equal(t, 4, f.resolver.Stats().PassThrough)

	// Switching language makes the same name ours.
	f.rt.SetLanguage("Japanese")
	h := f.resolver.Resolve("albums_Japanese", host.Nil)
	text, ok := f.rt.TextAssetText(h)
	require.True(t, ok)
	assert.JSONEq(t, `[{"title":"カスタムアルバム"}]`, text)
}

func TestResolvePassThrough(t *testing.T) {
	f := newFixture(t, 1000, 44100, mychart(t))
	original := f.rt.NewTextAsset("x", "y")

	tests := []struct {
		name     string
		original host.Handle
	}{
		{"", original},
		{SkipName, original},
		{"SomeGameAsset", original},
		{"SomeGameAsset", host.Nil},
		{"fs_unknown_music", original},
		{"fs_unknown_music", host.Nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.original, f.resolver.Resolve(tt.name, tt.original), tt.name)
	}
	assert.Equal(t, 0, f.resolver.Cache().Len())
	assert.Equal(t, 0, f.scheduler.Len())
}

func TestResolveCover(t *testing.T) {
	f := newFixture(t, 1000, 44100, mychart(t))

	h := f.resolver.Resolve("fs_mychart_cover", host.Nil)
	data, ok := f.rt.Sprite(h)
	require.True(t, ok)
	assert.Equal(t, []byte("png bytes"), data)
}

func TestResolveMissingAudioFile(t *testing.T) {
	a := newTestAlbum(t, "fs_silent", 0, map[string]string{"info.json": `{"name":"s"}`})
	f := newFixture(t, 1000, 44100, a)
	hook := test.NewGlobal()
	defer hook.Reset()

	for _, name := range []string{"fs_silent_music", "fs_silent_demo", "fs_silent_cover"} {
		assert.True(t, f.resolver.Resolve(name, host.Nil).IsNil(), name)
	}
	assert.Equal(t, 0, f.scheduler.Len())
	assert.Equal(t, 0, f.resolver.Cache().Len())

	errorsLogged := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Message == "Asset not found in album" {
			errorsLogged++
		}
	}
	assert.Equal(t, 3, errorsLogged)
}

func TestResolveCorruptAudio(t *testing.T) {
	a := newTestAlbum(t, "fs_bad", 0, map[string]string{
		"info.json": `{"name":"b"}`,
		"music.mp3": "corrupt",
	})
	f := newFixture(t, 1000, 44100, a)

	assert.True(t, f.resolver.Resolve("fs_bad_music", host.Nil).IsNil())
	assert.Equal(t, 0, f.scheduler.Len())
}

func TestResolvePrefersFirstExtension(t *testing.T) {
	a := newTestAlbum(t, "fs_both", 0, map[string]string{
		"info.json": `{"name":"b"}`,
		"music.mp3": "mp3",
		"music.ogg": "ogg",
	})
	f := newFixture(t, 1000, 44100, a)

	f.resolver.Resolve("fs_both_music", host.Nil)
	require.Len(t, f.codecs.opened, 1)
	assert.Equal(t, "mp3", f.codecs.opened[0].format)
}

func TestResolveWarnsOnNonStandardMusicRate(t *testing.T) {
	f := newFixture(t, 1000, 48000, mychart(t))
	hook := test.NewGlobal()
	defer hook.Reset()

	f.resolver.Resolve("fs_mychart_music", host.Nil)
	f.resolver.Resolve("fs_mychart_demo", host.Nil)

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["function"] == "Resolver.loadAudio" {
			warnings++
			assert.Equal(t, "fs_mychart_music", e.Data["name"])
		}
	}
	assert.Equal(t, 1, warnings)
}

func TestResolveResumesParkedJob(t *testing.T) {
	f := newFixture(t, 100000, 44100, mychart(t))

	music := f.resolver.Resolve("fs_mychart_music", host.Nil)
	demo := f.resolver.Resolve("fs_mychart_demo", host.Nil)
	require.False(t, demo.IsNil())

	assert.Equal(t, "fs_mychart_music", f.scheduler.ActiveName())
	assert.True(t, f.scheduler.IsParked("fs_mychart_demo"))

	f.scheduler.Tick()

	assert.Equal(t, demo, f.resolver.Resolve("fs_mychart_demo", host.Nil))
	assert.Equal(t, "fs_mychart_demo", f.scheduler.ActiveName())
	assert.Equal(t, 1, f.resolver.Stats().Resumed)

	f.scheduler.Tick()
	musicJob, _ := f.scheduler.Job("fs_mychart_music")
	demoJob, _ := f.scheduler.Job("fs_mychart_demo")
	assert.Equal(t, int64(decode.ChunkSize), musicJob.Cursor())
	assert.Equal(t, int64(decode.ChunkSize), demoJob.Cursor())

	assert.Equal(t, music, f.resolver.Resolve("fs_mychart_music", host.Nil))
	assert.Equal(t, "fs_mychart_music", f.scheduler.ActiveName())
}

func TestResolvePurgesDestroyedAsset(t *testing.T) {
	f := newFixture(t, 100000, 44100, mychart(t))

	var results []decode.StepResult
	f.scheduler.OnFinish(func(_ *decode.Job, r decode.StepResult) { results = append(results, r) })

	first := f.resolver.Resolve("fs_mychart_music", host.Nil)
	f.scheduler.Tick()
	f.rt.Destroy(first)

	second := f.resolver.Resolve("fs_mychart_music", host.Nil)
	require.False(t, second.IsNil())
	assert.NotEqual(t, first, second)

	assert.Equal(t, []decode.StepResult{decode.StepAborted}, results)
	require.Len(t, f.codecs.opened, 2)
	assert.Equal(t, 1, f.codecs.opened[0].releases)

	job, ok := f.scheduler.Job("fs_mychart_music")
	require.True(t, ok)
	assert.Equal(t, second, job.Destination())
	assert.Equal(t, int64(0), job.Cursor())

	stats := f.resolver.Stats()
	assert.Equal(t, 1, stats.Purges)
	assert.Equal(t, 2, stats.Synthesized)
}

func TestNewResolverDefaults(t *testing.T) {
	rt := host.NewMemory()
	r := NewResolver(rt, album.NewRegistry(), nil, Config{UID: DefaultUID})

	assert.Equal(t, "ALBUM1000", r.Classifier().Manifest())
	for lang := range DefaultTitles() {
		c := r.Classifier().Classify(TitlePrefix + lang)
		assert.Equal(t, KindTitleAppend, c.Kind, lang)
	}

	h := r.Resolve("ALBUM1000", host.Nil)
	text, ok := rt.TextAssetText(h)
	require.True(t, ok)
	assert.Equal(t, "[]", text)
}
