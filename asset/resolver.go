package asset

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/opd-ai/customalbums/album"
	"github.com/opd-ai/customalbums/codec"
	"github.com/opd-ai/customalbums/decode"
	"github.com/opd-ai/customalbums/host"
	"github.com/sirupsen/logrus"
)

// CoverFile is the cover image inside album storage.
const CoverFile = "cover.png"

// MusicSampleRate is the rate charts are timed against. Full tracks at any
// other rate drift out of sync.
const MusicSampleRate = 44100

// Albums is the album registry the resolver reads from.
type Albums interface {
	Lookup(key string) (*album.Album, bool)
	All() []*album.Album
}

// DefaultTitles returns the built-in title of the custom album set per
// game language.
func DefaultTitles() map[string]string {
	return map[string]string{
		"English":  "Custom Albums",
		"ChineseS": "自定义",
		"ChineseT": "自定義",
		"Japanese": "カスタムアルバム",
		"Korean":   "커스텀앨범",
	}
}

// Config configures a Resolver.
type Config struct {
	// UID is the album UID; the manifest is named ALBUM<UID+1>.
	UID int
	// Titles maps game languages to the album set title. Nil selects
	// DefaultTitles.
	Titles map[string]string
	// Codecs selects the audio adapters. Nil selects codec.Default.
	Codecs *codec.Registry
}

// Stats counts resolution outcomes.
type Stats struct {
	Hits        int
	Resumed     int
	Misses      int
	Purges      int
	Synthesized int
	PassThrough int
}

// Resolver serves intercepted asset requests.
//
// It is not safe for concurrent use; the game calls LoadFromName from its
// main thread only.
type Resolver struct {
	rt         host.Runtime
	albums     Albums
	scheduler  *decode.Scheduler
	codecs     *codec.Registry
	classifier Classifier
	titles     map[string]string
	uid        int

	cache *Cache
	stats Stats
}

// NewResolver creates a resolver over albums. Audio is decoded through
// scheduler.
func NewResolver(rt host.Runtime, albums Albums, scheduler *decode.Scheduler, cfg Config) *Resolver {
	titles := cfg.Titles
	if titles == nil {
		titles = DefaultTitles()
	}
	codecs := cfg.Codecs
	if codecs == nil {
		codecs = codec.Default()
	}

	languages := make([]string, 0, len(titles))
	for lang := range titles {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	return &Resolver{
		rt:         rt,
		albums:     albums,
		scheduler:  scheduler,
		codecs:     codecs,
		classifier: NewClassifier(cfg.UID, languages),
		titles:     titles,
		uid:        cfg.UID,
		cache:      NewCache(rt),
	}
}

// Classifier returns the name classifier in use.
func (r *Resolver) Classifier() Classifier { return r.classifier }

// Cache returns the asset cache.
func (r *Resolver) Cache() *Cache { return r.cache }

// Stats returns the resolution counters.
func (r *Resolver) Stats() Stats {
	s := r.stats
	s.Purges = r.cache.Purges()
	return s
}

// Resolve returns the object to hand back to the game for name.
//
// The lookup runs in this order:
//  1. Empty names and SkipName return original untouched
//  2. A cached object is returned, promoting its decode job if it was parked
//  3. Names the classifier does not own, and localized or title names for a
//     language other than the runtime's active one, return original
//  4. Everything else is synthesized from the album registry and cached
//     when its kind allows it
//
// Parameters:
//   - name: The asset name the game asked for
//   - original: What the game's own loader returned for name (may be Nil)
//
// Returns the synthesized object, or original when nothing custom applies.
// Failures are logged and contained, so Resolve never panics or errors; a
// missing album asset also falls back to original.
func (r *Resolver) Resolve(name string, original host.Handle) host.Handle {
	if name == "" || name == SkipName {
		return original
	}

	if h, ok := r.cache.Get(name); ok {
		r.stats.Hits++
		if r.scheduler != nil && r.scheduler.IsParked(name) {
			r.stats.Resumed++
			_ = r.scheduler.Promote(name)
			logrus.WithFields(logrus.Fields{
				"function": "Resolver.Resolve",
				"name":     name,
			}).Info("Resuming async load")
		} else {
			logrus.WithFields(logrus.Fields{
				"function": "Resolver.Resolve",
				"name":     name,
			}).Debug("Using cache")
		}
		return h
	}

	c := r.classifier.Classify(name)
	if c.Kind == KindPassThrough {
		r.stats.PassThrough++
		return original
	}
	if c.Language != "" {
		if active := r.rt.ActiveLanguage(); c.Language != active {
			r.stats.PassThrough++
			logrus.WithFields(logrus.Fields{
				"function": "Resolver.Resolve",
				"name":     name,
				"language": c.Language,
				"active":   active,
			}).Debug("Not the active language, using original")
			return original
		}
	}

	h, err := r.synthesize(c, original)
	if err != nil {
		entry := logrus.WithFields(logrus.Fields{
			"function": "Resolver.Resolve",
			"name":     name,
			"kind":     c.Kind.String(),
			"error":    err.Error(),
		})
		if errors.Is(err, ErrNotFound) {
			entry.Error("Asset not found in album")
		} else {
			entry.Warn("Failed to synthesize asset")
		}
	}

	if h.IsNil() {
		r.stats.Misses++
		logrus.WithFields(logrus.Fields{
			"function": "Resolver.Resolve",
			"name":     name,
			"kind":     c.Kind.String(),
		}).Debug("No custom asset, using original")
		return original
	}

	r.stats.Synthesized++
	if c.Kind.Cacheable() {
		r.cache.Put(name, h)
		logrus.WithFields(logrus.Fields{
			"function": "Resolver.Resolve",
			"name":     name,
			"kind":     c.Kind.String(),
		}).Info("Cached asset")
	} else {
		logrus.WithFields(logrus.Fields{
			"function": "Resolver.Resolve",
			"name":     name,
			"kind":     c.Kind.String(),
		}).Info("Loaded asset")
	}

	return h
}

func (r *Resolver) synthesize(c Classification, original host.Handle) (host.Handle, error) {
	switch c.Kind {
	case KindManifest:
		text, err := BuildManifest(r.uid, r.albums.All())
		if err != nil {
			return host.Nil, err
		}
		return r.publishText(c.Name, text)

	case KindLocalizedManifest:
		text, err := AppendLocalized(r.originalText(original), r.albums.All())
		if err != nil {
			return host.Nil, err
		}
		return r.publishText(c.Name, text)

	case KindTitleAppend:
		text, err := AppendTitle(r.originalText(original), r.titles[c.Language])
		if err != nil {
			return host.Nil, err
		}
		return r.publishText(c.Name, text)
	}

	a, ok := r.albums.Lookup(c.Key)
	if !ok {
		return host.Nil, nil
	}

	switch c.Kind {
	case KindMusic:
		return r.loadAudio(c.Name, a, "music")
	case KindDemo:
		return r.loadAudio(c.Name, a, "demo")
	case KindCover:
		return r.loadCover(c.Name, a)
	case KindChart:
		return r.loadChart(a, c.Difficulty)
	}
	return host.Nil, nil
}

func (r *Resolver) originalText(original host.Handle) string {
	if original.IsNil() {
		return ""
	}
	text, _ := r.rt.TextAssetText(original)
	return text
}

func (r *Resolver) publishText(name, text string) (host.Handle, error) {
	h := r.rt.NewTextAsset(name, text)
	if h.IsNil() {
		return host.Nil, fmt.Errorf("%w: text asset %s", ErrAllocation, name)
	}
	r.rt.RegisterConfig(name, text)
	return h, nil
}

// loadAudio opens <logical>.<ext> for the first registered extension the
// album carries, allocates the full-length clip and starts streaming into it.
func (r *Resolver) loadAudio(name string, a *album.Album, logical string) (host.Handle, error) {
	if r.scheduler == nil {
		return host.Nil, fmt.Errorf("no decode scheduler for %s", name)
	}

	exts := r.codecs.Extensions()
	for _, ext := range exts {
		file := logical + "." + ext
		if !a.HasFile(file) {
			continue
		}

		data, err := a.ReadFile(file)
		if err != nil {
			return host.Nil, wrapNotFound(err)
		}

		src, err := r.codecs.Open(ext, data)
		if err != nil {
			return host.Nil, fmt.Errorf("open %s/%s: %w", a.Key, file, err)
		}

		if logical == "music" && ext == codec.FormatMP3 && src.SampleRate() != MusicSampleRate {
			logrus.WithFields(logrus.Fields{
				"function":    "Resolver.loadAudio",
				"name":        name,
				"sample_rate": src.SampleRate(),
			}).Warn("Music is not 44.1 kHz, desyncs may occur; consider ogg or resampling to 44.1 kHz")
		}

		channels := src.Channels()
		if channels <= 0 {
			src.Release()
			return host.Nil, fmt.Errorf("open %s/%s: %w", a.Key, file, codec.ErrInvalidStream)
		}
		frames := int(src.TotalSamples() / int64(channels))
		clip := r.rt.NewAudioClip(name, frames, channels, src.SampleRate())
		if clip.IsNil() {
			src.Release()
			return host.Nil, fmt.Errorf("%w: audio clip %s", ErrAllocation, name)
		}

		if _, err := r.scheduler.Start(name, clip, src); err != nil {
			src.Release()
			return host.Nil, err
		}
		return clip, nil
	}

	return host.Nil, fmt.Errorf("%w: %s/%s.{%s}", ErrNotFound, a.Key, logical, strings.Join(exts, ","))
}

func (r *Resolver) loadCover(name string, a *album.Album) (host.Handle, error) {
	data, err := a.ReadFile(CoverFile)
	if err != nil {
		return host.Nil, wrapNotFound(err)
	}
	h := r.rt.NewSprite(name, data)
	if h.IsNil() {
		return host.Nil, fmt.Errorf("%w: sprite %s", ErrAllocation, name)
	}
	return h, nil
}

// loadChart builds a fresh stage descriptor on every call.
func (r *Resolver) loadChart(a *album.Album, difficulty int) (host.Handle, error) {
	sheet, err := a.Sheet(difficulty)
	if err != nil {
		return host.Nil, wrapNotFound(err)
	}

	h := r.rt.NewStageInfo(host.StageInfo{
		MapName:    sheet.MapName,
		Music:      strconv.Itoa(a.Index),
		Name:       a.Info.Name,
		MD5:        sheet.MD5,
		Difficulty: sheet.Difficulty,
		BPM:        a.Info.BPMValue(),
	})
	if h.IsNil() {
		return host.Nil, fmt.Errorf("%w: stage %s", ErrAllocation, sheet.MapName)
	}
	return h, nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, album.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
