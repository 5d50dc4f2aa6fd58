package asset

import (
	"fmt"
	"strings"

	"github.com/opd-ai/customalbums/album"
)

// SkipName is never intercepted; the original result is returned as is.
const SkipName = "LocalizationSettings"

// DefaultUID is the album UID the game knows the custom album set by.
const DefaultUID = 999

// TitlePrefix prefixes the per-language album title list.
const TitlePrefix = "albums_"

// Suffixes are the recognized asset suffixes in match order.
var Suffixes = []string{
	"_demo",
	"_music",
	"_cover",
	"_map1",
	"_map2",
	"_map3",
	"_map4",
}

// Prefixes are the album key prefixes of custom asset names.
var Prefixes = []string{album.DirPrefix, album.PackagePrefix}

// Kind is the classification of an asset name.
type Kind int

const (
	// KindPassThrough names are not ours; the original result is used.
	KindPassThrough Kind = iota
	// KindManifest is the generated album list, ALBUM<uid+1>.
	KindManifest
	// KindLocalizedManifest is ALBUM<uid+1>_<language>.
	KindLocalizedManifest
	// KindTitleAppend is the album title list albums_<language>.
	KindTitleAppend
	// KindMusic is an album's full track.
	KindMusic
	// KindDemo is an album's preview track.
	KindDemo
	// KindCover is an album's cover image.
	KindCover
	// KindChart is an album's stage descriptor for one difficulty.
	KindChart
)

var kindNames = [...]string{
	KindPassThrough:       "pass-through",
	KindManifest:          "manifest",
	KindLocalizedManifest: "localized-manifest",
	KindTitleAppend:       "title-append",
	KindMusic:             "music",
	KindDemo:              "demo",
	KindCover:             "cover",
	KindChart:             "chart",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Cacheable reports whether results of this kind may be cached. Stage
// descriptors are mutated by the game after retrieval and must be fresh.
func (k Kind) Cacheable() bool {
	return k != KindChart && k != KindPassThrough
}

// Classification is the result of classifying one asset name.
type Classification struct {
	Kind Kind
	Name string
	// Key is the album key, the name without its suffix.
	Key    string
	Suffix string
	// Difficulty is 1..4 for charts.
	Difficulty int
	// Language is set for localized kinds.
	Language string
}

// ManifestName returns the generated manifest name for uid.
func ManifestName(uid int) string {
	return fmt.Sprintf("ALBUM%d", uid+1)
}

// Classifier maps asset names to kinds.
type Classifier struct {
	manifest  string
	languages map[string]bool
}

// NewClassifier creates a classifier for the manifest of uid. Localized
// names are recognized only for the given languages.
func NewClassifier(uid int, languages []string) Classifier {
	c := Classifier{
		manifest:  ManifestName(uid),
		languages: make(map[string]bool, len(languages)),
	}
	for _, lang := range languages {
		c.languages[lang] = true
	}
	return c
}

// Manifest returns the generated manifest name.
func (c Classifier) Manifest() string { return c.manifest }

// Classify determines the kind of name. Exact generated names are checked
// before the suffix rules.
func (c Classifier) Classify(name string) Classification {
	out := Classification{Kind: KindPassThrough, Name: name}

	switch {
	case name == c.manifest:
		out.Kind = KindManifest
		return out
	case strings.HasPrefix(name, c.manifest+"_"):
		if lang := strings.TrimPrefix(name, c.manifest+"_"); c.languages[lang] {
			out.Kind = KindLocalizedManifest
			out.Language = lang
		}
		return out
	case strings.HasPrefix(name, TitlePrefix):
		if lang := strings.TrimPrefix(name, TitlePrefix); c.languages[lang] {
			out.Kind = KindTitleAppend
			out.Language = lang
		}
		return out
	}

	key, suffix, ok := StripSuffix(name)
	if !ok {
		return out
	}
	out.Key = key
	out.Suffix = suffix

	switch suffix {
	case "_demo":
		out.Kind = KindDemo
	case "_music":
		out.Kind = KindMusic
	case "_cover":
		out.Kind = KindCover
	default:
		out.Kind = KindChart
		out.Difficulty = int(suffix[len(suffix)-1] - '0')
	}
	return out
}

// StripSuffix splits a custom asset name into album key and suffix. It
// fails for names without a known prefix, without a known suffix, or with
// nothing between the two.
func StripSuffix(name string) (key, suffix string, ok bool) {
	prefix := ""
	for _, p := range Prefixes {
		if strings.HasPrefix(name, p) {
			prefix = p
			break
		}
	}
	if prefix == "" {
		return "", "", false
	}

	for _, s := range Suffixes {
		if !strings.HasSuffix(name, s) {
			continue
		}
		if len(name) <= len(prefix)+len(s) {
			return "", "", false
		}
		return name[:len(name)-len(s)], s, true
	}
	return "", "", false
}

// JoinSuffix is the inverse of StripSuffix.
func JoinSuffix(key, suffix string) string {
	return key + suffix
}
