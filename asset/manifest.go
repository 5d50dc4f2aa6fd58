package asset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opd-ai/customalbums/album"
	"github.com/sirupsen/logrus"
)

// ManifestEntry is one album in the generated manifest. Field order is the
// order the game's own album files use.
type ManifestEntry struct {
	UID            string `json:"uid"`
	Name           string `json:"name"`
	Author         string `json:"author"`
	BPM            string `json:"bpm"`
	Music          string `json:"music"`
	Demo           string `json:"demo"`
	Cover          string `json:"cover"`
	NoteJSON       string `json:"noteJson"`
	Scene          string `json:"scene"`
	LevelDesigner  string `json:"levelDesigner,omitempty"`
	LevelDesigner1 string `json:"levelDesigner1,omitempty"`
	LevelDesigner2 string `json:"levelDesigner2,omitempty"`
	LevelDesigner3 string `json:"levelDesigner3,omitempty"`
	LevelDesigner4 string `json:"levelDesigner4,omitempty"`
	Difficulty1    string `json:"difficulty1,omitempty"`
	Difficulty2    string `json:"difficulty2,omitempty"`
	Difficulty3    string `json:"difficulty3,omitempty"`
	Difficulty4    string `json:"difficulty4,omitempty"`
}

// LocalizedEntry is one album in a localized manifest.
type LocalizedEntry struct {
	Name   string `json:"name"`
	Author string `json:"author"`
}

// TitleEntry is the custom album set's entry in the album title list.
type TitleEntry struct {
	Title string `json:"title"`
}

// NewManifestEntry describes album a in the manifest of uid.
func NewManifestEntry(uid int, a *album.Album) ManifestEntry {
	info := a.Info
	return ManifestEntry{
		UID:            fmt.Sprintf("%d-%d", uid, a.Index),
		Name:           info.Name,
		Author:         info.Author,
		BPM:            info.BPM,
		Music:          JoinSuffix(a.Key, "_music"),
		Demo:           JoinSuffix(a.Key, "_demo"),
		Cover:          JoinSuffix(a.Key, "_cover"),
		NoteJSON:       a.Key + "_map",
		Scene:          info.Scene,
		LevelDesigner:  info.LevelDesigner,
		LevelDesigner1: info.LevelDesigner1,
		LevelDesigner2: info.LevelDesigner2,
		LevelDesigner3: info.LevelDesigner3,
		LevelDesigner4: info.LevelDesigner4,
		Difficulty1:    info.Difficulty1,
		Difficulty2:    info.Difficulty2,
		Difficulty3:    info.Difficulty3,
		Difficulty4:    info.Difficulty4,
	}
}

// BuildManifest serializes the album list, one entry per album in order.
func BuildManifest(uid int, albums []*album.Album) (string, error) {
	entries := make([]ManifestEntry, 0, len(albums))
	for _, a := range albums {
		entries = append(entries, NewManifestEntry(uid, a))
	}
	return marshal(entries)
}

// AppendLocalized appends the name and author of every album to the JSON
// array in base.
func AppendLocalized(base string, albums []*album.Album) (string, error) {
	items := parseBase(base)
	for _, a := range albums {
		raw, err := json.Marshal(LocalizedEntry{Name: a.Info.Name, Author: a.Info.Author})
		if err != nil {
			return "", err
		}
		items = append(items, raw)
	}
	return marshal(items)
}

// AppendTitle appends the custom album set's title to the JSON array in base.
func AppendTitle(base, title string) (string, error) {
	items := parseBase(base)
	raw, err := json.Marshal(TitleEntry{Title: title})
	if err != nil {
		return "", err
	}
	return marshal(append(items, raw))
}

// parseBase decodes a JSON array, keeping elements verbatim. Empty or
// malformed input yields an empty array.
func parseBase(base string) []json.RawMessage {
	items := []json.RawMessage{}
	if strings.TrimSpace(base) == "" {
		return items
	}
	if err := json.Unmarshal([]byte(base), &items); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "parseBase",
			"error":    err.Error(),
		}).Warn("Original asset is not a JSON array, starting from empty")
		return []json.RawMessage{}
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items
}

func marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	return string(data), nil
}
