package album

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultBPM is used for stage descriptors when info.json carries no
// parsable tempo.
const DefaultBPM = 100

// MaxDifficulty is the highest chart difficulty slot.
const MaxDifficulty = 4

// Info is the decoded info.json of an album.
type Info struct {
	Name           string `json:"name"`
	Author         string `json:"author"`
	BPM            string `json:"bpm"`
	Scene          string `json:"scene"`
	LevelDesigner  string `json:"levelDesigner"`
	LevelDesigner1 string `json:"levelDesigner1"`
	LevelDesigner2 string `json:"levelDesigner2"`
	LevelDesigner3 string `json:"levelDesigner3"`
	LevelDesigner4 string `json:"levelDesigner4"`
	Difficulty1    string `json:"difficulty1"`
	Difficulty2    string `json:"difficulty2"`
	Difficulty3    string `json:"difficulty3"`
	Difficulty4    string `json:"difficulty4"`
}

// ParseInfo decodes info.json. Numeric values for string fields are
// accepted since hand-written files mix both forms.
func ParseInfo(data []byte) (Info, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrInvalidInfo, err)
	}

	var info Info
	fields := map[string]*string{
		"name":           &info.Name,
		"author":         &info.Author,
		"bpm":            &info.BPM,
		"scene":          &info.Scene,
		"levelDesigner":  &info.LevelDesigner,
		"levelDesigner1": &info.LevelDesigner1,
		"levelDesigner2": &info.LevelDesigner2,
		"levelDesigner3": &info.LevelDesigner3,
		"levelDesigner4": &info.LevelDesigner4,
		"difficulty1":    &info.Difficulty1,
		"difficulty2":    &info.Difficulty2,
		"difficulty3":    &info.Difficulty3,
		"difficulty4":    &info.Difficulty4,
	}
	for key, dst := range fields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		s, err := scalarString(value)
		if err != nil {
			return Info{}, fmt.Errorf("%w: field %q: %v", ErrInvalidInfo, key, err)
		}
		*dst = s
	}

	return info, nil
}

func scalarString(value json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(value, &n); err == nil {
		return n.String(), nil
	}
	if strings.TrimSpace(string(value)) == "null" {
		return "", nil
	}
	return "", fmt.Errorf("expected string or number, got %s", value)
}

// BPMValue returns the tempo as a number, falling back to DefaultBPM.
func (i Info) BPMValue() float64 {
	bpm, err := strconv.ParseFloat(strings.TrimSpace(i.BPM), 64)
	if err != nil || bpm <= 0 {
		return DefaultBPM
	}
	return bpm
}

// LevelDesignerFor returns the designer credited for difficulty d.
func (i Info) LevelDesignerFor(d int) string {
	switch d {
	case 1:
		return i.LevelDesigner1
	case 2:
		return i.LevelDesigner2
	case 3:
		return i.LevelDesigner3
	case 4:
		return i.LevelDesigner4
	}
	return ""
}

// DifficultyFor returns the displayed level of difficulty d.
func (i Info) DifficultyFor(d int) string {
	switch d {
	case 1:
		return i.Difficulty1
	case 2:
		return i.Difficulty2
	case 3:
		return i.Difficulty3
	case 4:
		return i.Difficulty4
	}
	return ""
}

// Difficulties lists the declared difficulty slots in ascending order.
// A slot is declared when its level is non-empty and not "0".
func (i Info) Difficulties() []int {
	var out []int
	for d := 1; d <= MaxDifficulty; d++ {
		level := strings.TrimSpace(i.DifficultyFor(d))
		if level == "" || level == "0" {
			continue
		}
		out = append(out, d)
	}
	return out
}
