package cluster

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Cluster ids produced by Assign.
const (
	Comprehensive = 0
	Medical       = 1
	Leisure       = 2
	CafeCulture   = 3
	Basic         = 4
)

// PaletteEntry names and colours one cluster.
type PaletteEntry struct {
	Cluster int    `yaml:"cluster"`
	Type    string `yaml:"type"`
	Color   string `yaml:"color"`
}

// Palette maps cluster ids to display names and colours.
type Palette []PaletteEntry

// DefaultPalette is the five-type palette used when no palette file is configured.
func DefaultPalette() Palette {
	return Palette{
		{Cluster: Comprehensive, Type: "종합 인프라형", Color: "#FF5733"},
		{Cluster: Medical, Type: "의료 중심형", Color: "#33FF57"},
		{Cluster: Leisure, Type: "여가 중심형", Color: "#3357FF"},
		{Cluster: CafeCulture, Type: "카페 문화형", Color: "#FF33A8"},
		{Cluster: Basic, Type: "기본 인프라형", Color: "#FFD700"},
	}
}

// Entry returns the palette entry for a cluster id.
func (p Palette) Entry(id int) (PaletteEntry, bool) {
	for _, e := range p {
		if e.Cluster == id {
			return e, true
		}
	}
	return PaletteEntry{}, false
}

type paletteFile struct {
	Clusters Palette `yaml:"clusters"`
}

// LoadPalette reads a YAML palette file. Ids missing from the file fall back to the default
// palette entry.
func LoadPalette(path string) (Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cluster: read palette %s", path)
	}
	return ParsePalette(data)
}

// ParsePalette parses YAML palette content.
func ParsePalette(data []byte) (Palette, error) {
	var f paletteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "cluster: parse palette")
	}

	out := DefaultPalette()
	for _, e := range f.Clusters {
		idx := -1
		for i := range out {
			if out[i].Cluster == e.Cluster {
				idx = i
				break
			}
		}
		if idx < 0 {
			out = append(out, e)
			continue
		}
		if e.Type != "" {
			out[idx].Type = e.Type
		}
		if e.Color != "" {
			out[idx].Color = e.Color
		}
	}
	return out, nil
}
