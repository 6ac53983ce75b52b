package cluster

import "github.com/pawmap/pawmap/internal/model"

// Style is the polygon style applied to a district layer.
type Style struct {
	FillColor   string  `json:"fillColor"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	Color       string  `json:"color"`
	DashArray   string  `json:"dashArray"`
	FillOpacity float64 `json:"fillOpacity"`
}

// DefaultFillColor is the fill of an unclustered district.
const DefaultFillColor = "#3388ff"

// DefaultStyle is applied to every district while clusters are hidden, and to unclustered
// districts while they are shown.
var DefaultStyle = Style{
	FillColor:   DefaultFillColor,
	Weight:      1,
	Opacity:     1,
	Color:       "white",
	DashArray:   "3",
	FillOpacity: 0.7,
}

// StyleFor returns the style for a descriptor. A nil descriptor gets DefaultStyle.
func StyleFor(d *model.ClusterDescriptor) Style {
	s := DefaultStyle
	if d == nil || d.Color == "" {
		return s
	}
	s.FillColor = d.Color
	return s
}

// Highlight returns s as drawn under the pointer: thicker solid border, denser fill.
func Highlight(s Style) Style {
	s.Weight = 3
	s.DashArray = ""
	s.FillOpacity = 0.9
	return s
}
