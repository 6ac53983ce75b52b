package presenter

import (
	"html"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/pawmap/pawmap/internal/cluster"
	"github.com/pawmap/pawmap/internal/geo"
)

// LayerStyle is the resting style of a district in mode.
func LayerStyle(mode DisplayMode, ref *cluster.Reference, district string) cluster.Style {
	if mode != Clustered {
		return cluster.DefaultStyle
	}
	return cluster.StyleFor(ref.Describe(district))
}

// HoverStyle is the style while the pointer is over a district.
func HoverStyle(mode DisplayMode, ref *cluster.Reference, district string) cluster.Style {
	return cluster.Highlight(LayerStyle(mode, ref, district))
}

// Popup is the click popup for a district. Cluster fields are empty for an unclustered district.
type Popup struct {
	District  string  `json:"district"`
	Clustered bool    `json:"clustered"`
	TypeLabel string  `json:"type,omitempty"`
	Hospital  float64 `json:"hospital,omitempty"`
	Cafe      float64 `json:"cafe,omitempty"`
	Park      float64 `json:"park,omitempty"`
}

// BuildPopup joins district to its cluster, if any.
func BuildPopup(ref *cluster.Reference, district string) Popup {
	p := Popup{District: district}
	if d := ref.Describe(district); d != nil {
		p.Clustered = true
		p.TypeLabel = d.TypeLabel
		p.Hospital = d.Hospital
		p.Cafe = d.Cafe
		p.Park = d.Park
	}
	return p
}

// HTML renders the popup body.
func (p Popup) HTML() string {
	var b strings.Builder
	b.WriteString("<div><strong>행정동:</strong> ")
	b.WriteString(html.EscapeString(p.District))
	b.WriteString("</div>")
	if !p.Clustered {
		return b.String()
	}
	b.WriteString("<div><strong>클러스터 유형:</strong> ")
	b.WriteString(html.EscapeString(p.TypeLabel))
	b.WriteString("</div><div><strong>시설 현황:</strong> 동물병원 ")
	b.WriteString(number(p.Hospital))
	b.WriteString("개, 애견카페 ")
	b.WriteString(number(p.Cafe))
	b.WriteString("개, 공원 ")
	b.WriteString(number(p.Park))
	b.WriteString("개</div>")
	return b.String()
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LegendTitle heads the cluster legend.
const LegendTitle = "클러스터 유형"

// LegendEntry is one swatch of the legend.
type LegendEntry struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// Legend lists cluster types in descriptor order; it is shown only in Clustered mode.
type Legend struct {
	Title   string        `json:"title"`
	Visible bool          `json:"visible"`
	Entries []LegendEntry `json:"entries"`
}

// BuildLegend builds the legend for mode.
func BuildLegend(mode DisplayMode, ref *cluster.Reference) Legend {
	l := Legend{Title: LegendTitle, Visible: mode == Clustered, Entries: []LegendEntry{}}
	if ref == nil {
		return l
	}
	for _, d := range ref.Descriptors {
		l.Entries = append(l.Entries, LegendEntry{Color: d.Color, Label: d.TypeLabel})
	}
	return l
}

// MapFeatures renders boundaries as GeoJSON with each feature's resting style, hover style and
// popup attached as properties.
func MapFeatures(boundaries []geo.Boundary, nameField string, mode DisplayMode, ref *cluster.Reference) *geojson.FeatureCollection {
	return geo.FeatureCollection(boundaries, nameField, func(name string) map[string]any {
		popup := BuildPopup(ref, name)
		props := map[string]any{
			"style":      LayerStyle(mode, ref, name),
			"hoverStyle": HoverStyle(mode, ref, name),
			"popup":      popup.HTML(),
		}
		if d := ref.Describe(name); d != nil {
			props["cluster"] = d.Cluster
		}
		return props
	})
}
