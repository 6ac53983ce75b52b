// Package presenter turns ranking, search and cluster results into the data the map front-end
// draws: chart series, ranking list items, tooltips, layer styles, popups and the legend.
package presenter

import "github.com/pawmap/pawmap/internal/model"

// DisplayMode selects how district polygons are coloured.
type DisplayMode int

const (
	// Unclustered paints every district with the default style.
	Unclustered DisplayMode = iota
	// Clustered paints each district with its cluster colour.
	Clustered
)

func (m DisplayMode) String() string {
	if m == Clustered {
		return "clustered"
	}
	return "unclustered"
}

// MarshalText encodes the mode by name.
func (m DisplayMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Toggle returns the other mode.
func (m DisplayMode) Toggle() DisplayMode {
	if m == Clustered {
		return Unclustered
	}
	return Clustered
}

// View is the state the front-end renders from. Ranking is the last computed list; tooltips
// index into it.
type View struct {
	Weights model.Weights          `json:"weights"`
	TopN    int                    `json:"top_n"`
	Ranking []model.ScoredDistrict `json:"ranking"`
	Mode    DisplayMode            `json:"mode"`

	Keyword     string        `json:"keyword,omitempty"`
	Policy      string        `json:"policy,omitempty"`
	Places      []model.Place `json:"places,omitempty"`
	SearchError string        `json:"search_error,omitempty"`
}

// Clone returns a copy that shares no slices with v.
func (v View) Clone() View {
	c := v
	c.Ranking = append([]model.ScoredDistrict(nil), v.Ranking...)
	c.Places = append([]model.Place(nil), v.Places...)
	return c
}
