// Package geo loads district boundaries and joins facility points onto them.
package geo

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// DefaultNameField is the attribute holding the district name in Korean administrative
// boundary datasets.
const DefaultNameField = "ADM_NM"

// UnknownName is used for a boundary whose name attribute is missing.
const UnknownName = "알 수 없음"

// Boundary is one district outline.
type Boundary struct {
	Name   string
	Geom   *geom.MultiPolygon
	bounds *geom.Bounds
}

// NewBoundary wraps a multipolygon. A nil geometry never contains anything.
func NewBoundary(name string, mp *geom.MultiPolygon) Boundary {
	b := Boundary{Name: name, Geom: mp}
	if mp != nil && !mp.Empty() {
		b.bounds = mp.Bounds()
	}
	return b
}

// Contains reports whether the point (x, y) lies inside the boundary and outside its holes.
func (b Boundary) Contains(x, y float64) bool {
	if b.Geom == nil || b.bounds == nil {
		return false
	}
	if x < b.bounds.Min(0) || x > b.bounds.Max(0) || y < b.bounds.Min(1) || y > b.bounds.Max(1) {
		return false
	}
	pt := geom.Coord{x, y}
	for i := 0; i < b.Geom.NumPolygons(); i++ {
		if polygonContains(b.Geom.Polygon(i), pt) {
			return true
		}
	}
	return false
}

func polygonContains(p *geom.Polygon, pt geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	layout := p.Layout()
	if !xy.IsPointInRing(layout, pt, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(layout, pt, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// Locate returns the name of the first boundary containing (x, y).
func Locate(boundaries []Boundary, x, y float64) (string, bool) {
	for _, b := range boundaries {
		if b.Contains(x, y) {
			return b.Name, true
		}
	}
	return "", false
}

// Names lists boundary names in load order, skipping repeats.
func Names(boundaries []Boundary) []string {
	seen := make(map[string]bool, len(boundaries))
	names := make([]string, 0, len(boundaries))
	for _, b := range boundaries {
		if seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		names = append(names, b.Name)
	}
	return names
}
