package geo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// LoadGeoJSON reads a FeatureCollection file of district polygons.
func LoadGeoJSON(path, nameField string) ([]Boundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read %s", path)
	}
	return ParseGeoJSON(data, nameField)
}

// ParseGeoJSON decodes a FeatureCollection. Features that are not polygons or multipolygons
// are skipped.
func ParseGeoJSON(data []byte, nameField string) ([]Boundary, error) {
	if nameField == "" {
		nameField = DefaultNameField
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "geo: decode feature collection")
	}

	out := make([]Boundary, 0, len(fc.Features))
	skipped := 0
	for _, f := range fc.Features {
		mp := toMultiPolygon(f.Geometry)
		if mp == nil {
			skipped++
			continue
		}
		name := UnknownName
		if v, ok := f.Properties[nameField].(string); ok && strings.TrimSpace(v) != "" {
			name = strings.TrimSpace(v)
		}
		out = append(out, NewBoundary(name, mp))
	}
	if skipped > 0 {
		zap.L().Debug("geo: skipped non-polygon features", zap.Int("skipped", skipped))
	}
	return out, nil
}

// LoadBoundaries picks the reader by file extension.
func LoadBoundaries(path string, opts ShapefileOptions) ([]Boundary, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return LoadShapefile(path, opts)
	case ".geojson", ".json":
		return LoadGeoJSON(path, opts.NameField)
	default:
		return nil, eris.Errorf("geo: unsupported boundary file %s", path)
	}
}

func toMultiPolygon(g geom.T) *geom.MultiPolygon {
	switch v := g.(type) {
	case *geom.MultiPolygon:
		if v.NumPolygons() == 0 {
			return nil
		}
		return v
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(v.Layout())
		if err := mp.Push(v); err != nil {
			return nil
		}
		return mp
	default:
		return nil
	}
}

// FeatureCollection renders boundaries back to GeoJSON. props supplies per-district properties;
// the name is always stored under nameField.
func FeatureCollection(boundaries []Boundary, nameField string, props func(name string) map[string]any) *geojson.FeatureCollection {
	if nameField == "" {
		nameField = DefaultNameField
	}
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(boundaries))}
	for _, b := range boundaries {
		if b.Geom == nil {
			continue
		}
		p := map[string]any{}
		if props != nil {
			for k, v := range props(b.Name) {
				p[k] = v
			}
		}
		p[nameField] = b.Name
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   b.Geom,
			Properties: p,
		})
	}
	return fc
}
