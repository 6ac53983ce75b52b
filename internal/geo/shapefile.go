package geo

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/korean"
)

// Attribute encodings accepted by LoadShapefile.
const (
	EncodingUTF8  = "utf-8"
	EncodingEUCKR = "euc-kr"
)

// ShapefileOptions controls how attributes are read.
type ShapefileOptions struct {
	NameField string // defaults to DefaultNameField
	Encoding  string // EncodingUTF8 (default) or EncodingEUCKR
}

// LoadShapefile reads polygon records from a shapefile. Records without a usable polygon are
// skipped.
func LoadShapefile(shpPath string, opts ShapefileOptions) ([]Boundary, error) {
	decode, err := attributeDecoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	nameField := opts.NameField
	if nameField == "" {
		nameField = DefaultNameField
	}

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := -1
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, nameField) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		zap.L().Warn("geo: name field not found in shapefile",
			zap.String("path", shpPath),
			zap.String("field", nameField),
		)
	}

	var (
		out     []Boundary
		skipped int
	)
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		name := UnknownName
		if nameIdx >= 0 {
			raw := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
			if v, decErr := decode(raw); decErr != nil {
				zap.L().Debug("geo: undecodable name attribute", zap.String("raw", raw), zap.Error(decErr))
			} else if v != "" {
				name = v
			}
		}
		out = append(out, NewBoundary(name, mp))
	}

	if skipped > 0 {
		zap.L().Debug("geo: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}
	return out, nil
}

func attributeDecoder(enc string) (func(string) (string, error), error) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", EncodingUTF8, "utf8":
		return func(s string) (string, error) { return s, nil }, nil
	case EncodingEUCKR, "euckr", "cp949":
		dec := korean.EUCKR.NewDecoder()
		return func(s string) (string, error) {
			v, err := dec.String(s)
			return strings.TrimSpace(v), err
		}, nil
	default:
		return nil, eris.Errorf("geo: unsupported attribute encoding %q", enc)
	}
}

// polygonToMultiPolygon groups shapefile rings into polygons. A clockwise ring starts a new
// polygon; a counter-clockwise ring is a hole in the polygon before it.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	var current *geom.Polygon
	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("geo: skipping malformed polygon", zap.Error(err))
		}
		current = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if start < 0 || end > int32(len(p.Points)) || end-start < 4 {
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if current == nil || signedArea(flat) < 0 {
			flush()
			current = geom.NewPolygon(geom.XY)
		}
		if err := current.Push(ring); err != nil {
			zap.L().Debug("geo: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea is positive for counter-clockwise rings.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
