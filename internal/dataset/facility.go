package dataset

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pawmap/pawmap/internal/model"
)

// Columns names the CSV/XLSX headers holding a facility's name and coordinates.
type Columns struct {
	Name string
	X    string
	Y    string
}

// DefaultColumns matches the facility CSV files this tool writes.
var DefaultColumns = Columns{Name: "name", X: "x", Y: "y"}

// placeRow is a provider search result as saved to disk; coordinates may be strings or numbers.
type placeRow struct {
	Name string `json:"place_name"`
	X    any    `json:"x"`
	Y    any    `json:"y"`
}

func coordinate(v any) (float64, bool) {
	switch c := v.(type) {
	case float64:
		return c, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// LoadFacilities reads a facility list and tags each entry with kind. JSON files hold saved
// place-search results; CSV and XLSX files use cols, falling back to DefaultColumns. Rows
// without usable coordinates are skipped.
func LoadFacilities(path, kind string, cols Columns) ([]model.Facility, error) {
	switch ext(path) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: read %s", path)
		}
		return DecodeFacilities(data, kind)
	case ".csv":
		rows, err := readCSVFile(path)
		if err != nil {
			return nil, err
		}
		return facilitiesFromRows(rows, kind, cols)
	case ".xlsx":
		rows, err := ReadXLSX(path, XLSXOptions{})
		if err != nil {
			return nil, err
		}
		return facilitiesFromRows(rows, kind, cols)
	default:
		return nil, eris.Errorf("dataset: unsupported facility file %s", path)
	}
}

// DecodeFacilities decodes a JSON array of saved place-search results.
func DecodeFacilities(data []byte, kind string) ([]model.Facility, error) {
	var rows []placeRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrap(err, "dataset: decode facilities")
	}
	out := make([]model.Facility, 0, len(rows))
	for _, r := range rows {
		x, okX := coordinate(r.X)
		y, okY := coordinate(r.Y)
		if !okX || !okY {
			zap.L().Debug("dataset: skipping facility without coordinates", zap.String("name", r.Name))
			continue
		}
		out = append(out, model.Facility{Name: r.Name, X: x, Y: y, Kind: kind})
	}
	return out, nil
}

func facilitiesFromRows(rows [][]string, kind string, cols Columns) ([]model.Facility, error) {
	if cols.Name == "" {
		cols.Name = DefaultColumns.Name
	}
	if cols.X == "" {
		cols.X = DefaultColumns.X
	}
	if cols.Y == "" {
		cols.Y = DefaultColumns.Y
	}
	if len(rows) == 0 {
		return []model.Facility{}, nil
	}

	idx := headerIndex(rows[0])
	xCol, okX := idx[cols.X]
	yCol, okY := idx[cols.Y]
	if !okX || !okY {
		return nil, eris.Errorf("dataset: missing coordinate columns %q/%q", cols.X, cols.Y)
	}
	nameCol, ok := idx[cols.Name]
	if !ok {
		nameCol = -1
	}

	out := make([]model.Facility, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		x, errX := strconv.ParseFloat(cell(row, xCol), 64)
		y, errY := strconv.ParseFloat(cell(row, yCol), 64)
		if errX != nil || errY != nil {
			skipped++
			continue
		}
		out = append(out, model.Facility{Name: cell(row, nameCol), X: x, Y: y, Kind: kind})
	}
	if skipped > 0 {
		zap.L().Debug("dataset: skipped facility rows without coordinates",
			zap.String("kind", kind),
			zap.Int("skipped", skipped),
		)
	}
	return out, nil
}
