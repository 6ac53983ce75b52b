// Package dataset reads district count tables and facility point lists from CSV, JSON and XLSX
// files, and writes the count tables back out.
package dataset

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pawmap/pawmap/internal/model"
	"github.com/pawmap/pawmap/internal/scorer"
)

// Column headers of district tables.
const (
	ColumnDistrict = "행정동"
	ColumnTotal    = "총합"
)

// LoadDistricts reads a district table. The format follows the file extension.
func LoadDistricts(path string) ([]model.District, error) {
	switch ext(path) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: read %s", path)
		}
		return scorer.DecodeDistricts(data)
	case ".csv":
		rows, err := readCSVFile(path)
		if err != nil {
			return nil, err
		}
		return districtsFromRows(rows)
	case ".xlsx":
		rows, err := ReadXLSX(path, XLSXOptions{})
		if err != nil {
			return nil, err
		}
		return districtsFromRows(rows)
	default:
		return nil, eris.Errorf("dataset: unsupported district file %s", path)
	}
}

func districtsFromRows(rows [][]string) ([]model.District, error) {
	if len(rows) == 0 {
		return []model.District{}, nil
	}
	idx := headerIndex(rows[0])
	nameCol, ok := idx[ColumnDistrict]
	if !ok {
		return nil, eris.Errorf("dataset: missing %q column", ColumnDistrict)
	}

	out := make([]model.District, 0, len(rows)-1)
	for line, row := range rows[1:] {
		name := cell(row, nameCol)
		if name == "" {
			zap.L().Debug("dataset: skipping row without district", zap.Int("row", line+2))
			continue
		}
		out = append(out, model.District{
			Name:          name,
			HospitalCount: countCell(row, idx, model.LabelHospital),
			CafeCount:     countCell(row, idx, model.LabelCafe),
			ParkCount:     countCell(row, idx, model.LabelPark),
		})
	}
	return out, nil
}

// countCell parses an integer count. Missing, unparsable, negative and implausibly large
// cells are zero.
func countCell(row []string, idx map[string]int, col string) int {
	i, ok := idx[col]
	if !ok {
		return 0
	}
	v := cell(row, i)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		zap.L().Debug("dataset: unparsable count", zap.String("column", col), zap.String("value", v))
		return 0
	}
	f = math.Round(f)
	if math.IsNaN(f) || f < 0 || f > model.MaxCount {
		zap.L().Warn("dataset: out-of-range count treated as zero", zap.String("column", col), zap.String("value", v))
		return 0
	}
	return int(f)
}

// WriteDistrictsCSV writes records with a trailing total column.
func WriteDistrictsCSV(w io.Writer, records []model.District) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnDistrict, model.LabelHospital, model.LabelCafe, model.LabelPark, ColumnTotal}); err != nil {
		return eris.Wrap(err, "dataset: write header")
	}
	for _, d := range records {
		row := []string{
			d.Name,
			strconv.Itoa(d.HospitalCount),
			strconv.Itoa(d.CafeCount),
			strconv.Itoa(d.ParkCount),
			strconv.Itoa(d.HospitalCount + d.CafeCount + d.ParkCount),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "dataset: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "dataset: flush")
}

// WriteLocatedCSV writes facilities with the district they were assigned to.
func WriteLocatedCSV(w io.Writer, located []model.LocatedFacility) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "x", "y", "type", "district"}); err != nil {
		return eris.Wrap(err, "dataset: write header")
	}
	for _, f := range located {
		row := []string{
			f.Name,
			strconv.FormatFloat(f.X, 'f', -1, 64),
			strconv.FormatFloat(f.Y, 'f', -1, 64),
			f.Kind,
			f.District,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "dataset: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "dataset: flush")
}

func readCSVFile(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}
	return ReadCSV(bytes.NewReader(data))
}

// ReadCSV reads every record. A UTF-8 byte order mark on the first cell is dropped and fields
// are trimmed.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read rows")
	}
	for i, row := range rows {
		for j, field := range row {
			if i == 0 && j == 0 {
				field = strings.TrimPrefix(field, "\ufeff")
			}
			row[j] = strings.TrimSpace(field)
		}
	}
	return rows, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
