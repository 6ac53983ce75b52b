package scorer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pawmap/pawmap/internal/model"
)

// ErrInvalidInput is returned when a district document is not an array of records.
var ErrInvalidInput = eris.New("scorer: input is not a district array")

// districtRow is the wire form of a district record. Counts are pointers so missing fields
// can be told apart from zero, and floats so "3.0" style exports decode.
type districtRow struct {
	Name     string   `json:"행정동"`
	Hospital *float64 `json:"동물병원"`
	Cafe     *float64 `json:"애견카페"`
	Park     *float64 `json:"공원"`
}

// DecodeDistricts parses a district facility document. Missing, negative and implausibly
// large counts decode as zero. A
// document that is not a JSON array yields an empty result and ErrInvalidInput.
func DecodeDistricts(raw []byte) ([]model.District, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		zap.L().Warn("scorer: rejecting non-array district input", zap.Int("bytes", len(raw)))
		return []model.District{}, ErrInvalidInput
	}

	var rows []districtRow
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		zap.L().Warn("scorer: rejecting malformed district input", zap.Error(err))
		return []model.District{}, eris.Wrap(ErrInvalidInput, err.Error())
	}

	out := make([]model.District, 0, len(rows))
	for i, r := range rows {
		d := model.District{
			Name:          strings.TrimSpace(r.Name),
			HospitalCount: countOrZero(r.Hospital, i, model.LabelHospital),
			CafeCount:     countOrZero(r.Cafe, i, model.LabelCafe),
			ParkCount:     countOrZero(r.Park, i, model.LabelPark),
		}
		out = append(out, d)
	}
	return out, nil
}

func countOrZero(v *float64, row int, field string) int {
	if v == nil {
		zap.L().Debug("scorer: missing count treated as zero",
			zap.Int("row", row),
			zap.String("field", field),
		)
		return 0
	}
	f := math.Round(*v)
	if math.IsNaN(f) || f < 0 || f > model.MaxCount {
		zap.L().Warn("scorer: out-of-range count treated as zero",
			zap.Int("row", row),
			zap.String("field", field),
			zap.Float64("value", *v),
		)
		return 0
	}
	return int(f)
}

// ValidateDistricts checks that every district has a name and names are unique.
func ValidateDistricts(records []model.District) error {
	var errs []string
	seen := make(map[string]int, len(records))
	for i, d := range records {
		if d.Name == "" {
			errs = append(errs, fmt.Sprintf("row %d: empty district name", i))
			continue
		}
		if prev, ok := seen[d.Name]; ok {
			errs = append(errs, fmt.Sprintf("row %d: duplicate district %s (first at row %d)", i, d.Name, prev))
			continue
		}
		seen[d.Name] = i
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: invalid districts: %s", strings.Join(errs, "; "))
	}
	return nil
}
