// Package classify filters place-search results down to walkable-area categories.
package classify

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pawmap/pawmap/internal/model"
)

// ErrInvalidInput is returned when the input is not a sequence of place records.
var ErrInvalidInput = eris.New("classify: input is not a place array")

// Policy selects which places Classify keeps.
type Policy int

const (
	// Lenient keeps places whose category path contains any walkable label.
	Lenient Policy = iota
	// Strict additionally requires the path to start with 여행 > 관광,명소.
	Strict
	// ParkOnly keeps parks that are not park facilities such as restrooms or parking lots.
	ParkOnly
)

// WalkableCategories are the category labels treated as walkable areas.
var WalkableCategories = []string{
	"도보여행",
	"둘레길",
	"하천",
	"공원",
	"도시근린공원",
	"국립공원",
	"도립공원",
	"산",
	"오름",
	"호수",
	"저수지",
	"수목원,식물원",
}

// ParkExclusions are substrings that disqualify a park under ParkOnly.
var ParkExclusions = []string{"화장실", "주차장", "관리소", "매점", "안내소", "사무소"}

const (
	travelRoot    = "여행"
	touristBranch = "관광,명소"
	parkLabel     = "공원"
)

// String returns the policy's config name.
func (p Policy) String() string {
	switch p {
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	case ParkOnly:
		return "park"
	default:
		return "unknown"
	}
}

// ParsePolicy maps a config name to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	case "park", "park_only", "parkonly":
		return ParkOnly, nil
	default:
		return Lenient, eris.Errorf("classify: unknown policy %q", name)
	}
}

// Classify returns the places accepted by policy, in input order. The input is not modified.
func Classify(places []model.Place, policy Policy) []model.Place {
	out := make([]model.Place, 0, len(places))
	for _, p := range places {
		if Accept(p, policy) {
			out = append(out, p)
		}
	}
	return out
}

// Accept reports whether a single place passes policy.
func Accept(p model.Place, policy Policy) bool {
	path := p.Path()
	if len(path) == 0 {
		return false
	}

	switch policy {
	case Lenient:
		return hasWalkable(path)
	case Strict:
		return isTouristPath(path) && hasWalkable(path)
	case ParkOnly:
		return slices.Contains(path, parkLabel) && !excluded(p.Name, path)
	default:
		return false
	}
}

// ClassifyJSON decodes a provider result array and classifies it. A document that is not a
// JSON array yields an empty result and ErrInvalidInput.
func ClassifyJSON(raw []byte, policy Policy) ([]model.Place, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		zap.L().Warn("classify: rejecting non-array input", zap.Int("bytes", len(raw)))
		return []model.Place{}, ErrInvalidInput
	}

	var places []model.Place
	if err := json.Unmarshal(trimmed, &places); err != nil {
		zap.L().Warn("classify: rejecting malformed input", zap.Error(err))
		return []model.Place{}, eris.Wrap(ErrInvalidInput, err.Error())
	}

	return Classify(places, policy), nil
}

func hasWalkable(path []string) bool {
	for _, label := range WalkableCategories {
		if slices.Contains(path, label) {
			return true
		}
	}
	return false
}

func isTouristPath(path []string) bool {
	return len(path) >= 2 && path[0] == travelRoot && path[1] == touristBranch
}

func excluded(name string, path []string) bool {
	for _, kw := range ParkExclusions {
		if strings.Contains(name, kw) {
			return true
		}
		for _, c := range path {
			if strings.Contains(c, kw) {
				return true
			}
		}
	}
	return false
}
