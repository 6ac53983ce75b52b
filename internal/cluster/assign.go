package cluster

import (
	"math"
	"slices"

	"github.com/pawmap/pawmap/internal/model"
)

// HighQuantile is the per-facility quantile a district must reach to count as rich in it.
const HighQuantile = 0.75

// Thresholds are the per-facility cut-offs used by Assign.
type Thresholds struct {
	Hospital float64 `json:"hospital"`
	Cafe     float64 `json:"cafe"`
	Park     float64 `json:"park"`
}

// ComputeThresholds returns the HighQuantile value of each facility count.
func ComputeThresholds(records []model.District) Thresholds {
	hospital := make([]float64, len(records))
	cafe := make([]float64, len(records))
	park := make([]float64, len(records))
	for i, d := range records {
		hospital[i] = float64(d.HospitalCount)
		cafe[i] = float64(d.CafeCount)
		park[i] = float64(d.ParkCount)
	}
	return Thresholds{
		Hospital: Quantile(hospital, HighQuantile),
		Cafe:     Quantile(cafe, HighQuantile),
		Park:     Quantile(park, HighQuantile),
	}
}

// Quantile returns the q-th quantile of values using linear interpolation between closest
// ranks. An empty slice yields 0.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Classify returns the cluster id of one district under the given thresholds. Rules are
// evaluated in order: all three high, hospital high, park high, cafe high, otherwise basic.
func Classify(d model.District, t Thresholds) int {
	hospital := float64(d.HospitalCount) >= t.Hospital
	cafe := float64(d.CafeCount) >= t.Cafe
	park := float64(d.ParkCount) >= t.Park

	switch {
	case hospital && cafe && park:
		return Comprehensive
	case hospital:
		return Medical
	case park:
		return Leisure
	case cafe:
		return CafeCulture
	default:
		return Basic
	}
}

// Assign clusters districts by facility profile and builds both reference documents. Only
// clusters with at least one district get a descriptor; descriptors are ordered by id and
// carry the cluster's mean counts rounded to one decimal.
func Assign(records []model.District, palette Palette) *Reference {
	if len(palette) == 0 {
		palette = DefaultPalette()
	}
	t := ComputeThresholds(records)

	ref := &Reference{
		Assignments: make([]model.ClusterAssignment, 0, len(records)),
		Descriptors: []model.ClusterDescriptor{},
	}

	type sums struct {
		hospital, cafe, park float64
		n                    int
	}
	byCluster := make(map[int]*sums)

	for _, d := range records {
		id := Classify(d, t)
		ref.Assignments = append(ref.Assignments, model.ClusterAssignment{District: d.Name, Cluster: id})

		s, ok := byCluster[id]
		if !ok {
			s = &sums{}
			byCluster[id] = s
		}
		s.hospital += float64(d.HospitalCount)
		s.cafe += float64(d.CafeCount)
		s.park += float64(d.ParkCount)
		s.n++
	}

	ids := make([]int, 0, len(byCluster))
	for id := range byCluster {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		s := byCluster[id]
		entry, _ := palette.Entry(id)
		ref.Descriptors = append(ref.Descriptors, model.ClusterDescriptor{
			Cluster:   id,
			Color:     entry.Color,
			TypeLabel: entry.Type,
			Hospital:  round1(s.hospital / float64(s.n)),
			Cafe:      round1(s.cafe / float64(s.n)),
			Park:      round1(s.park / float64(s.n)),
			Districts: s.n,
		})
	}
	return ref
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
