package geo

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/pawmap/pawmap/internal/model"
)

// OutOfBounds is the district recorded for a facility outside every boundary.
const OutOfBounds = "경계 외"

// CountFacilities assigns each facility to the first boundary that contains it. Every boundary
// name appears in counts, zero or not; facilities outside all boundaries are counted under
// OutOfBounds.
func CountFacilities(boundaries []Boundary, facilities []model.Facility) (map[string]int, []model.LocatedFacility) {
	counts := make(map[string]int, len(boundaries)+1)
	for _, name := range Names(boundaries) {
		counts[name] = 0
	}

	located := make([]model.LocatedFacility, 0, len(facilities))
	for _, f := range facilities {
		district, ok := Locate(boundaries, f.X, f.Y)
		if !ok {
			district = OutOfBounds
		}
		counts[district]++
		located = append(located, model.LocatedFacility{Facility: f, District: district})
	}
	return counts, located
}

// Tally counts each facility kind per district and returns one record per boundary, ordered by
// total facilities descending then by name. Facilities outside every boundary are dropped.
func Tally(boundaries []Boundary, hospitals, cafes, parks []model.Facility) ([]model.District, []model.LocatedFacility) {
	hc, hl := CountFacilities(boundaries, hospitals)
	cc, cl := CountFacilities(boundaries, cafes)
	pc, pl := CountFacilities(boundaries, parks)

	if out := hc[OutOfBounds] + cc[OutOfBounds] + pc[OutOfBounds]; out > 0 {
		zap.L().Info("geo: facilities outside every district", zap.Int("count", out))
	}

	names := Names(boundaries)
	slices.Sort(names)
	records := make([]model.District, 0, len(names))
	for _, n := range names {
		records = append(records, model.District{
			Name:          n,
			HospitalCount: hc[n],
			CafeCount:     cc[n],
			ParkCount:     pc[n],
		})
	}
	slices.SortStableFunc(records, func(a, b model.District) int {
		return cmp.Compare(total(b), total(a))
	})

	located := make([]model.LocatedFacility, 0, len(hl)+len(cl)+len(pl))
	located = append(located, hl...)
	located = append(located, cl...)
	located = append(located, pl...)
	return records, located
}

func total(d model.District) int {
	return d.HospitalCount + d.CafeCount + d.ParkCount
}
