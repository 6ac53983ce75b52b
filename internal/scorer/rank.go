// Package scorer ranks districts by weighted facility counts.
package scorer

import (
	"cmp"
	"slices"

	"github.com/pawmap/pawmap/internal/model"
)

// DefaultTopN is the number of districts shown by the recommendation chart.
const DefaultTopN = 5

// Score computes the weighted score breakdown for one district.
func Score(d model.District, w model.Weights) model.ScoredDistrict {
	hospital := float64(d.HospitalCount) * w.Hospital
	cafe := float64(d.CafeCount) * w.Cafe
	park := float64(d.ParkCount) * w.Park

	return model.ScoredDistrict{
		Name:          d.Name,
		Score:         hospital + cafe + park,
		HospitalScore: hospital,
		CafeScore:     cafe,
		ParkScore:     park,
		HospitalCount: d.HospitalCount,
		CafeCount:     d.CafeCount,
		ParkCount:     d.ParkCount,
	}
}

// ScoreAll scores every district, preserving input order.
func ScoreAll(records []model.District, w model.Weights) []model.ScoredDistrict {
	out := make([]model.ScoredDistrict, len(records))
	for i, d := range records {
		out[i] = Score(d, w)
	}
	return out
}

// Rank returns the topN highest-scoring districts, highest first. Equal scores keep their
// input order. topN <= 0 or no records yields an empty slice.
func Rank(records []model.District, w model.Weights, topN int) []model.ScoredDistrict {
	if topN <= 0 || len(records) == 0 {
		return []model.ScoredDistrict{}
	}

	scored := ScoreAll(records, w)
	slices.SortStableFunc(scored, func(a, b model.ScoredDistrict) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}
