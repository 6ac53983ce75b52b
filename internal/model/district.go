// Package model defines the records exchanged between the scoring, classification and cluster
// packages and the presentation layer.
package model

import "math"

// Facility kinds counted per district.
const (
	FacilityHospital = "hospital"
	FacilityCafe     = "cafe"
	FacilityPark     = "park"
)

// Facility display labels, in chart order.
const (
	LabelHospital = "동물병원"
	LabelCafe     = "애견카페"
	LabelPark     = "공원"
)

// MaxCount bounds a plausible facility count; larger values are treated as bad data.
const MaxCount = math.MaxInt32

// District is one administrative district's facility counts. Name is unique within a load.
type District struct {
	Name          string `json:"행정동"`
	HospitalCount int    `json:"동물병원"`
	CafeCount     int    `json:"애견카페"`
	ParkCount     int    `json:"공원"`
}

// Count returns the count for a facility kind, or 0 for an unknown kind.
func (d District) Count(kind string) int {
	switch kind {
	case FacilityHospital:
		return d.HospitalCount
	case FacilityCafe:
		return d.CafeCount
	case FacilityPark:
		return d.ParkCount
	default:
		return 0
	}
}

// Weights are the per-facility multipliers. They need not sum to 1 and may be negative.
type Weights struct {
	Hospital float64 `json:"hospital"`
	Cafe     float64 `json:"cafe"`
	Park     float64 `json:"park"`
}

// Scale returns the weights multiplied by k.
func (w Weights) Scale(k float64) Weights {
	return Weights{Hospital: w.Hospital * k, Cafe: w.Cafe * k, Park: w.Park * k}
}

// ScoredDistrict is a district scored under one weight vector. It is rebuilt on every weight
// change and never updated in place.
type ScoredDistrict struct {
	Name          string  `json:"name"`
	Score         float64 `json:"score"`
	HospitalScore float64 `json:"hospital_score"`
	CafeScore     float64 `json:"cafe_score"`
	ParkScore     float64 `json:"park_score"`
	HospitalCount int     `json:"hospital"`
	CafeCount     int     `json:"cafe"`
	ParkCount     int     `json:"park"`
}
