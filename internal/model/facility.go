package model

// Facility is a single point of interest of one facility kind, in WGS84 longitude/latitude.
type Facility struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Kind string  `json:"type"`
}

// LocatedFacility is a Facility joined to the district that contains it.
type LocatedFacility struct {
	Facility
	District string `json:"district"`
}
