package model

// ClusterAssignment maps a district name to a cluster id.
type ClusterAssignment struct {
	District string `json:"district"`
	Cluster  int    `json:"cluster"`
}

// ClusterDescriptor is the reference metadata for one cluster. The facility counts are the
// cluster's representative (mean) values.
type ClusterDescriptor struct {
	Cluster   int     `json:"cluster"`
	Color     string  `json:"색상"`
	TypeLabel string  `json:"유형"`
	Hospital  float64 `json:"hospital"`
	Cafe      float64 `json:"cafe"`
	Park      float64 `json:"park"`
	Districts int     `json:"동네_수,omitempty"`
}
