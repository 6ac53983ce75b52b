// Package cluster joins districts to precomputed cluster reference data and derives their map
// styles.
package cluster

import "github.com/pawmap/pawmap/internal/model"

// Lookup returns the descriptor of the cluster a district is assigned to. The join is by exact
// name, first match wins on both sides. ok is false for an unclustered district, which is a
// valid state rather than an error.
func Lookup(district string, assignments []model.ClusterAssignment, descriptors []model.ClusterDescriptor) (model.ClusterDescriptor, bool) {
	for _, a := range assignments {
		if a.District != district {
			continue
		}
		for _, d := range descriptors {
			if d.Cluster == a.Cluster {
				return d, true
			}
		}
		return model.ClusterDescriptor{}, false
	}
	return model.ClusterDescriptor{}, false
}

// Reference is a static load of both cluster documents.
type Reference struct {
	Assignments []model.ClusterAssignment `json:"assignments"`
	Descriptors []model.ClusterDescriptor `json:"descriptors"`
}

// Lookup is Lookup over the reference data. A nil Reference finds nothing.
func (r *Reference) Lookup(district string) (model.ClusterDescriptor, bool) {
	if r == nil {
		return model.ClusterDescriptor{}, false
	}
	return Lookup(district, r.Assignments, r.Descriptors)
}

// Describe returns a pointer to the district's descriptor, or nil when unclustered. It is the
// form StyleFor takes.
func (r *Reference) Describe(district string) *model.ClusterDescriptor {
	d, ok := r.Lookup(district)
	if !ok {
		return nil
	}
	return &d
}
