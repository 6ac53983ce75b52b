package cluster

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pawmap/pawmap/internal/model"
)

// Load reads district_clusters.json and cluster_info.json concurrently.
func Load(ctx context.Context, assignmentsPath, descriptorsPath string) (*Reference, error) {
	var ref Reference

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readJSON(ctx, assignmentsPath, &ref.Assignments)
	})
	g.Go(func() error {
		return readJSON(ctx, descriptorsPath, &ref.Descriptors)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("cluster: reference data loaded",
		zap.Int("assignments", len(ref.Assignments)),
		zap.Int("descriptors", len(ref.Descriptors)),
	)
	return &ref, nil
}

// Save writes both reference documents in the format Load reads.
func Save(ref *Reference, assignmentsPath, descriptorsPath string) error {
	if ref == nil {
		return eris.New("cluster: nil reference")
	}
	if err := writeJSON(assignmentsPath, ref.Assignments); err != nil {
		return err
	}
	return writeJSON(descriptorsPath, ref.Descriptors)
}

// DecodeAssignments parses a district_clusters.json document.
func DecodeAssignments(data []byte) ([]model.ClusterAssignment, error) {
	var out []model.ClusterAssignment
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrap(err, "cluster: decode assignments")
	}
	return out, nil
}

// DecodeDescriptors parses a cluster_info.json document.
func DecodeDescriptors(data []byte) ([]model.ClusterDescriptor, error) {
	var out []model.ClusterDescriptor
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrap(err, "cluster: decode descriptors")
	}
	return out, nil
}

func readJSON(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "cluster: context cancelled")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "cluster: read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "cluster: decode %s", path)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "cluster: encode %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "cluster: write %s", path)
	}
	return nil
}
