package cluster

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	assignments := writeFile(t, dir, "district_clusters.json", `[
		{"district": "우동", "cluster": 0},
		{"district": "중동", "cluster": 2}
	]`)
	descriptors := writeFile(t, dir, "cluster_info.json", `[
		{"cluster": 0, "유형": "종합 인프라형", "색상": "#FF5733", "hospital": 10.2, "cafe": 3.1, "park": 5.0, "동네_수": 12},
		{"cluster": 2, "유형": "여가 중심형", "색상": "#3357FF", "hospital": 1.0, "cafe": 0.4, "park": 8.3}
	]`)

	ref, err := Load(context.Background(), assignments, descriptors)
	require.NoError(t, err)
	require.Len(t, ref.Assignments, 2)
	require.Len(t, ref.Descriptors, 2)

	d, ok := ref.Lookup("우동")
	require.True(t, ok)
	assert.Equal(t, "종합 인프라형", d.TypeLabel)
	assert.Equal(t, "#FF5733", d.Color)
	assert.Equal(t, 12, d.Districts)
	assert.InDelta(t, 10.2, d.Hospital, 1e-9)
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	descriptors := writeFile(t, dir, "cluster_info.json", `[]`)

	_, err := Load(context.Background(), filepath.Join(dir, "nope.json"), descriptors)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster: read")
}

func TestLoad_BadJSON(t *testing.T) {
	dir := t.TempDir()
	assignments := writeFile(t, dir, "a.json", `{"district": "우동"}`)
	descriptors := writeFile(t, dir, "b.json", `[]`)

	_, err := Load(context.Background(), assignments, descriptors)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster: decode")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ref := sampleReference()
	a := filepath.Join(dir, "district_clusters.json")
	d := filepath.Join(dir, "cluster_info.json")

	require.NoError(t, Save(ref, a, d))

	loaded, err := Load(context.Background(), a, d)
	require.NoError(t, err)
	assert.Equal(t, ref.Assignments, loaded.Assignments)
	assert.Equal(t, ref.Descriptors, loaded.Descriptors)
}

func TestSave_Nil(t *testing.T) {
	assert.Error(t, Save(nil, "a", "b"))
}

func TestDecodeDocuments(t *testing.T) {
	a, err := DecodeAssignments([]byte(`[{"district": "좌동", "cluster": 3}]`))
	require.NoError(t, err)
	assert.Equal(t, 3, a[0].Cluster)

	d, err := DecodeDescriptors([]byte(`[{"cluster": 3, "색상": "#FF33A8", "유형": "카페 문화형"}]`))
	require.NoError(t, err)
	assert.Equal(t, "카페 문화형", d[0].TypeLabel)

	_, err = DecodeAssignments([]byte(`nope`))
	assert.Error(t, err)
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette([]byte(`
clusters:
  - cluster: 1
    color: "#00AA00"
  - cluster: 7
    type: 실험형
    color: "#123456"
`))
	require.NoError(t, err)

	e, ok := p.Entry(1)
	require.True(t, ok)
	assert.Equal(t, "#00AA00", e.Color)
	assert.Equal(t, "의료 중심형", e.Type, "unset type keeps default")

	e, ok = p.Entry(7)
	require.True(t, ok)
	assert.Equal(t, "실험형", e.Type)

	_, ok = p.Entry(42)
	assert.False(t, ok)
}

func TestLoadPalette(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "palette.yaml", "clusters: []\n")

	p, err := LoadPalette(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPalette(), p)

	_, err = LoadPalette(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "clusters: [unterminated\n")
	_, err = LoadPalette(bad)
	assert.Error(t, err)
}
