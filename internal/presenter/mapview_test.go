package presenter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawmap/pawmap/internal/cluster"
	"github.com/pawmap/pawmap/internal/geo"
)

func TestBuildPopup(t *testing.T) {
	p := BuildPopup(sampleClusters(), "A")
	assert.True(t, p.Clustered)
	assert.Equal(t, "의료 중심형", p.TypeLabel)
	assert.Equal(t,
		"<div><strong>행정동:</strong> A</div>"+
			"<div><strong>클러스터 유형:</strong> 의료 중심형</div>"+
			"<div><strong>시설 현황:</strong> 동물병원 2개, 애견카페 1개, 공원 0.5개</div>",
		p.HTML())
}

func TestBuildPopup_Unclustered(t *testing.T) {
	p := BuildPopup(sampleClusters(), "<C>")
	assert.False(t, p.Clustered)
	assert.Equal(t, "<div><strong>행정동:</strong> &lt;C&gt;</div>", p.HTML())

	assert.False(t, BuildPopup(nil, "A").Clustered)
}

func TestBuildLegend(t *testing.T) {
	l := BuildLegend(Unclustered, sampleClusters())
	assert.False(t, l.Visible)
	assert.Equal(t, LegendTitle, l.Title)
	assert.Equal(t, []LegendEntry{
		{Color: "#33FF57", Label: "의료 중심형"},
		{Color: "#3357FF", Label: "여가 중심형"},
	}, l.Entries)

	assert.True(t, BuildLegend(Clustered, sampleClusters()).Visible)
}

func TestLayerStyle(t *testing.T) {
	ref := sampleClusters()
	assert.Equal(t, cluster.DefaultStyle, LayerStyle(Unclustered, ref, "A"))
	assert.Equal(t, "#33FF57", LayerStyle(Clustered, ref, "A").FillColor)
	assert.Equal(t, cluster.DefaultStyle, LayerStyle(Clustered, nil, "A"))
}

func TestMapFeatures(t *testing.T) {
	data := `{"type":"FeatureCollection","features":[` +
		`{"type":"Feature","properties":{"EMD_KOR_NM":"A"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},` +
		`{"type":"Feature","properties":{"EMD_KOR_NM":"C"},"geometry":{"type":"Polygon","coordinates":[[[2,0],[3,0],[3,1],[2,1],[2,0]]]}}]}`

	bs, err := geo.ParseGeoJSON([]byte(data), "EMD_KOR_NM")
	require.NoError(t, err)

	fc := MapFeatures(bs, "EMD_KOR_NM", Clustered, sampleClusters())
	require.Len(t, fc.Features, 2)

	a := fc.Features[0].Properties
	assert.Equal(t, "A", a["EMD_KOR_NM"])
	assert.Equal(t, 1, a["cluster"])
	assert.Equal(t, "#33FF57", a["style"].(cluster.Style).FillColor)
	assert.Equal(t, 3.0, a["hoverStyle"].(cluster.Style).Weight)

	c := fc.Features[1].Properties
	_, has := c["cluster"]
	assert.False(t, has)
	assert.Equal(t, cluster.DefaultStyle, c["style"])

	out, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"fillColor":"#33FF57"`)
}
