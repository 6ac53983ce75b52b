package presenter

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawmap/pawmap/internal/classify"
	"github.com/pawmap/pawmap/internal/cluster"
	"github.com/pawmap/pawmap/internal/model"
)

func sampleDistricts() []model.District {
	return []model.District{
		{Name: "A", HospitalCount: 2, CafeCount: 1, ParkCount: 0},
		{Name: "B", HospitalCount: 0, CafeCount: 0, ParkCount: 5},
		{Name: "C", HospitalCount: 1, CafeCount: 1, ParkCount: 1},
	}
}

func sampleClusters() *cluster.Reference {
	return &cluster.Reference{
		Assignments: []model.ClusterAssignment{{District: "A", Cluster: 1}, {District: "B", Cluster: 2}},
		Descriptors: []model.ClusterDescriptor{
			{Cluster: 1, Color: "#33FF57", TypeLabel: "의료 중심형", Hospital: 2, Cafe: 1, Park: 0.5},
			{Cluster: 2, Color: "#3357FF", TypeLabel: "여가 중심형", Park: 5},
		},
	}
}

var unit = model.Weights{Hospital: 1, Cafe: 1, Park: 1}

type fakeSearcher struct {
	places []model.Place
	err    error
	calls  int
}

func (f *fakeSearcher) SearchAndFilter(_ context.Context, _ string, _ classify.Policy, fn func([]model.Place, error)) {
	f.calls++
	if f.err != nil {
		fn(nil, f.err)
		return
	}
	fn(f.places, nil)
}

func TestNew_InitialRanking(t *testing.T) {
	p := New(sampleDistricts(), unit, 5)
	v := p.View()

	require.Len(t, v.Ranking, 3)
	assert.Equal(t, "B", v.Ranking[0].Name)
	assert.Equal(t, "A", v.Ranking[1].Name)
	assert.Equal(t, "C", v.Ranking[2].Name)
	assert.Equal(t, Unclustered, v.Mode)
}

func TestPresenter_SetWeights_PublishesRanking(t *testing.T) {
	d := NewDispatcher()
	p := New(sampleDistricts(), unit, 2, WithDispatcher(d))

	var events []Event
	d.Subscribe(EventRanking, func(e Event) { events = append(events, e) })

	ranking := p.SetWeights(model.Weights{Hospital: 10})
	require.Len(t, ranking, 2)
	assert.Equal(t, "A", ranking[0].Name)
	assert.Equal(t, "C", ranking[1].Name)

	require.Len(t, events, 1)
	assert.Equal(t, ranking, events[0].View.Ranking)
	assert.Equal(t, 10.0, events[0].View.Weights.Hospital)
}

func TestPresenter_Rerank_TopN(t *testing.T) {
	p := New(sampleDistricts(), unit, 5)
	assert.Empty(t, p.Rerank(unit, 0))
	assert.Len(t, p.Rerank(unit, 1), 1)
	assert.Equal(t, 1, p.View().TopN)
}

func TestPresenter_ModeTransitions(t *testing.T) {
	d := NewDispatcher()
	p := New(sampleDistricts(), unit, 5, WithDispatcher(d), WithClusters(sampleClusters()))

	toggles := 0
	d.Subscribe(EventToggle, func(Event) { toggles++ })

	assert.False(t, p.SetMode(Unclustered), "re-entering the current mode is a no-op")
	assert.Equal(t, 0, toggles)

	assert.Equal(t, Clustered, p.Toggle())
	assert.False(t, p.SetMode(Clustered))
	assert.Equal(t, 1, toggles)

	assert.Equal(t, Unclustered, p.Toggle())
	assert.Equal(t, 2, toggles)
}

func TestPresenter_Styles(t *testing.T) {
	p := New(sampleDistricts(), unit, 5, WithClusters(sampleClusters()))

	// Unclustered: everyone gets the default style.
	assert.Equal(t, cluster.DefaultStyle, p.Style("A"))
	assert.Equal(t, cluster.Highlight(cluster.DefaultStyle), p.Hover("A"))

	p.SetMode(Clustered)
	assert.Equal(t, "#33FF57", p.Style("A").FillColor)
	assert.Equal(t, cluster.DefaultStyle, p.Style("C"), "no assignment falls back to default")
	assert.Equal(t, cluster.DefaultStyle, p.Style("없는동"))

	hover := p.Hover("B")
	assert.Equal(t, "#3357FF", hover.FillColor)
	assert.Equal(t, 3.0, hover.Weight)
	assert.Equal(t, "", hover.DashArray)
	assert.Equal(t, 0.9, hover.FillOpacity)
}

func TestPresenter_NoClusters(t *testing.T) {
	p := New(sampleDistricts(), unit, 5)
	p.SetMode(Clustered)

	assert.Equal(t, cluster.DefaultStyle, p.Style("A"))
	assert.False(t, p.Popup("A").Clustered)
	l := p.Legend()
	assert.True(t, l.Visible)
	assert.Empty(t, l.Entries)
}

func TestPresenter_Search(t *testing.T) {
	d := NewDispatcher()
	p := New(sampleDistricts(), unit, 5, WithDispatcher(d))
	searches := 0
	d.Subscribe(EventSearch, func(Event) { searches++ })

	s := &fakeSearcher{places: []model.Place{{Name: "서울숲", Category: "여행 > 공원"}}}
	v := p.Search(context.Background(), s, "공원", classify.ParkOnly)

	assert.Equal(t, 1, s.calls)
	assert.Equal(t, "공원", v.Keyword)
	assert.Equal(t, "park", v.Policy)
	require.Len(t, v.Places, 1)
	assert.Empty(t, v.SearchError)

	s.err = errors.New("quota exceeded")
	v = p.Search(context.Background(), s, "공원", classify.Lenient)
	assert.Nil(t, v.Places)
	assert.Equal(t, "quota exceeded", v.SearchError)
	assert.Equal(t, 2, searches)
}

func TestPresenter_TooltipUsesLastRanking(t *testing.T) {
	p := New(sampleDistricts(), unit, 5)
	p.SetWeights(model.Weights{Hospital: 3, Cafe: 1, Park: 0})

	text, ok := p.Tooltip(0, 0)
	require.True(t, ok)
	assert.Equal(t, "동물병원: 6.0점 (2개)", text)

	_, ok = p.Tooltip(0, 9)
	assert.False(t, ok)
}

func TestView_CloneIsIndependent(t *testing.T) {
	p := New(sampleDistricts(), unit, 5)
	v := p.View()
	v.Ranking[0].Name = "changed"
	assert.Equal(t, "B", p.View().Ranking[0].Name)
}

func TestView_JSONMode(t *testing.T) {
	data, err := json.Marshal(View{Mode: Clustered})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mode":"clustered"`)
}

func TestPresenter_NilDispatcherKeepsDefault(t *testing.T) {
	p := New(sampleDistricts(), unit, 5, WithDispatcher(nil))
	require.NotNil(t, p.Dispatcher())

	assert.NotPanics(t, func() {
		assert.True(t, p.SetMode(Clustered))
		p.Rerank(unit, 2)
	})
}

func TestPresenter_ConcurrentTogglesAlternate(t *testing.T) {
	d := NewDispatcher()
	p := New(sampleDistricts(), unit, 5, WithDispatcher(d))

	var mu sync.Mutex
	toggles := 0
	d.Subscribe(EventToggle, func(Event) {
		mu.Lock()
		toggles++
		mu.Unlock()
	})

	const n = 64
	results := make(chan DisplayMode, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- p.Toggle()
		}()
	}
	wg.Wait()
	close(results)

	clustered := 0
	for m := range results {
		if m == Clustered {
			clustered++
		}
	}
	assert.Equal(t, n/2, clustered, "every toggle flips the mode exactly once")
	assert.Equal(t, n, toggles)
	assert.Equal(t, Unclustered, p.Mode())
}

func TestPresenter_UpdateRanking_PartialUpdatesCompose(t *testing.T) {
	p := New(sampleDistricts(), unit, 5)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.UpdateRanking(func(w *model.Weights, _ *int) { w.Hospital = 4 })
		}()
		go func() {
			defer wg.Done()
			p.UpdateRanking(func(w *model.Weights, _ *int) { w.Park = 3 })
		}()
	}
	wg.Wait()

	v := p.View()
	assert.Equal(t, model.Weights{Hospital: 4, Cafe: 1, Park: 3}, v.Weights)
	assert.Equal(t, 5, v.TopN)
	// B: 5 parks * 3 = 15 beats A: 2*4 + 1 = 9.
	require.NotEmpty(t, v.Ranking)
	assert.Equal(t, "B", v.Ranking[0].Name)
}
