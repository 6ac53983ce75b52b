package presenter

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/pawmap/pawmap/internal/classify"
	"github.com/pawmap/pawmap/internal/cluster"
	"github.com/pawmap/pawmap/internal/model"
	"github.com/pawmap/pawmap/internal/scorer"
)

// Searcher is the place search the presenter drives.
type Searcher interface {
	SearchAndFilter(ctx context.Context, keyword string, policy classify.Policy, fn func([]model.Place, error))
}

// Presenter owns the View and rebuilds it on user events. It is safe for concurrent use.
type Presenter struct {
	mu        sync.RWMutex
	districts []model.District
	clusters  *cluster.Reference
	view      View

	dispatcher *Dispatcher
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithDispatcher publishes view changes on d. A nil d keeps the default dispatcher.
func WithDispatcher(d *Dispatcher) Option {
	return func(p *Presenter) {
		if d != nil {
			p.dispatcher = d
		}
	}
}

// WithClusters sets the cluster reference data. Without it every district is unclustered.
func WithClusters(ref *cluster.Reference) Option {
	return func(p *Presenter) {
		p.clusters = ref
	}
}

// New creates a Presenter over districts and computes the initial ranking.
func New(districts []model.District, weights model.Weights, topN int, opts ...Option) *Presenter {
	p := &Presenter{
		districts:  append([]model.District(nil), districts...),
		dispatcher: NewDispatcher(),
	}
	for _, o := range opts {
		o(p)
	}
	p.view = View{
		Weights: weights,
		TopN:    topN,
		Ranking: scorer.Rank(p.districts, weights, topN),
		Mode:    Unclustered,
	}
	return p
}

// Dispatcher returns the dispatcher events are published on.
func (p *Presenter) Dispatcher() *Dispatcher { return p.dispatcher }

// Clusters returns the cluster reference data, which may be nil.
func (p *Presenter) Clusters() *cluster.Reference { return p.clusters }

// View returns a copy of the current view.
func (p *Presenter) View() View {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.view.Clone()
}

// SetWeights reranks every district and stores the result for tooltips.
func (p *Presenter) SetWeights(w model.Weights) []model.ScoredDistrict {
	return p.Rerank(w, p.View().TopN)
}

// Rerank recomputes the ranking with new weights and list length.
func (p *Presenter) Rerank(w model.Weights, topN int) []model.ScoredDistrict {
	return p.UpdateRanking(func(cur *model.Weights, n *int) {
		*cur = w
		*n = topN
	})
}

// UpdateRanking lets fn edit the current weights and list length, then reranks. The read,
// edit and rerank happen under one lock, so concurrent partial updates never interleave.
func (p *Presenter) UpdateRanking(fn func(w *model.Weights, topN *int)) []model.ScoredDistrict {
	p.mu.Lock()
	w, topN := p.view.Weights, p.view.TopN
	fn(&w, &topN)
	p.view.Weights = w
	p.view.TopN = topN
	p.view.Ranking = scorer.Rank(p.districts, w, topN)
	snap := p.view.Clone()
	p.mu.Unlock()

	p.dispatcher.Publish(Event{Kind: EventRanking, View: snap})
	return snap.Ranking
}

// SetMode moves to mode. It reports whether the mode changed; re-entering the current mode
// publishes nothing.
func (p *Presenter) SetMode(mode DisplayMode) bool {
	p.mu.Lock()
	if p.view.Mode == mode {
		p.mu.Unlock()
		return false
	}
	p.view.Mode = mode
	snap := p.view.Clone()
	p.mu.Unlock()

	zap.L().Debug("presenter: display mode changed", zap.String("mode", mode.String()))
	p.dispatcher.Publish(Event{Kind: EventToggle, View: snap})
	return true
}

// Toggle flips the display mode and returns the new one.
func (p *Presenter) Toggle() DisplayMode {
	p.mu.Lock()
	p.view.Mode = p.view.Mode.Toggle()
	snap := p.view.Clone()
	p.mu.Unlock()

	zap.L().Debug("presenter: display mode changed", zap.String("mode", snap.Mode.String()))
	p.dispatcher.Publish(Event{Kind: EventToggle, View: snap})
	return snap.Mode
}

// Search runs a filtered place search and records the outcome in the view.
func (p *Presenter) Search(ctx context.Context, s Searcher, keyword string, policy classify.Policy) View {
	var snap View
	s.SearchAndFilter(ctx, keyword, policy, func(places []model.Place, err error) {
		snap = p.applySearch(keyword, policy, places, err)
	})
	return snap
}

func (p *Presenter) applySearch(keyword string, policy classify.Policy, places []model.Place, err error) View {
	p.mu.Lock()
	p.view.Keyword = keyword
	p.view.Policy = policy.String()
	if err != nil {
		p.view.Places = nil
		p.view.SearchError = err.Error()
	} else {
		p.view.Places = append([]model.Place{}, places...)
		p.view.SearchError = ""
	}
	snap := p.view.Clone()
	p.mu.Unlock()

	p.dispatcher.Publish(Event{Kind: EventSearch, View: snap})
	return snap
}

// Chart builds the chart for the current ranking.
func (p *Presenter) Chart() Chart {
	return BuildChart(p.View().Ranking)
}

// RankingList builds the list items for the current ranking.
func (p *Presenter) RankingList() []RankingItem {
	return BuildRankingList(p.View().Ranking)
}

// Tooltip formats a tooltip against the last ranking.
func (p *Presenter) Tooltip(datasetIndex, dataIndex int) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Tooltip(p.view.Ranking, datasetIndex, dataIndex)
}

// Mode returns the current display mode.
func (p *Presenter) Mode() DisplayMode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.view.Mode
}

// Style returns a district's resting style in the current mode. It is also the mouse-out style.
func (p *Presenter) Style(district string) cluster.Style {
	return LayerStyle(p.Mode(), p.clusters, district)
}

// Hover returns a district's highlighted style in the current mode.
func (p *Presenter) Hover(district string) cluster.Style {
	return HoverStyle(p.Mode(), p.clusters, district)
}

// Popup builds the click popup for a district.
func (p *Presenter) Popup(district string) Popup {
	return BuildPopup(p.clusters, district)
}

// Legend builds the legend for the current mode.
func (p *Presenter) Legend() Legend {
	return BuildLegend(p.Mode(), p.clusters)
}
